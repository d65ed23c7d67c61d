package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func LoadConfig(filename string) (*Config, error) {
	viper.SetConfigName(filename)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	var config Config
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("cannot read the file %w", err)
	}
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error reading the config file %w", err)
	}
	return &config, nil
}

func GetDefaultConfig() *Config {
	return &Config{
		Scraper: ScraperConfig{
			BaseURL: "https://www.facebook.com",
			GroupURLs: []string{
				"https://www.facebook.com/groups/150903262296830/?sorting_setting=CHRONOLOGICAL",
				"https://www.facebook.com/groups/171730669920083/?sorting_setting=CHRONOLOGICAL",
				"https://www.facebook.com/groups/haifa.apartments.for.rent/",
				"https://www.facebook.com/groups/HaifaRentals/",
			},
			UnwantedKeywords: []string{"להשכרה", "3 חדרים", "4 חדרים"},
			MaxLoginAttempts: 5,
			MinRenderedPosts: 5,
			SettleDelay:      5 * time.Second,
			UseBloomFilter:   false,
		},
		Extractor: ExtractorConfig{
			Strategy: "regex",
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			DBName:   "posts",
			PostColl: "collection",
		},
		DB: PostgresConfig{
			Host:   "localhost",
			Port:   5432,
			User:   "admin",
			DBName: "apartments_db",
			SSL:    false,
		},
		Redis: RedisConfig{
			Host: "localhost:6379",
		},
		Email: EmailConfig{
			SMTPHost: "smtp.gmail.com",
			SMTPPort: 465,
			Subject:  "פוסטים לדירות בפייסבוק",
		},
		ETL: ETLConfig{
			BatchSize: 20,
		},
	}
}

// LoadCredentials reads the account credentials from the environment,
// loading a .env file first when one is present.
func LoadCredentials() (*Credentials, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	username := os.Getenv("FB_USERNAME")
	password := os.Getenv("FB_PASSWORD")
	if username == "" || password == "" {
		return nil, fmt.Errorf("FB_USERNAME and FB_PASSWORD must be set")
	}
	return &Credentials{
		Username: username,
		Password: password,
	}, nil
}
