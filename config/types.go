package config

import "time"

type Config struct {
	Scraper   ScraperConfig
	Extractor ExtractorConfig
	Mongo     MongoConfig
	DB        PostgresConfig
	Redis     RedisConfig
	Email     EmailConfig
	ETL       ETLConfig
}

type ScraperConfig struct {
	BaseURL          string
	GroupURLs        []string
	GroupsFile       string
	UnwantedKeywords []string
	MaxLoginAttempts int
	MinRenderedPosts int
	SettleDelay      time.Duration
	UseBloomFilter   bool
}

type ExtractorConfig struct {
	Strategy string
}

type MongoConfig struct {
	URI      string
	DBName   string
	PostColl string
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	SSL      bool
	DBName   string
}

type RedisConfig struct {
	Host     string
	Password string
}

type EmailConfig struct {
	SMTPHost   string
	SMTPPort   int
	Sender     string
	Recipients []string
	Subject    string
}

type ETLConfig struct {
	BatchSize int
}

// Credentials come from the environment, never from the config file.
type Credentials struct {
	Username string
	Password string
}
