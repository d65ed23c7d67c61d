package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/MeshiKro/ApartmentHunterBot/config"
	"github.com/MeshiKro/ApartmentHunterBot/models"
)

// DB is the relational target the ETL step loads extracted rows into.
type DB struct {
	conn *sqlx.DB
}

func NewDBConnection(cfg *config.PostgresConfig) (*DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s ", cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)
	if cfg.SSL {
		dsn += "sslmode=require"
	} else {
		dsn += "sslmode=disable"
	}
	conn, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("db connection error :%v", err)
	}
	if _, err = conn.Exec(createPostsTable); err != nil {
		return nil, fmt.Errorf("failed to ensure posts table: %w", err)
	}
	return &DB{
		conn: conn,
	}, nil
}

func (d *DB) InsertExtractedPost(post *models.ExtractedPost) error {
	_, err := d.conn.Exec(insertExtractedPost, post.MongoID, post.Content, post.Rooms, post.Size, post.Price)
	if err != nil {
		return fmt.Errorf("failed to insert extracted post %s: %w", post.MongoID, err)
	}
	return nil
}

func (d *DB) CountExtractedPosts() (int64, error) {
	var count int64
	if err := d.conn.Get(&count, countExtractedPosts); err != nil {
		return 0, fmt.Errorf("failed to count extracted posts: %w", err)
	}
	return count, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}
