package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is one harvested group post, the unit of dedup and notification.
// Price, Rooms and Size are filled by the field extractor; nil means the
// pattern did not match, never zero.
type Post struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ExternalID  string             `bson:"external_id" json:"external_id"`
	Link        string             `bson:"link" json:"link"`
	Content     string             `bson:"content" json:"content"`
	HasBeenSent bool               `bson:"hasBeenSent" json:"has_been_sent"`
	DatePosted  primitive.DateTime `bson:"date_posted" json:"date_posted"`
	RunID       string             `bson:"run_id,omitempty" json:"run_id,omitempty"`
	Price       *int               `bson:"price,omitempty" json:"price,omitempty"`
	Rooms       *float64           `bson:"rooms,omitempty" json:"rooms,omitempty"`
	Size        *float64           `bson:"size,omitempty" json:"size,omitempty"`
}

// ExtractedPost is the relational projection loaded by the ETL step.
type ExtractedPost struct {
	ID        int64     `db:"id"`
	MongoID   string    `db:"mongo_id"`
	Content   string    `db:"content"`
	Rooms     *float64  `db:"rooms"`
	Size      *float64  `db:"size"`
	Price     *float64  `db:"price"`
	CreatedAt time.Time `db:"created_at"`
}

// ScrapeRun correlates all posts harvested by one pipeline invocation.
// It is not persisted by the pipeline itself.
type ScrapeRun struct {
	RunID         string
	StartedAt     time.Time
	GroupsOK      int
	GroupsFailed  int
	PostsInserted int
}
