package store

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MeshiKro/ApartmentHunterBot/config"
	"github.com/MeshiKro/ApartmentHunterBot/models"
)

type MongoClient struct {
	Client *mongo.Client
	DB     *mongo.Database
	cfg    *config.MongoConfig
}

func NewMongoClient(ctx context.Context, cfg *config.MongoConfig) (*MongoClient, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.DBName)
	m := &MongoClient{
		Client: client,
		DB:     db,
		cfg:    cfg,
	}
	if err = m.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MongoClient) ensureIndexes(ctx context.Context) error {
	coll := m.DB.Collection(m.cfg.PostColl)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "external_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create external_id index: %w", err)
	}
	return nil
}

// Exists reports whether a post with this identifier is already stored.
// Older records predate the external_id field, so a link substring match
// covers them as well.
func (m *MongoClient) Exists(ctx context.Context, externalID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	coll := m.DB.Collection(m.cfg.PostColl)
	filter := bson.M{"$or": []bson.M{
		{"external_id": externalID},
		{"link": bson.M{"$regex": regexp.QuoteMeta(externalID)}},
	}}
	count, err := coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check post %s: %w", externalID, err)
	}
	return count > 0, nil
}

func (m *MongoClient) ExistsByContent(ctx context.Context, content string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	coll := m.DB.Collection(m.cfg.PostColl)
	count, err := coll.CountDocuments(ctx, bson.M{"content": content}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check post content: %w", err)
	}
	return count > 0, nil
}

// Insert stores a post. Inserting an already-stored external_id is a
// no-op, not an error.
func (m *MongoClient) Insert(ctx context.Context, post *models.Post) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	coll := m.DB.Collection(m.cfg.PostColl)
	if post.DatePosted == 0 {
		post.DatePosted = primitive.NewDateTimeFromTime(time.Now())
	}
	res, err := coll.InsertOne(ctx, post)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to insert post %s: %w", post.ExternalID, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		post.ID = oid
	}
	return nil
}

func (m *MongoClient) ListUnsent(ctx context.Context) ([]models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	coll := m.DB.Collection(m.cfg.PostColl)
	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := coll.Find(ctx, bson.M{"hasBeenSent": false}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find unsent posts: %w", err)
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode unsent posts: %w", err)
	}
	return posts, nil
}

// MarkSent flips hasBeenSent for exactly the given identifiers.
func (m *MongoClient) MarkSent(ctx context.Context, externalIDs []string) error {
	if len(externalIDs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	coll := m.DB.Collection(m.cfg.PostColl)
	filter := bson.M{"external_id": bson.M{"$in": externalIDs}}
	update := bson.M{"$set": bson.M{"hasBeenSent": true}}
	if _, err := coll.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to mark %d posts as sent: %w", len(externalIDs), err)
	}
	return nil
}

// GetBatchPosts pages through the collection in _id order for the ETL step.
func (m *MongoClient) GetBatchPosts(ctx context.Context, batchSize int, lastID *primitive.ObjectID) ([]models.Post, *primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	coll := m.DB.Collection(m.cfg.PostColl)
	filter := bson.M{}
	if lastID != nil {
		filter["_id"] = bson.M{"$gt": *lastID}
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(batchSize))

	cursor, err := coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	var newLastID *primitive.ObjectID
	if len(posts) > 0 {
		lastDocID := posts[len(posts)-1].ID
		newLastID = &lastDocID
	}
	return posts, newLastID, nil
}

func (m *MongoClient) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}
