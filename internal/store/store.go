package store

import (
	"context"

	"github.com/MeshiKro/ApartmentHunterBot/models"
)

// PostStore is the persisted-post abstraction the pipeline and the
// notification cycle share. Insert is a no-op on an identifier conflict.
type PostStore interface {
	Exists(ctx context.Context, externalID string) (bool, error)
	ExistsByContent(ctx context.Context, content string) (bool, error)
	Insert(ctx context.Context, post *models.Post) error
	ListUnsent(ctx context.Context) ([]models.Post, error)
	MarkSent(ctx context.Context, externalIDs []string) error
}
