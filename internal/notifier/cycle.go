package notifier

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/MeshiKro/ApartmentHunterBot/internal/store"
)

// Cycle reads the unsent posts, delivers them as one batch, and marks
// exactly that batch sent. Send-then-mark is deliberate: a delivery
// failure leaves the batch unsent for the next cycle, so duplicates are
// possible but loss is not.
type Cycle struct {
	store      store.PostStore
	sink       Sink
	recipients []string
	subject    string
	log        *log.Logger
}

func NewCycle(postStore store.PostStore, sink Sink, recipients []string, subject string) *Cycle {
	return &Cycle{
		store:      postStore,
		sink:       sink,
		recipients: recipients,
		subject:    subject,
		log:        log.New(os.Stdout, "[Notifier] ", log.LstdFlags),
	}
}

// Run returns the number of posts delivered.
func (c *Cycle) Run(ctx context.Context) (int, error) {
	posts, err := c.store.ListUnsent(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read unsent posts: %w", err)
	}
	if len(posts) == 0 {
		c.log.Println("No new posts found")
		return 0, nil
	}

	c.log.Printf("Sending email with the new posts (%d found)", len(posts))
	body := FormatPosts(posts)
	if err := c.sink.Deliver(ctx, c.recipients, c.subject, body); err != nil {
		return 0, &DeliveryError{Err: err}
	}

	// Mark only the set read above; posts harvested mid-cycle stay unsent.
	ids := make([]string, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ExternalID)
	}
	if err := c.store.MarkSent(ctx, ids); err != nil {
		return len(posts), fmt.Errorf("delivered %d posts but failed to mark them sent: %w", len(posts), err)
	}
	return len(posts), nil
}
