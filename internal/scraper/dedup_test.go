package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeshiKro/ApartmentHunterBot/models"
)

func TestIsDuplicateByIdentifier(t *testing.T) {
	store := &fakeStore{posts: []models.Post{{
		ExternalID: "98765",
		Link:       "https://www.facebook.com/groups/150903/posts/98765",
		Content:    "original wording",
	}}}
	gate := NewDedupGate(store, nil)

	// Same identifier, edited content: still a duplicate.
	dup, err := gate.IsDuplicate(context.Background(), RawPost{
		ExternalID: "98765",
		Content:    "edited wording",
	})
	require.NoError(t, err)
	assert.True(t, dup)
}

func TestIsDuplicateByLegacyLinkSubstring(t *testing.T) {
	store := &fakeStore{posts: []models.Post{{
		Link:    "https://www.facebook.com/groups/150903/posts/98765",
		Content: "whatever",
	}}}
	gate := NewDedupGate(store, nil)

	dup, err := gate.IsDuplicate(context.Background(), RawPost{
		ExternalID: "98765",
		Content:    "different text",
	})
	require.NoError(t, err)
	assert.True(t, dup)
}

func TestIsDuplicateByContent(t *testing.T) {
	store := &fakeStore{posts: []models.Post{{
		ExternalID: "11111",
		Content:    "דירת 3 חדרים בחיפה",
	}}}
	gate := NewDedupGate(store, nil)

	// Identical repost under a different permalink.
	dup, err := gate.IsDuplicate(context.Background(), RawPost{
		ExternalID: "22222",
		Content:    "דירת 3 חדרים בחיפה",
	})
	require.NoError(t, err)
	assert.True(t, dup)
}

func TestIsDuplicateAcceptsNewPost(t *testing.T) {
	store := &fakeStore{posts: []models.Post{{
		ExternalID: "11111",
		Content:    "something else",
	}}}
	gate := NewDedupGate(store, nil)

	dup, err := gate.IsDuplicate(context.Background(), RawPost{
		ExternalID: "22222",
		Content:    "brand new listing",
	})
	require.NoError(t, err)
	assert.False(t, dup)
}
