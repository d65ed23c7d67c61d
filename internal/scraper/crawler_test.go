package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeshiKro/ApartmentHunterBot/config"
)

const testGroupURL = "https://www.facebook.com/groups/150903262296830/"

func newTestCrawler(sess Session) *GroupCrawler {
	c := NewGroupCrawler(sess, &config.ScraperConfig{MinRenderedPosts: 5})
	c.SettleDelay = 0
	c.ScrollDelayMin = 0
	c.ScrollDelayMax = 0
	return c
}

func rentalNode(id, content string) *fakeNode {
	return &fakeNode{
		text:       content,
		content:    content,
		hasContent: true,
		links: []string{
			"https://www.facebook.com/groups/150903262296830/posts/" + id + "/?__cft__[0]=abc",
		},
	}
}

func TestHarvestDoesNotScrollWhenFeedIsFull(t *testing.T) {
	batch := make([]PostNode, 0, 5)
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		batch = append(batch, rentalNode(id, "דירה להשכרה "+id))
	}
	sess := &fakeSession{batches: [][]PostNode{batch}}

	posts, err := newTestCrawler(sess).Harvest(context.Background(), testGroupURL)
	require.NoError(t, err)
	assert.Len(t, posts, 5)
	assert.Equal(t, 0, sess.scrollCalls)
	assert.Equal(t, 1, sess.postsCalls)
}

func TestHarvestScrollsExactlyOnceWhenFeedIsSparse(t *testing.T) {
	first := []PostNode{rentalNode("1", "דירה להשכרה")}
	second := []PostNode{
		rentalNode("1", "דירה להשכרה"),
		rentalNode("2", "3 חדרים בפלורנטין"),
	}
	sess := &fakeSession{batches: [][]PostNode{first, second}}

	posts, err := newTestCrawler(sess).Harvest(context.Background(), testGroupURL)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Equal(t, 1, sess.scrollCalls)
	assert.Equal(t, 2, sess.postsCalls)
}

func TestHarvestNavigateFailureAbortsGroup(t *testing.T) {
	sess := &fakeSession{navErr: errors.New("connection reset")}

	posts, err := newTestCrawler(sess).Harvest(context.Background(), testGroupURL)
	assert.Nil(t, posts)

	var harvestErr *GroupHarvestError
	require.ErrorAs(t, err, &harvestErr)
	assert.Equal(t, testGroupURL, harvestErr.GroupURL)
}

func TestHarvestDropsEmptyAndMessagelessNodes(t *testing.T) {
	batch := []PostNode{
		&fakeNode{text: ""},
		&fakeNode{text: "Sponsored", hasContent: false},
		rentalNode("42", "להשכרה 4 חדרים"),
		rentalNode("43", "דירת גן להשכרה"),
		rentalNode("44", "שכ\"ד 5200"),
	}
	sess := &fakeSession{batches: [][]PostNode{batch}}

	posts, err := newTestCrawler(sess).Harvest(context.Background(), testGroupURL)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "42", posts[0].ExternalID)
}

func TestHarvestKeepsTruncatedTextWhenExpansionFails(t *testing.T) {
	node := rentalNode("99", "דירה להשכרה בתל אביב...")
	node.expandErr = errors.New("permalink fetch failed")
	node.expanded = "דירה להשכרה בתל אביב, 3 חדרים"
	sess := &fakeSession{batches: [][]PostNode{{node}}}

	posts, err := newTestCrawler(sess).Harvest(context.Background(), testGroupURL)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "דירה להשכרה בתל אביב...", posts[0].Content)
}

func TestHarvestSkipsPostWithoutPermalink(t *testing.T) {
	noLink := &fakeNode{
		text:       "דירה בלי קישור",
		content:    "דירה בלי קישור",
		hasContent: true,
		links:      []string{"https://www.facebook.com/some.profile"},
	}
	batch := []PostNode{noLink, rentalNode("7", "להשכרה דירת 3 חדרים")}
	sess := &fakeSession{batches: [][]PostNode{batch}}

	posts, err := newTestCrawler(sess).Harvest(context.Background(), testGroupURL)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "7", posts[0].ExternalID)
	assert.Equal(t, "https://www.facebook.com/groups/150903262296830/posts/7", posts[0].Link)
}

func TestHarvestNormalizesContent(t *testing.T) {
	node := rentalNode("11", "  דירה להשכרה \n")
	sess := &fakeSession{batches: [][]PostNode{{node}}}

	posts, err := newTestCrawler(sess).Harvest(context.Background(), testGroupURL)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "דירה להשכרה", posts[0].Content)
}
