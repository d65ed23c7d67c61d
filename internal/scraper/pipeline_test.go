package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeshiKro/ApartmentHunterBot/config"
	"github.com/MeshiKro/ApartmentHunterBot/internal/extractor"
)

func newTestPipeline(t *testing.T, cfg *config.ScraperConfig, sess Session, st *fakeStore) *Pipeline {
	t.Helper()
	fields, err := extractor.New(&config.ExtractorConfig{Strategy: "regex"})
	require.NoError(t, err)
	p := NewPipeline(cfg, sess, NewDedupGate(st, nil), fields, st)
	p.manager.SoftBackoff = 0
	p.manager.HardBackoff = 0
	p.crawler.SettleDelay = 0
	p.crawler.ScrollDelayMin = 0
	p.crawler.ScrollDelayMax = 0
	p.GroupBackoffMin = 0
	p.GroupBackoffMax = 0
	return p
}

func TestRunOncePersistsNewPostsWithExtractedFields(t *testing.T) {
	cfg := &config.ScraperConfig{
		GroupURLs:        []string{testGroupURL},
		MinRenderedPosts: 1,
	}
	sess := &fakeSession{
		loginOutcomes: []LoginOutcome{LoginSuccess},
		batches: [][]PostNode{{
			rentalNode("101", "להשכרה 3 חדרים 70 מ\"ר 5,200 ש\"ח"),
		}},
	}
	st := &fakeStore{}

	run, err := newTestPipeline(t, cfg, sess, st).RunOnce(context.Background(), &config.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, 1, run.GroupsOK)
	assert.Equal(t, 0, run.GroupsFailed)
	assert.Equal(t, 1, run.PostsInserted)

	require.Len(t, st.posts, 1)
	saved := st.posts[0]
	assert.Equal(t, "101", saved.ExternalID)
	assert.Equal(t, run.RunID, saved.RunID)
	assert.False(t, saved.HasBeenSent)
	require.NotNil(t, saved.Price)
	assert.Equal(t, 5200, *saved.Price)
	require.NotNil(t, saved.Rooms)
	assert.Equal(t, 3.0, *saved.Rooms)
	require.NotNil(t, saved.Size)
	assert.Equal(t, 70.0, *saved.Size)
}

func TestRunOnceSkipsAlreadyStoredPosts(t *testing.T) {
	cfg := &config.ScraperConfig{
		GroupURLs:        []string{testGroupURL, testGroupURL},
		MinRenderedPosts: 1,
	}
	sess := &fakeSession{
		loginOutcomes: []LoginOutcome{LoginSuccess},
		batches: [][]PostNode{
			{rentalNode("101", "להשכרה 3 חדרים")},
			{rentalNode("101", "להשכרה 3 חדרים")},
		},
	}
	st := &fakeStore{}

	run, err := newTestPipeline(t, cfg, sess, st).RunOnce(context.Background(), &config.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, 1, run.PostsInserted)
	assert.Len(t, st.posts, 1)
	assert.Equal(t, 1, st.insertCalls)
}

func TestRunOnceFiltersUnwantedPosts(t *testing.T) {
	cfg := &config.ScraperConfig{
		GroupURLs:        []string{testGroupURL},
		MinRenderedPosts: 1,
		UnwantedKeywords: []string{"שותפים"},
	}
	sess := &fakeSession{
		loginOutcomes: []LoginOutcome{LoginSuccess},
		batches: [][]PostNode{{
			rentalNode("1", "מחפשים שותפים לדירה"),
			rentalNode("2", "דירת 4 חדרים להשכרה"),
		}},
	}
	st := &fakeStore{}

	run, err := newTestPipeline(t, cfg, sess, st).RunOnce(context.Background(), &config.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, 1, run.PostsInserted)
	require.Len(t, st.posts, 1)
	assert.Equal(t, "2", st.posts[0].ExternalID)
}

func TestRunOnceCountsFailedGroupAndContinues(t *testing.T) {
	cfg := &config.ScraperConfig{
		GroupURLs:        []string{testGroupURL},
		MinRenderedPosts: 1,
	}
	sess := &fakeSession{
		loginOutcomes: []LoginOutcome{LoginSuccess},
		navErr:        assert.AnError,
	}
	st := &fakeStore{}

	run, err := newTestPipeline(t, cfg, sess, st).RunOnce(context.Background(), &config.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, 0, run.GroupsOK)
	assert.Equal(t, 1, run.GroupsFailed)
	assert.Empty(t, st.posts)
}

func TestRunOnceAbortsWhenSessionNeverEstablishes(t *testing.T) {
	cfg := &config.ScraperConfig{
		GroupURLs:        []string{testGroupURL},
		MaxLoginAttempts: 2,
	}
	sess := &fakeSession{loginOutcomes: []LoginOutcome{LoginSoftFailure}}
	st := &fakeStore{}

	run, err := newTestPipeline(t, cfg, sess, st).RunOnce(context.Background(), &config.Credentials{})
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 2, authErr.Attempts)
	assert.Equal(t, 0, run.GroupsOK)
	assert.Equal(t, 0, sess.navCalls)
}
