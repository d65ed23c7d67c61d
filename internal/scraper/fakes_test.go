package scraper

import (
	"context"
	"strings"

	"github.com/MeshiKro/ApartmentHunterBot/config"
	"github.com/MeshiKro/ApartmentHunterBot/models"
)

// fakeStore is an in-memory PostStore mirroring the duplicate-insert
// semantics of the real one.
type fakeStore struct {
	posts       []models.Post
	existsErr   error
	insertCalls int
}

func (s *fakeStore) Exists(_ context.Context, externalID string) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	for _, p := range s.posts {
		if p.ExternalID == externalID || strings.Contains(p.Link, externalID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) ExistsByContent(_ context.Context, content string) (bool, error) {
	for _, p := range s.posts {
		if p.Content == content {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) Insert(_ context.Context, post *models.Post) error {
	s.insertCalls++
	for _, p := range s.posts {
		if p.ExternalID == post.ExternalID {
			return nil // identifier conflict is a no-op
		}
	}
	s.posts = append(s.posts, *post)
	return nil
}

func (s *fakeStore) ListUnsent(_ context.Context) ([]models.Post, error) {
	var unsent []models.Post
	for _, p := range s.posts {
		if !p.HasBeenSent {
			unsent = append(unsent, p)
		}
	}
	return unsent, nil
}

func (s *fakeStore) MarkSent(_ context.Context, externalIDs []string) error {
	for i := range s.posts {
		for _, id := range externalIDs {
			if s.posts[i].ExternalID == id {
				s.posts[i].HasBeenSent = true
			}
		}
	}
	return nil
}

type fakeNode struct {
	text       string
	content    string
	hasContent bool
	links      []string
	expandErr  error
	expanded   string
}

func (n *fakeNode) Text() string { return n.text }

func (n *fakeNode) Expand(_ context.Context) error {
	if n.expandErr != nil {
		return n.expandErr
	}
	if n.expanded != "" {
		n.content = n.expanded
	}
	return nil
}

func (n *fakeNode) Content() (string, bool) { return n.content, n.hasContent }

func (n *fakeNode) Links() []string { return n.links }

type fakeSession struct {
	loginOutcomes []LoginOutcome
	loginErr      error
	loginCalls    int
	navErr        error
	navCalls      int
	batches       [][]PostNode
	postsCalls    int
	scrollCalls   int
}

func (s *fakeSession) Login(_ context.Context, _ *config.Credentials) (LoginOutcome, error) {
	i := s.loginCalls
	s.loginCalls++
	if s.loginErr != nil {
		return LoginSoftFailure, s.loginErr
	}
	if i >= len(s.loginOutcomes) {
		i = len(s.loginOutcomes) - 1
	}
	return s.loginOutcomes[i], nil
}

func (s *fakeSession) Navigate(_ context.Context, _ string) error {
	s.navCalls++
	return s.navErr
}

func (s *fakeSession) Scroll(_ context.Context) error {
	s.scrollCalls++
	return nil
}

func (s *fakeSession) Posts() ([]PostNode, error) {
	i := s.postsCalls
	s.postsCalls++
	if len(s.batches) == 0 {
		return nil, nil
	}
	if i >= len(s.batches) {
		i = len(s.batches) - 1
	}
	return s.batches[i], nil
}

func (s *fakeSession) Close() error { return nil }
