package scraper

import "fmt"

// AuthError is fatal for the run: the session could not be established
// within the attempt budget.
type AuthError struct {
	Attempts int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("unable to log in after %d attempts", e.Attempts)
}

// GroupHarvestError aborts one group's harvest; the caller moves on to the
// next group.
type GroupHarvestError struct {
	GroupURL string
	Err      error
}

func (e *GroupHarvestError) Error() string {
	return fmt.Sprintf("failed to harvest group %s: %v", e.GroupURL, e.Err)
}

func (e *GroupHarvestError) Unwrap() error { return e.Err }

// PostExtractionError skips a single post without aborting the group.
type PostExtractionError struct {
	ExternalID string
	Err        error
}

func (e *PostExtractionError) Error() string {
	if e.ExternalID != "" {
		return fmt.Sprintf("failed to extract post %s: %v", e.ExternalID, e.Err)
	}
	return fmt.Sprintf("failed to extract post: %v", e.Err)
}

func (e *PostExtractionError) Unwrap() error { return e.Err }
