// Package extractor pulls structured rental fields out of free-text post
// bodies.
package extractor

import (
	"fmt"

	"github.com/MeshiKro/ApartmentHunterBot/config"
)

// Fields are the structured values found in a post body. A nil field means
// the pattern did not match; 0 is never used to mean "unknown".
type Fields struct {
	Price *int
	Rooms *float64
	Size  *float64
}

// FieldExtractor is the extraction capability. Strategies are
// interchangeable; the pipeline does not care how the fields were found.
type FieldExtractor interface {
	Extract(text string) Fields
}

func New(cfg *config.ExtractorConfig) (FieldExtractor, error) {
	switch cfg.Strategy {
	case "", "regex":
		return NewRegexExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown extractor strategy %q", cfg.Strategy)
	}
}
