package scraper

import "strings"

// KeywordFilter flags posts that carry any configured unwanted phrase.
// Pure substring match, recall-biased: keeping an occasional unwanted post
// is acceptable, semantic classification is not attempted here.
type KeywordFilter struct {
	keywords []string
}

func NewKeywordFilter(keywords []string) *KeywordFilter {
	return &KeywordFilter{keywords: keywords}
}

func (f *KeywordFilter) IsUnwanted(text string) bool {
	for _, word := range f.keywords {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
