package extractor

import (
	"regexp"
	"strconv"
	"strings"
)

// maxPriceDigits guards against phone numbers and listing IDs being read as
// prices: a match with this many digits or more is discarded.
const maxPriceDigits = 9

var (
	pricePattern = regexp.MustCompile(`(?:מחיר[:\s-]*|שכ["׳]?ד[:\s-]*|שכר\s*דירה[:\s-]*|עלות חודשית[:\s-]*)?\s*(\d{1,3}(?:,\d{3})+|\d{4,})\s*(?:ש["׳]?ח|₪|מיליון|שקל)?`)
	roomsPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:חדרים|חדר|חד)`)
	sizePattern  = regexp.MustCompile(`(\d+(?:\.\d+)?)(?:\s*וחצי)?\s*(?:מ"ר|מטר|מר|מ״ר)`)
)

// RegexExtractor is the pattern-based strategy. Each field is extracted
// independently, first match wins, and no cross-field validation is
// attempted.
type RegexExtractor struct{}

func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

func (e *RegexExtractor) Extract(text string) Fields {
	return Fields{
		Price: extractPrice(text),
		Rooms: extractRooms(text),
		Size:  extractSize(text),
	}
}

func extractPrice(text string) *int {
	m := pricePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	raw := strings.ReplaceAll(m[1], ",", "")
	if len(raw) >= maxPriceDigits {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func extractRooms(text string) *float64 {
	return firstFloat(roomsPattern, text)
}

func extractSize(text string) *float64 {
	return firstFloat(sizePattern, text)
}

func firstFloat(pattern *regexp.Regexp, text string) *float64 {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}
