package faq

import "strings"

// SearchQuery is an all-terms-present predicate. A text matches when every
// term occurs in it as a case-insensitive substring, in any order.
type SearchQuery struct {
	Raw   string
	Terms []string
}

// ParseSearchQuery trims raw and splits it on whitespace runs.
func ParseSearchQuery(raw string) (SearchQuery, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return SearchQuery{}, invalid("search query parameter is required")
	}
	return SearchQuery{Raw: trimmed, Terms: strings.Fields(trimmed)}, nil
}

// MatchText applies the predicate to a single field value.
func (q SearchQuery) MatchText(text string) bool {
	if len(q.Terms) == 0 {
		return false
	}
	lowered := strings.ToLower(text)
	for _, term := range q.Terms {
		if !strings.Contains(lowered, strings.ToLower(term)) {
			return false
		}
	}
	return true
}

// Matches ORs the predicate across the searchable fields of r. All terms must
// land in the same field value; they are never combined across fields.
func (q SearchQuery) Matches(r Record) bool {
	for _, variation := range r.QuestionVariations {
		if q.MatchText(variation) {
			return true
		}
	}
	for _, answer := range r.Answers {
		if q.MatchText(answer.Text) {
			return true
		}
	}
	for _, entity := range r.Entities {
		if q.MatchText(entity) {
			return true
		}
	}
	return q.MatchText(r.Intent) || q.MatchText(r.Context)
}

// Filter keeps only the records that match, preserving order.
func (q SearchQuery) Filter(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
