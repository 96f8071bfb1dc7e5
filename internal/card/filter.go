package card

import "strings"

// Filter selects the visible subset of a board. Both criteria apply (AND).
type Filter struct {
	Tags   []string // every tag must be present in the card
	Search string   // case-insensitive substring of the content
}

// Empty reports whether the filter lets every card through.
func (f Filter) Empty() bool {
	return len(f.Tags) == 0 && f.Search == ""
}

// Matches reports whether c passes the filter.
func (f Filter) Matches(c Card) bool {
	if len(f.Tags) > 0 {
		cardTags := ExtractTags(c.Content)
		for _, want := range f.Tags {
			if !containsStr(cardTags, want) {
				return false
			}
		}
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(c.Content), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// Visible returns the cards that pass f, preserving order.
func Visible(cards []Card, f Filter) []Card {
	result := make([]Card, 0, len(cards))
	for _, c := range cards {
		if f.Matches(c) {
			result = append(result, c)
		}
	}
	return result
}

// InColumn returns the cards that belong to columnID, preserving order.
func InColumn(cards []Card, columnID string) []Card {
	var result []Card
	for _, c := range cards {
		if c.ColumnID == columnID {
			result = append(result, c)
		}
	}
	return result
}

func containsStr(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
