package card

import (
	"regexp"
	"sort"
	"strings"
)

var tagPattern = regexp.MustCompile(`#\w+`)

// ExtractTags returns the distinct #tags found in text, in order of first
// appearance.
func ExtractTags(text string) []string {
	matches := tagPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		tags = append(tags, m)
	}
	return tags
}

// AllTags returns the sorted union of tags across cards.
func AllTags(cards []Card) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, c := range cards {
		for _, t := range ExtractTags(c.Content) {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// DisplayLines returns the content lines worth showing on a card face:
// lines that consist only of tags (and commas) are dropped because tags are
// rendered separately.
func DisplayLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		rest := tagPattern.ReplaceAllString(line, "")
		rest = strings.TrimSpace(strings.ReplaceAll(rest, ",", ""))
		if rest == "" && tagPattern.MatchString(line) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
