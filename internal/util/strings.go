// Package util provides small string helpers shared by the CLI and config
// layers.
package util

import (
	"sort"
	"strings"
)

// Pluralize returns singular if count is 1, otherwise plural.
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// LevenshteinDistance is the number of single-rune insertions, deletions
// and substitutions that turn a into b.
func LevenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// SuggestSimilar returns up to limit candidates close to input, nearest
// first, compared case-insensitively. Ties keep candidate order.
func SuggestSimilar(input string, candidates []string, limit int) []string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" || len(candidates) == 0 || limit <= 0 {
		return nil
	}
	maxDist := max(2, len([]rune(input))/3)

	type match struct {
		candidate string
		dist      int
	}
	var matches []match
	for _, c := range candidates {
		if d := LevenshteinDistance(input, strings.ToLower(c)); d <= maxDist {
			matches = append(matches, match{c, d})
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].dist < matches[j].dist })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.candidate
	}
	return out
}

// DidYouMean formats the suggestions for input as a hint, or "" when
// nothing is close.
func DidYouMean(input string, candidates []string) string {
	s := SuggestSimilar(input, candidates, 3)
	if len(s) == 0 {
		return ""
	}
	return "did you mean " + strings.Join(s, " or ") + "?"
}
