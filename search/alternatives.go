package search

import (
	"regexp"
	"strings"
)

// Suffixes appended to a query when the literal text yields nothing.
var altSuffixes = []string{
	"song",
	"audio",
	"lyrics",
	"music video",
	"official audio",
	"official video",
}

// Leading tokens stripped from a query; only the first match applies.
var altPrefixes = []string{
	"song",
	"audio",
	"lyrics",
	"music",
	"video",
}

// Parenthesized featuring/with segments, e.g. "(feat. X)" or "(with Y)".
var featRegex = regexp.MustCompile(`(?i)\((?:feat\.|with )[^)]*\)`)

// AlternativeQueries derives the ordered, de-duplicated list of query
// variants tried during retry rounds. The original query always comes
// first; duplicates keep their first occurrence.
func AlternativeQueries(query string) []string {
	query = strings.TrimSpace(query)
	lower := strings.ToLower(query)

	var alternatives []string
	alternatives = append(alternatives, query)

	for _, suffix := range altSuffixes {
		if strings.Contains(lower, suffix) {
			continue
		}
		alternatives = append(alternatives, query+" "+suffix)
	}

	for _, prefix := range altPrefixes {
		if len(lower) > len(prefix)+1 && strings.HasPrefix(lower, prefix+" ") {
			alternatives = append(alternatives, strings.TrimSpace(query[len(prefix)+1:]))
			break
		}
	}

	if featRegex.MatchString(query) {
		stripped := strings.TrimSpace(featRegex.ReplaceAllString(query, ""))
		stripped = strings.Join(strings.Fields(stripped), " ")
		if stripped != "" {
			alternatives = append(alternatives, stripped)
		}
	}

	return dedupe(alternatives)
}

func dedupe(queries []string) []string {
	seen := make(map[string]struct{}, len(queries))
	out := queries[:0]
	for _, q := range queries {
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
	}
	return out
}
