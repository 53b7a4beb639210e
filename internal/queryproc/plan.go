// Package queryproc parses a free-form query string into one of five
// plans and evaluates it against an indexer.Index, producing a ranked
// result list and the true match count before top-K limiting.
package queryproc

import (
	"regexp"
	"strings"
)

// Kind names one of the five query shapes.
type Kind int

const (
	KindVector Kind = iota
	KindPhrase
	KindOr
	KindAnd
	KindDifference
)

// Plan is a parsed query, ready for evaluation.
type Plan struct {
	Kind  Kind
	Terms []string // phrase: ordered words; or/and: full term set; vector: term set

	// Difference-only.
	Include string
	Exclude string

	// Phrase-only, kept for description text.
	Phrase string

	// ExactOnly is set by the legacy "!term" shortcut: a single term is
	// looked up and returned unscored, with no ranking.
	ExactOnly bool
}

var (
	phrasePattern     = regexp.MustCompile(`"([^"]+)"`)
	orPattern         = regexp.MustCompile(`(?i)\b(\w+)\s+or\s+(\w+)\b`)
	andPattern        = regexp.MustCompile(`(?i)\b(\w+)\s+and\s+(\w+)\b`)
	differencePattern = regexp.MustCompile(`(?i)\b(\w+)\s+but\s+(\w+)\b`)
)

// Parse dispatches a raw query string to one of the five plans, in
// strict priority order: phrase, OR, AND, difference, vector (first
// match wins). A leading "!" is checked before all five and yields the
// unscored exact-match plan.
func Parse(query string) Plan {
	q := strings.TrimSpace(query)

	if exact, ok := parseExactShortcut(q); ok {
		return exact
	}

	if m := phrasePattern.FindStringSubmatch(q); m != nil {
		phrase := m[1]
		return Plan{Kind: KindPhrase, Terms: lowerFields(phrase), Phrase: phrase}
	}

	if m := orPattern.FindStringSubmatch(q); m != nil {
		return Plan{Kind: KindOr, Terms: remainingTerms(q, orPattern, "or", m)}
	}

	if m := andPattern.FindStringSubmatch(q); m != nil {
		return Plan{Kind: KindAnd, Terms: remainingTerms(q, andPattern, "and", m)}
	}

	if m := differencePattern.FindStringSubmatch(q); m != nil {
		include, exclude := strings.ToLower(m[1]), strings.ToLower(m[2])
		return Plan{Kind: KindDifference, Include: include, Exclude: exclude, Terms: []string{include, exclude}}
	}

	return Plan{Kind: KindVector, Terms: lowerFields(q)}
}

func parseExactShortcut(q string) (Plan, bool) {
	if len(q) < 2 || q[0] != '!' {
		return Plan{}, false
	}
	term := strings.ToLower(strings.TrimSpace(q[1:]))
	if term == "" {
		return Plan{}, false
	}
	return Plan{Kind: KindVector, Terms: []string{term}, ExactOnly: true}, true
}

func lowerFields(s string) []string {
	fields := strings.Fields(s)
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.ToLower(f)
	}
	return out
}

// remainingTerms builds the deduplicated term set for an OR/AND plan:
// the two captured words plus every other non-keyword word in the
// query, matching the source's "strip the matched spans, split what's
// left" approach.
func remainingTerms(q string, pattern *regexp.Regexp, keyword string, firstMatch []string) []string {
	seen := map[string]struct{}{}
	var terms []string
	add := func(w string) {
		w = strings.ToLower(w)
		if w == "" {
			return
		}
		if _, ok := seen[w]; ok {
			return
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
	}

	add(firstMatch[1])
	add(firstMatch[2])

	stripped := q
	for _, m := range pattern.FindAllString(q, -1) {
		stripped = strings.Replace(stripped, m, "", 1)
	}
	for _, w := range strings.Fields(stripped) {
		lw := strings.ToLower(w)
		if lw == keyword {
			continue
		}
		add(lw)
	}
	return terms
}
