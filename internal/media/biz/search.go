package biz

import (
	"regexp"
	"strings"

	"github.com/lk2023060901/media-attached-filter/internal/media/types"
)

// MaxSearchTerms beyond this many terms the keyword is searched as one phrase
const MaxSearchTerms = 9

// DefaultSuggestionLimit 建议列表默认条数
const DefaultSuggestionLimit = 10

// termPattern matches an optionally negated quoted phrase (closing quote
// optional) or a run of characters other than whitespace, quotes, commas and
// plus signs.
var termPattern = regexp.MustCompile(`-?"[^"]*(?:"|$)|[^\s",+]+`)

// SearchTerm is one parsed keyword term
type SearchTerm struct {
	Text    string
	Exclude bool
}

// SearchQuery is a title search over parent kinds with the "any" status filter
type SearchQuery struct {
	// Phrase is the whole keyword; titles equal to or containing it rank first
	Phrase          string
	Terms           []SearchTerm
	Kinds           []string
	ExcludeStatuses []string
	Limit           int
}

// Included returns the terms a title must contain
func (q *SearchQuery) Included() []string {
	var out []string
	for _, t := range q.Terms {
		if !t.Exclude {
			out = append(out, t.Text)
		}
	}
	return out
}

// Excluded returns the terms a title must not contain
func (q *SearchQuery) Excluded() []string {
	var out []string
	for _, t := range q.Terms {
		if t.Exclude {
			out = append(out, t.Text)
		}
	}
	return out
}

// NewSearchQuery builds the suggestion search for an already sanitised keyword
func NewSearchQuery(keyword string, limit int) *SearchQuery {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	return &SearchQuery{
		Phrase:          keyword,
		Terms:           ParseSearchTerms(keyword),
		Kinds:           types.ParentKinds,
		ExcludeStatuses: types.ExcludedFromAny,
		Limit:           limit,
	}
}

// ParseSearchTerms splits keyword into terms. A quoted phrase is one term and
// a leading "-" excludes a term. Too many terms fall back to the whole keyword.
func ParseSearchTerms(keyword string) []SearchTerm {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil
	}

	matches := termPattern.FindAllString(keyword, -1)
	if len(matches) > MaxSearchTerms {
		return []SearchTerm{{Text: keyword}}
	}

	terms := make([]SearchTerm, 0, len(matches))
	seen := make(map[SearchTerm]bool, len(matches))
	for _, m := range matches {
		var term SearchTerm
		text := m
		if len(text) > 1 && strings.HasPrefix(text, "-") {
			term.Exclude = true
			text = text[1:]
		}
		term.Text = strings.TrimSpace(strings.Trim(text, `"`))
		if term.Text == "" || term.Text == "-" || seen[term] {
			continue
		}
		seen[term] = true
		terms = append(terms, term)
	}
	return terms
}
