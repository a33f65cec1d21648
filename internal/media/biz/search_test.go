package biz

import (
	"strings"
	"testing"

	"github.com/lk2023060901/media-attached-filter/internal/media/types"
	"github.com/stretchr/testify/assert"
)

func TestParseSearchTerms(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		want    []SearchTerm
	}{
		{"single", "alpha", []SearchTerm{{Text: "alpha"}}},
		{"words", "alpha  beta", []SearchTerm{{Text: "alpha"}, {Text: "beta"}}},
		{"commas and plus", "alpha,beta+gamma", []SearchTerm{{Text: "alpha"}, {Text: "beta"}, {Text: "gamma"}}},
		{"quoted phrase", `"alpha beta" gamma`, []SearchTerm{{Text: "alpha beta"}, {Text: "gamma"}}},
		{"unterminated quote", `gamma "alpha beta`, []SearchTerm{{Text: "gamma"}, {Text: "alpha beta"}}},
		{"exclusion", "alpha -beta", []SearchTerm{{Text: "alpha"}, {Text: "beta", Exclude: true}}},
		{"excluded phrase", `alpha -"beta gamma"`, []SearchTerm{{Text: "alpha"}, {Text: "beta gamma", Exclude: true}}},
		{"bare dash", "alpha - beta", []SearchTerm{{Text: "alpha"}, {Text: "beta"}}},
		{"duplicates", "alpha alpha", []SearchTerm{{Text: "alpha"}}},
		{"empty quotes", `"" alpha`, []SearchTerm{{Text: "alpha"}}},
		{"blank", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSearchTerms(tt.keyword))
		})
	}
}

func TestParseSearchTerms_TooManyTerms(t *testing.T) {
	keyword := strings.Repeat("w ", MaxSearchTerms+1)
	keyword = strings.TrimSpace(keyword)

	assert.Equal(t, []SearchTerm{{Text: keyword}}, ParseSearchTerms(keyword))
}

func TestNewSearchQuery(t *testing.T) {
	q := NewSearchQuery("alpha -beta", 0)

	assert.Equal(t, "alpha -beta", q.Phrase)
	assert.Equal(t, DefaultSuggestionLimit, q.Limit)
	assert.Equal(t, types.ParentKinds, q.Kinds)
	assert.Equal(t, types.ExcludedFromAny, q.ExcludeStatuses)
	assert.Equal(t, []string{"alpha"}, q.Included())
	assert.Equal(t, []string{"beta"}, q.Excluded())
}
