package types

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// SearchResult maps content ids to display titles in relevance order.
// It encodes as a JSON object with the ids as string keys, keeping order.
type SearchResult struct {
	items *orderedmap.OrderedMap[int64, string]
}

// NewSearchResult returns an empty result
func NewSearchResult() *SearchResult {
	return &SearchResult{items: orderedmap.New[int64, string]()}
}

// Set adds id, or replaces its title without moving it
func (r *SearchResult) Set(id int64, title string) {
	r.items.Set(id, title)
}

// Title returns the title stored for id
func (r *SearchResult) Title(id int64) (string, bool) {
	return r.items.Get(id)
}

// Len returns the number of entries
func (r *SearchResult) Len() int {
	if r == nil {
		return 0
	}
	return r.items.Len()
}

// Empty reports whether nothing matched
func (r *SearchResult) Empty() bool {
	return r.Len() == 0
}

// IDs returns the ids in order
func (r *SearchResult) IDs() []int64 {
	if r == nil {
		return nil
	}
	ids := make([]int64, 0, r.items.Len())
	for pair := r.items.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}

// MarshalJSON implements json.Marshaler
func (r *SearchResult) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return r.items.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler
func (r *SearchResult) UnmarshalJSON(data []byte) error {
	items := orderedmap.New[int64, string]()
	if err := json.Unmarshal(data, items); err != nil {
		return err
	}
	r.items = items
	return nil
}

// SuggestionResponse is the body of the suggestion AJAX action
type SuggestionResponse struct {
	Success bool          `json:"success"`
	Results *SearchResult `json:"results"`
}

// NewSuggestionResponse wraps result; success is false exactly when it is empty
func NewSuggestionResponse(result *SearchResult) *SuggestionResponse {
	if result == nil {
		result = NewSearchResult()
	}
	return &SuggestionResponse{
		Success: !result.Empty(),
		Results: result,
	}
}
