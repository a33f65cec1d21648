package types

import (
	"net/url"
	"strconv"
)

// Listing query vars
const (
	VarPostParent = "post_parent"
	VarPage       = "paged"
	VarPerPage    = "posts_per_page"
)

// UnresolvableParent is a parent id no item can have. Constraining a listing
// to it makes the listing return nothing.
const UnresolvableParent int64 = -1

// QuerySetter is the part of a listing query the attachment filter mutates
type QuerySetter interface {
	Set(field string, value any)
}

// ListingQuery is the in-flight query of a listing screen. Pre-listing hooks
// may mutate its vars before it runs.
type ListingQuery struct {
	vars   map[string]any
	params url.Values
	main   bool
}

// NewListingQuery creates a query built from the request params. main marks
// the screen's primary listing query.
func NewListingQuery(params url.Values, main bool) *ListingQuery {
	if params == nil {
		params = url.Values{}
	}
	return &ListingQuery{
		vars:   make(map[string]any),
		params: params,
		main:   main,
	}
}

// Set sets a query var
func (q *ListingQuery) Set(field string, value any) {
	q.vars[field] = value
}

// Get returns a query var
func (q *ListingQuery) Get(field string) (any, bool) {
	v, ok := q.vars[field]
	return v, ok
}

// Int64 returns a numeric query var
func (q *ListingQuery) Int64(field string) (int64, bool) {
	v, ok := q.vars[field]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}

// Param returns a raw request parameter and whether it was sent
func (q *ListingQuery) Param(name string) (string, bool) {
	if !q.params.Has(name) {
		return "", false
	}
	return q.params.Get(name), true
}

// Main reports whether this is the screen's primary listing query
func (q *ListingQuery) Main() bool {
	return q.main
}

// FilterOutcome is the attachment filter's decision for one listing query
type FilterOutcome struct {
	ParentID int64
	Resolved bool
}

// Resolved is the outcome of exactly one exact-title match
func Resolved(id int64) FilterOutcome {
	return FilterOutcome{ParentID: id, Resolved: true}
}

// Unresolvable is the outcome of zero or several matches
func Unresolvable() FilterOutcome {
	return FilterOutcome{ParentID: UnresolvableParent}
}

// String returns the outcome label used in logs and metrics
func (o FilterOutcome) String() string {
	if o.Resolved {
		return "resolved"
	}
	return "unresolvable"
}

// NewMainListingQuery builds a screen's main listing query from request
// params, reading paging from "page" and "per_page"
func NewMainListingQuery(params url.Values) *ListingQuery {
	q := NewListingQuery(params, true)
	if page, err := strconv.Atoi(params.Get("page")); err == nil {
		q.Set(VarPage, page)
	}
	if perPage, err := strconv.Atoi(params.Get("per_page")); err == nil {
		q.Set(VarPerPage, perPage)
	}
	return q
}
