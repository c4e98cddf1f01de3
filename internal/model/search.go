package model

// SearchParams describes one search query. Zero values mean "no
// restriction": an empty Terms slice produces a blank (recency-ordered)
// search, empty filter slices leave the candidate set unrestricted.
type SearchParams struct {
	// Terms are the query terms; all of them must match a page
	// (logical AND across terms).
	Terms []string `json:"terms,omitempty"`

	// TermsExclude drops any page whose term set contains one of these.
	TermsExclude []string `json:"termsExclude,omitempty"`

	// Domains restricts results to pages on these registrable domains.
	Domains []string `json:"domains,omitempty"`

	// DomainsExclude drops pages on these registrable domains.
	DomainsExclude []string `json:"domainsExclude,omitempty"`

	// Tags restricts results to pages carrying at least one of these tags.
	Tags []string `json:"tags,omitempty"`

	// BookmarksOnly restricts results to bookmarked pages.
	BookmarksOnly bool `json:"bookmarks,omitempty"`

	// StartDate is the inclusive lower bound on event timestamps
	// (Unix milliseconds). Zero means unbounded.
	StartDate int64 `json:"startDate,omitempty"`

	// EndDate is the inclusive upper bound on event timestamps
	// (Unix milliseconds). Zero means "now".
	EndDate int64 `json:"endDate,omitempty"`

	// Skip is the number of leading results to drop (pagination offset).
	Skip int `json:"skip,omitempty"`

	// Limit is the maximum number of results to return. Zero means the
	// default of 10.
	Limit int `json:"limit,omitempty"`
}

// SearchDoc is one search result prepared for display. The ordering of a
// result slice is established by scoring and must be preserved by the
// display-mapping step.
type SearchDoc struct {
	// URL is the display (full) URL of the page.
	URL string `json:"url"`

	// Title is the display title.
	Title string `json:"title"`

	// HasBookmark reports whether the page is bookmarked.
	HasBookmark bool `json:"hasBookmark"`

	// DisplayTime is the latest relevant event timestamp (Unix ms).
	DisplayTime int64 `json:"displayTime"`

	// Tags are the tag names on the page.
	Tags []string `json:"tags,omitempty"`

	// Screenshot is the page's screenshot reference, if any.
	Screenshot string `json:"screenshot,omitempty"`

	// FavIcon is the hostname's icon data URI, if any.
	FavIcon string `json:"favIcon,omitempty"`
}

// SearchResult is the full response of one search call.
type SearchResult struct {
	// Docs are the result pages in score order.
	Docs []SearchDoc `json:"docs"`

	// TotalCount is the number of matching pages before pagination.
	TotalCount int `json:"totalCount"`

	// ResultsExhausted reports that no further pages exist beyond the
	// returned slice.
	ResultsExhausted bool `json:"resultsExhausted"`

	// IsBadTerm reports that the query reduced to no usable terms
	// (stopwords or degenerate tokens only) and was not executed.
	IsBadTerm bool `json:"isBadTerm"`
}

// SuggestKind selects which index a prefix suggestion runs against.
type SuggestKind string

// Suggestion sources.
const (
	// SuggestDomain completes registrable-domain prefixes.
	SuggestDomain SuggestKind = "domain"

	// SuggestTag completes tag-name prefixes.
	SuggestTag SuggestKind = "tag"
)
