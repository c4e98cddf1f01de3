package model

// Page represents the canonical record for one URL's saved content.
// Its identity is the normalized URL (scheme, query, fragment, and "www."
// noise removed); FullURL keeps the original form for display.
//
// A Page may exist as a stub (URL and title only, no content terms) while
// full indexing of its text is still pending. A non-stub Page with no
// remaining Visits and no Bookmark is orphaned and gets deleted.
type Page struct {
	// URL is the normalized URL and the primary key of the page.
	URL string `json:"url"`

	// FullURL is the original URL as saved, used for display and for
	// deriving URL-path terms.
	FullURL string `json:"fullUrl"`

	// FullTitle is the display title of the page.
	FullTitle string `json:"fullTitle"`

	// Text is the full extracted text of the page. Empty for stubs.
	Text string `json:"text,omitempty"`

	// Domain is the registrable domain of the URL (e.g. "example.co.uk").
	Domain string `json:"domain"`

	// Hostname is the full host of the URL minus any "www." prefix.
	Hostname string `json:"hostname"`

	// Screenshot is an optional reference (data URI or path) to a
	// screenshot of the page. The encoding is owned by the caller.
	Screenshot string `json:"screenshot,omitempty"`

	// Lang is the optional BCP 47 language tag reported by the fetcher.
	Lang string `json:"lang,omitempty"`

	// CanonicalURL is the optional canonical URL reported by the fetcher.
	CanonicalURL string `json:"canonicalUrl,omitempty"`

	// Description is the optional meta description reported by the fetcher.
	Description string `json:"description,omitempty"`
}

// IsStub reports whether the page has no indexed content yet.
// Stubs are created on the first visit/bookmark/tag event and completed
// once the content fetcher delivers the page text.
func (p *Page) IsStub() bool {
	return p.Text == ""
}

// PageContent is the record an external content fetcher produces for a URL.
// The index never fetches content itself; it only consumes these records.
type PageContent struct {
	// URL is the address the content was fetched from.
	URL string `json:"url"`

	// Title is the page title.
	Title string `json:"title"`

	// FullText is the extracted readable text of the page.
	FullText string `json:"fullText"`

	// Keywords are optional author-supplied keywords.
	Keywords []string `json:"keywords,omitempty"`

	// Description is the optional meta description.
	Description string `json:"description,omitempty"`

	// Lang is the optional BCP 47 language tag.
	Lang string `json:"lang,omitempty"`
}

// IndexRequest bundles a page's content with the events to record for it.
// It is the input of one logical add-page operation on either backend.
type IndexRequest struct {
	// Content is the fetched page content. Required.
	Content PageContent

	// VisitTimes are visit timestamps (Unix milliseconds) to record.
	VisitTimes []int64

	// Bookmark is an optional bookmark timestamp (Unix milliseconds).
	// Zero means no bookmark.
	Bookmark int64

	// Tags are tag names to associate with the page.
	Tags []string

	// Screenshot is an optional screenshot reference.
	Screenshot string

	// FavIcon is an optional favicon data URI for the page's hostname.
	FavIcon string
}
