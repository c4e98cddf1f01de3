package model

// Visit records one viewing of a page. Its identity is the (Time, URL)
// compound key; multiple visits may exist per page. The latest visit
// timestamp is the default relevance anchor for search scoring.
type Visit struct {
	// URL is the normalized URL of the visited page.
	URL string `json:"url"`

	// Time is the visit timestamp in Unix milliseconds.
	Time int64 `json:"time"`

	// VisitInteraction carries optional activity metrics for the visit.
	VisitInteraction
}

// VisitInteraction holds optional per-visit activity metrics reported by
// the host environment after the visit ends.
type VisitInteraction struct {
	// Duration is the time the user was active during the visit (ms).
	Duration int64 `json:"duration,omitempty"`

	// ScrollPx is the y-axis pixel scrolled to at time of recording.
	ScrollPx float64 `json:"scrollPx,omitempty"`

	// ScrollPerc is ScrollPx as a percentage of page height.
	ScrollPerc float64 `json:"scrollPerc,omitempty"`

	// ScrollMaxPx is the furthest y-axis pixel scrolled to during the visit.
	ScrollMaxPx float64 `json:"scrollMaxPx,omitempty"`

	// ScrollMaxPerc is ScrollMaxPx as a percentage of page height.
	ScrollMaxPerc float64 `json:"scrollMaxPerc,omitempty"`
}

// Bookmark marks a page as saved by the user. At most one bookmark exists
// per page in the current model, so the URL is the identity.
type Bookmark struct {
	// URL is the normalized URL of the bookmarked page.
	URL string `json:"url"`

	// Time is the bookmark timestamp in Unix milliseconds.
	Time int64 `json:"time"`
}

// Tag associates a free-text name with a page. Identity is the
// (Name, URL) compound key; the relation is many-to-many.
type Tag struct {
	// Name is the tag text.
	Name string `json:"name"`

	// URL is the normalized URL of the tagged page.
	URL string `json:"url"`
}

// FavIcon stores one icon per hostname. It is shared by every page of
// that hostname and not owned by any single page; association is a weak
// hostname lookup only.
type FavIcon struct {
	// Hostname is the host the icon belongs to.
	Hostname string `json:"hostname"`

	// Icon is the icon encoded as a data URI.
	Icon string `json:"icon"`
}

// ExportedPage is the backend-independent export format used to move one
// page and all of its associated records between backends during migration.
type ExportedPage struct {
	// Page is the page record itself.
	Page Page `json:"page"`

	// Visits are all visit records for the page.
	Visits []Visit `json:"visits,omitempty"`

	// Bookmark is the bookmark timestamp, zero if none.
	Bookmark int64 `json:"bookmark,omitempty"`

	// Tags are the tag names associated with the page.
	Tags []string `json:"tags,omitempty"`

	// FavIcon is the icon data URI for the page's hostname, if known.
	FavIcon string `json:"favIcon,omitempty"`
}
