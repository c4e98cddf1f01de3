package legacy

import (
	"github.com/yomogi/pagestash/internal/model"
	"github.com/yomogi/pagestash/internal/textproc"
)

// ReverseIndexDoc is the per-page shadow record stored under page/<id>.
// It lists every index key that references the page, which is what makes
// exact deindexing possible without scanning the whole keyspace.
type ReverseIndexDoc struct {
	// Page carries the display and identity data of the page.
	Page model.Page `json:"page"`

	// Terms, TitleTerms, and URLTerms are the page's term sets per
	// term-type index.
	Terms      textproc.TermSet `json:"terms"`
	TitleTerms textproc.TermSet `json:"titleTerms"`
	URLTerms   textproc.TermSet `json:"urlTerms"`

	// Visits and Bookmarks hold the full visit/bookmark index keys
	// ("visit/0000001234567") referencing this page.
	Visits    textproc.TermSet `json:"visits"`
	Bookmarks textproc.TermSet `json:"bookmarks"`

	// Tags holds the tag index keys ("tag/recipes") on this page.
	Tags textproc.TermSet `json:"tags"`

	// FavIcon is the icon data URI for the page's hostname, carried on
	// the document because the legacy keyspace has no favicon index.
	FavIcon string `json:"favIcon,omitempty"`

	// Latest is the derived latest visit or bookmark timestamp, kept on
	// the document for cheap scoring lookups.
	Latest int64 `json:"latest"`
}

// newReverseIndexDoc builds an empty document for a page.
func newReverseIndexDoc(page model.Page) *ReverseIndexDoc {
	return &ReverseIndexDoc{
		Page:       page,
		Terms:      make(textproc.TermSet),
		TitleTerms: make(textproc.TermSet),
		URLTerms:   make(textproc.TermSet),
		Visits:     make(textproc.TermSet),
		Bookmarks:  make(textproc.TermSet),
		Tags:       make(textproc.TermSet),
	}
}

// refreshLatest recomputes the derived Latest field from the visit and
// bookmark key sets.
func (d *ReverseIndexDoc) refreshLatest() {
	var max int64
	for key := range d.Visits {
		if ts := timestampOfKey(key); ts > max {
			max = ts
		}
	}
	for key := range d.Bookmarks {
		if ts := timestampOfKey(key); ts > max {
			max = ts
		}
	}
	d.Latest = max
}

// isOrphaned reports whether the page has no remaining events and should
// be deleted. Stubs awaiting their first event are exempt.
func (d *ReverseIndexDoc) isOrphaned() bool {
	return len(d.Visits) == 0 && len(d.Bookmarks) == 0 && !d.Page.IsStub()
}

// indexValue is the value stored under term/title/url/domain/tag keys: a
// map of page IDs to their scoring anchors.
type indexValue map[string]indexEntry

// indexEntry is one page's entry inside an indexValue.
type indexEntry struct {
	// Latest mirrors the page document's Latest at the time of the last
	// write to this index key.
	Latest int64 `json:"latest"`
}

// timestampValue is the value stored under visit/<ts> and bookmark/<ts>
// keys.
type timestampValue struct {
	// PageID is the page the event belongs to.
	PageID string `json:"pageId"`

	// Interaction carries optional visit activity metrics; unused for
	// bookmarks.
	Interaction model.VisitInteraction `json:"meta,omitempty"`
}
