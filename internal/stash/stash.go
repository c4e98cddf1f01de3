package stash

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/yomogi/pagestash/internal/legacy"
	"github.com/yomogi/pagestash/internal/migrate"
	"github.com/yomogi/pagestash/internal/model"
	"github.com/yomogi/pagestash/internal/searchengine"
	"github.com/yomogi/pagestash/internal/settings"
	"github.com/yomogi/pagestash/internal/tablestore"
)

// IndexHandle names the authoritative backend. It is resolved exactly
// once, when the Stash is created, from the persisted migration outcome;
// a completed in-process migration takes effect on the next startup.
type IndexHandle int

const (
	// HandleLegacy routes operations to the key-value backend.
	HandleLegacy IndexHandle = iota
	// HandleStructured routes operations to the table backend.
	HandleStructured
)

// String implements fmt.Stringer.
func (h IndexHandle) String() string {
	if h == HandleStructured {
		return "structured"
	}
	return "legacy"
}

// keyActiveBackend is the settings key the migration's completion
// callback writes.
const keyActiveBackend = "index.backend"

// Backend is the full operation surface shared by both storage backends.
type Backend interface {
	searchengine.Source

	AddPage(ctx context.Context, req model.IndexRequest) error
	AddVisit(ctx context.Context, rawURL string, ts int64, interaction model.VisitInteraction) error
	AddBookmark(ctx context.Context, rawURL string, ts int64) error
	AddTag(ctx context.Context, rawURL, name string) error
	DelTag(ctx context.Context, rawURL, name string) error
	DelBookmark(ctx context.Context, rawURL string) error
	DelVisit(ctx context.Context, rawURL string, ts int64) error
	DelPages(ctx context.Context, rawURLs []string) error
	DelPagesByDomain(ctx context.Context, domain string) error
	DelPagesByPattern(ctx context.Context, re *regexp.Regexp) error
	UpdateVisitInteraction(ctx context.Context, rawURL string, ts int64, interaction model.VisitInteraction) error

	Close() error
}

// Stash owns both backends and the migration between them.
type Stash struct {
	legacy     *legacy.Store
	structured *tablestore.Store
	settings   settings.Store
	logger     *slog.Logger

	handle  IndexHandle
	active  Backend
	engine  *searchengine.Engine
	manager *migrate.Manager
}

// New wires a Stash over already-opened backends. The active backend is
// resolved from the settings store once, here.
func New(leg *legacy.Store, tab *tablestore.Store, set settings.Store, logger *slog.Logger) (*Stash, error) {
	if logger == nil {
		logger = slog.Default()
	}

	flag, err := set.Get(keyActiveBackend)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve active backend: %w", err)
	}

	s := &Stash{
		legacy:     leg,
		structured: tab,
		settings:   set,
		logger:     logger,
	}
	if flag == HandleStructured.String() {
		s.handle = HandleStructured
		s.active = tab
	} else {
		s.handle = HandleLegacy
		s.active = leg
	}
	s.engine = searchengine.New(s.active, logger)
	s.manager = migrate.NewManager(leg, tab, set, logger, func() error {
		return set.Set(keyActiveBackend, HandleStructured.String())
	})

	logger.Info("index backend resolved", slog.String("backend", s.handle.String()))
	return s, nil
}

// Handle returns the authoritative backend resolved at startup.
func (s *Stash) Handle() IndexHandle {
	return s.handle
}

// Close closes both backends.
func (s *Stash) Close() error {
	legErr := s.legacy.Close()
	if err := s.structured.Close(); err != nil {
		return err
	}
	return legErr
}

// AddPage indexes page content with its events through the active
// backend.
func (s *Stash) AddPage(ctx context.Context, req model.IndexRequest) error {
	return s.active.AddPage(ctx, req)
}

// AddVisit records a visit; the page must already be indexed.
func (s *Stash) AddVisit(ctx context.Context, rawURL string, ts int64, interaction model.VisitInteraction) error {
	return s.active.AddVisit(ctx, rawURL, ts, interaction)
}

// AddBookmark bookmarks an indexed page.
func (s *Stash) AddBookmark(ctx context.Context, rawURL string, ts int64) error {
	return s.active.AddBookmark(ctx, rawURL, ts)
}

// DelBookmark removes a page's bookmark.
func (s *Stash) DelBookmark(ctx context.Context, rawURL string) error {
	return s.active.DelBookmark(ctx, rawURL)
}

// AddTag tags an indexed page.
func (s *Stash) AddTag(ctx context.Context, rawURL, name string) error {
	return s.active.AddTag(ctx, rawURL, name)
}

// DelTag removes a tag from a page.
func (s *Stash) DelTag(ctx context.Context, rawURL, name string) error {
	return s.active.DelTag(ctx, rawURL, name)
}

// DelVisit removes one visit of a page.
func (s *Stash) DelVisit(ctx context.Context, rawURL string, ts int64) error {
	return s.active.DelVisit(ctx, rawURL, ts)
}

// DelPages removes the given pages entirely.
func (s *Stash) DelPages(ctx context.Context, rawURLs []string) error {
	return s.active.DelPages(ctx, rawURLs)
}

// DelPagesByDomain removes every page on a registrable domain.
func (s *Stash) DelPagesByDomain(ctx context.Context, domain string) error {
	return s.active.DelPagesByDomain(ctx, domain)
}

// DelPagesByPattern removes every page whose normalized URL matches re.
func (s *Stash) DelPagesByPattern(ctx context.Context, re *regexp.Regexp) error {
	return s.active.DelPagesByPattern(ctx, re)
}

// UpdateVisitInteraction attaches activity metrics to an existing visit.
func (s *Stash) UpdateVisitInteraction(ctx context.Context, rawURL string, ts int64, interaction model.VisitInteraction) error {
	return s.active.UpdateVisitInteraction(ctx, rawURL, ts, interaction)
}

// Search runs a query against the active backend.
func (s *Stash) Search(ctx context.Context, params model.SearchParams) (*model.SearchResult, error) {
	return s.engine.Search(ctx, params)
}

// Suggest completes a domain or tag prefix.
func (s *Stash) Suggest(ctx context.Context, kind model.SuggestKind, prefix string, limit int) ([]string, error) {
	return s.engine.Suggest(ctx, kind, prefix, limit)
}

// StartMigration runs the legacy-to-structured migration until it
// finishes or is stopped. The new backend becomes authoritative on the
// next startup.
func (s *Stash) StartMigration(ctx context.Context, concurrency int) (migrate.BatchOutcome, error) {
	return s.manager.Start(ctx, concurrency)
}

// StopMigration requests cancellation at the next batch boundary.
func (s *Stash) StopMigration() {
	s.manager.Stop()
}

// IsMigrating reports whether a migration run is in flight.
func (s *Stash) IsMigrating() bool {
	return s.manager.IsRunning()
}

// MigrationState returns the persisted migration lifecycle state.
func (s *Stash) MigrationState() (migrate.State, error) {
	return s.manager.State()
}

// Scheduler returns an idle scheduler bound to this stash's migration.
func (s *Stash) Scheduler(states <-chan migrate.HostState, concurrency int) *migrate.Scheduler {
	return migrate.NewScheduler(s.manager, states, concurrency, s.logger)
}
