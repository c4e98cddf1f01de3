package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/yomogi/pagestash/internal/model"
	"github.com/yomogi/pagestash/internal/settings"
)

// State is the persisted lifecycle state of the migration.
type State string

// Migration states. Finished is terminal; every other state permits
// Start to resume.
const (
	StatePending     State = "pending"
	StateRunning     State = "running"
	StateInterrupted State = "interrupted"
	StateFinished    State = "finished"
)

// BatchOutcome reports how a Start run ended. Interruption is a control
// signal, not a failure, so it is part of the outcome rather than an
// error.
type BatchOutcome string

const (
	// OutcomeFinished means the legacy key range is exhausted and the
	// structured backend is now authoritative.
	OutcomeFinished BatchOutcome = "finished"

	// OutcomeInterrupted means Stop was observed at a batch boundary;
	// progress is persisted and a later Start resumes.
	OutcomeInterrupted BatchOutcome = "interrupted"

	// OutcomeAlreadyRunning means another Start call owns the run.
	OutcomeAlreadyRunning BatchOutcome = "already-running"
)

// Settings keys for the persisted migration state.
const (
	keyState  = "migration.state"
	keyCursor = "migration.cursor"
)

// defaultBatchSize is the number of pages exported and imported per
// batch. Progress is persisted at this granularity.
const defaultBatchSize = 10

// Exporter is the legacy backend's read surface for migration.
type Exporter interface {
	// PageKeysAfter returns up to limit page IDs strictly greater than
	// cursor, in key order; empty when exhausted.
	PageKeysAfter(ctx context.Context, cursor string, limit int) ([]string, error)

	// ExportPage builds the portable record of one page, or (nil, nil)
	// when the page vanished since the key scan.
	ExportPage(ctx context.Context, pageID string) (*model.ExportedPage, error)
}

// Importer is the structured backend's write surface for migration.
type Importer interface {
	Import(ctx context.Context, exp *model.ExportedPage) error
}

// Manager drives one migration between the two backends.
type Manager struct {
	exporter Exporter
	importer Importer
	settings settings.Store
	logger   *slog.Logger

	// onFinish flips the authoritative backend. Called exactly once,
	// when the legacy key range is first exhausted.
	onFinish func() error

	batchSize int

	runMu    sync.Mutex
	running  atomic.Bool
	stopFlag atomic.Bool
}

// NewManager creates a Manager over the given backends. onFinish may be
// nil when no backend flip is wanted (tests).
func NewManager(exp Exporter, imp Importer, set settings.Store, logger *slog.Logger, onFinish func() error) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		exporter:  exp,
		importer:  imp,
		settings:  set,
		logger:    logger,
		onFinish:  onFinish,
		batchSize: defaultBatchSize,
	}
}

// State returns the persisted migration state. A fresh store reports
// pending.
func (m *Manager) State() (State, error) {
	v, err := m.settings.Get(keyState)
	if err != nil {
		return "", fmt.Errorf("failed to read migration state: %w", err)
	}
	if v == "" {
		return StatePending, nil
	}
	return State(v), nil
}

// IsRunning reports whether a Start call currently owns the run.
func (m *Manager) IsRunning() bool {
	return m.running.Load()
}

// Stop requests cancellation. It takes effect at the next batch boundary,
// not immediately.
func (m *Manager) Stop() {
	m.stopFlag.Store(true)
}

// Start runs the migration from the last persisted progress key until the
// legacy key range is exhausted or Stop is observed. concurrency bounds
// the per-batch export/import parallelism; values below 1 run serially.
func (m *Manager) Start(ctx context.Context, concurrency int) (BatchOutcome, error) {
	state, err := m.State()
	if err != nil {
		return "", err
	}
	if state == StateFinished {
		return OutcomeFinished, nil
	}
	if !m.running.CompareAndSwap(false, true) {
		return OutcomeAlreadyRunning, nil
	}
	defer m.running.Store(false)

	m.runMu.Lock()
	defer m.runMu.Unlock()

	if concurrency < 1 {
		concurrency = 1
	}
	m.stopFlag.Store(false)

	cursor, err := m.settings.Get(keyCursor)
	if err != nil {
		return "", fmt.Errorf("failed to read migration cursor: %w", err)
	}
	if err := m.settings.Set(keyState, string(StateRunning)); err != nil {
		return "", fmt.Errorf("failed to persist migration state: %w", err)
	}

	m.logger.Info("migration started",
		slog.String("cursor", cursor),
		slog.Int("concurrency", concurrency))

	for {
		keys, err := m.exporter.PageKeysAfter(ctx, cursor, m.batchSize)
		if err != nil {
			return "", fmt.Errorf("failed to fetch migration batch: %w", err)
		}
		if len(keys) == 0 {
			return m.finish()
		}

		if err := m.transferBatch(ctx, keys, concurrency); err != nil {
			return "", err
		}

		cursor = keys[len(keys)-1]
		if err := m.settings.Set(keyCursor, cursor); err != nil {
			return "", fmt.Errorf("failed to persist migration cursor: %w", err)
		}

		if m.stopFlag.Load() {
			if err := m.settings.Set(keyState, string(StateInterrupted)); err != nil {
				return "", fmt.Errorf("failed to persist migration state: %w", err)
			}
			m.logger.Info("migration interrupted", slog.String("cursor", cursor))
			return OutcomeInterrupted, nil
		}
	}
}

// transferBatch exports and imports one batch of pages concurrently.
func (m *Manager) transferBatch(ctx context.Context, keys []string, concurrency int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, key := range keys {
		g.Go(func() error {
			exp, err := m.exporter.ExportPage(gctx, key)
			if err != nil {
				return fmt.Errorf("failed to export %q: %w", key, err)
			}
			if exp == nil {
				// Deleted between the key scan and now.
				return nil
			}
			if err := m.importer.Import(gctx, exp); err != nil {
				return fmt.Errorf("failed to import %q: %w", key, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// finish persists the terminal marker and then runs the completion
// callback. Once the marker is durable no later Start can reach this
// path again, which is what bounds the callback to one invocation.
func (m *Manager) finish() (BatchOutcome, error) {
	if err := m.settings.Set(keyState, string(StateFinished)); err != nil {
		return "", fmt.Errorf("failed to persist finished marker: %w", err)
	}
	if m.onFinish != nil {
		if err := m.onFinish(); err != nil {
			return "", fmt.Errorf("completion callback failed: %w", err)
		}
	}
	m.logger.Info("migration finished")
	return OutcomeFinished, nil
}
