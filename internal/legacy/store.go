package legacy

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cockroachdb/pebble"
)

// termsSizeLimit decides between N single-key lookups and one range scan
// when reading existing values for a term set. Beyond this many terms a
// full prefix scan is cheaper than the individual seeks.
const termsSizeLimit = 3000

// ErrNoPage is returned by operations whose contract requires the page to
// already exist in the index.
var ErrNoPage = errors.New("page is not indexed")

// writeOpts makes batch commits synchronous. The index is the single copy
// of the user's data, so losing acknowledged writes on crash is not
// acceptable.
var writeOpts = pebble.Sync

// Store is the legacy inverted-index backend over one Pebble keyspace.
//
// All mutating operations serialize through opMu, the in-process operation
// queue. The key-value log has no multi-key transactions; cross-key
// consistency exists only because no two index-mutating operations ever
// run concurrently.
type Store struct {
	db     *pebble.DB
	logger *slog.Logger

	// opMu is the single global operation queue (see package doc).
	opMu sync.Mutex
}

// Open opens or creates the legacy index at dir.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy index: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.db.Close()
}

// getJSON reads and decodes the value at key into out. A missing key
// returns (false, nil).
func (s *Store) getJSON(key string, out any) (bool, error) {
	data, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	defer closer.Close() //nolint:errcheck

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return true, nil
}

// setJSON encodes v and adds the write to batch.
func setJSON(batch *pebble.Batch, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return batch.Set([]byte(key), data, nil)
}

// getDoc reads the reverse index document of a page. Missing pages return
// (nil, nil).
func (s *Store) getDoc(pageID string) (*ReverseIndexDoc, error) {
	var doc ReverseIndexDoc
	found, err := s.getJSON(pageKey(pageID), &doc)
	if err != nil || !found {
		return nil, err
	}
	return &doc, nil
}

// lookupValues reads the current indexValue for every key in keys.
// Missing keys map to nil. When the key count exceeds termsSizeLimit the
// whole prefix range is scanned once instead of seeking per key.
func (s *Store) lookupValues(prefix string, keys []string) (map[string]indexValue, error) {
	if len(keys) > termsSizeLimit {
		return s.rangeLookupValues(prefix, keys)
	}

	out := make(map[string]indexValue, len(keys))
	for _, key := range keys {
		var val indexValue
		found, err := s.getJSON(key, &val)
		if err != nil {
			return nil, err
		}
		if !found {
			val = nil
		}
		out[key] = val
	}
	return out, nil
}

// rangeLookupValues scans the full prefix range, keeping only values whose
// keys appear in keys.
func (s *Store) rangeLookupValues(prefix string, keys []string) (map[string]indexValue, error) {
	wanted := make(map[string]struct{}, len(keys))
	out := make(map[string]indexValue, len(keys))
	for _, key := range keys {
		wanted[key] = struct{}{}
		out[key] = nil
	}

	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %q range: %w", prefix, err)
	}
	defer it.Close() //nolint:errcheck

	for it.First(); it.Valid(); it.Next() {
		key := string(it.Key())
		if _, ok := wanted[key]; !ok {
			continue
		}
		var val indexValue
		if err := json.Unmarshal(it.Value(), &val); err != nil {
			return nil, fmt.Errorf("failed to decode %q: %w", key, err)
		}
		out[key] = val
	}
	return out, it.Error()
}

// commit applies batch synchronously.
func (s *Store) commit(batch *pebble.Batch) error {
	return batch.Commit(writeOpts)
}
