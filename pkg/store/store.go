// Package store persists workspace snapshots.
//
// A [Store] maps workspace names to [pkgio.Snapshot] values. Backends:
//   - file: one JSON file per workspace in a data directory (CLI default)
//   - memory: process-local map for tests and throwaway sessions
//   - redis: JSON values under a key prefix, for shared deployments
//   - mongo: one BSON document per workspace
//
// Select a backend from configuration with [Open]:
//
//	st, err := store.Open(ctx, cfg.Store)
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	snap, err := st.Load(ctx, "ideas")
//	if errors.Is(err, store.ErrNotFound) {
//	    // start a new workspace
//	}
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/matzehuels/nestboard/pkg/config"
	errs "github.com/matzehuels/nestboard/pkg/errors"
	pkgio "github.com/matzehuels/nestboard/pkg/io"
	"github.com/matzehuels/nestboard/pkg/observability"
)

// ErrNotFound is returned when a workspace does not exist.
var ErrNotFound = errors.New("workspace not found")

// Store is the interface for snapshot storage backends.
type Store interface {
	// Load returns the snapshot saved under name, or an error wrapping
	// ErrNotFound.
	Load(ctx context.Context, name string) (pkgio.Snapshot, error)

	// Save stores s under name, replacing any previous snapshot.
	Save(ctx context.Context, name string, s pkgio.Snapshot) error

	// Delete removes name. Deleting a missing workspace returns an error
	// wrapping ErrNotFound.
	Delete(ctx context.Context, name string) error

	// List returns the stored workspace names in ascending order.
	List(ctx context.Context) ([]string, error)

	// Close releases the backend's resources.
	Close() error
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateName reports whether name can be used as a workspace name in
// every backend: letters, digits, dot, dash and underscore, starting with
// a letter or digit.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return errs.New(errs.ErrCodeInvalidInput, "invalid workspace name %q", name)
	}
	return nil
}

func notFound(name string) error {
	return fmt.Errorf("%q: %w", name, ErrNotFound)
}

// Open connects to the backend selected by cfg. The returned store reports
// its operations to the registered observability hooks.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.BackendFile, "":
		dir := cfg.Dir
		if dir == "" {
			if dir, err = config.DefaultDataDir(); err != nil {
				return nil, err
			}
		}
		s, err = NewFileStore(dir)
	case config.BackendMemory:
		s = NewMemoryStore()
	case config.BackendRedis:
		err = RetryWithBackoff(ctx, func() error {
			rs, err := NewRedisStore(ctx, cfg.RedisURL)
			if err != nil {
				return connectErr(err)
			}
			s = rs
			return nil
		})
	case config.BackendMongo:
		err = RetryWithBackoff(ctx, func() error {
			ms, err := NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
			if err != nil {
				return connectErr(err)
			}
			s = ms
			return nil
		})
	default:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	backend := cfg.Backend
	if backend == "" {
		backend = config.BackendFile
	}
	return Instrument(s, backend), nil
}

// connectErr marks dial failures as retryable. Malformed URLs are not.
func connectErr(err error) error {
	if errs.Is(err, errs.ErrCodeInvalidConfig) {
		return err
	}
	return Retryable(err)
}

// Instrument wraps s so that loads and saves are reported to
// observability.Store().
func Instrument(s Store, backend string) Store {
	return &instrumented{Store: s, backend: backend}
}

type instrumented struct {
	Store
	backend string
}

func (s *instrumented) Load(ctx context.Context, name string) (pkgio.Snapshot, error) {
	start := time.Now()
	snap, err := s.Store.Load(ctx, name)
	observability.Store().OnLoad(ctx, s.backend, name, time.Since(start), err)
	return snap, err
}

func (s *instrumented) Save(ctx context.Context, name string, snap pkgio.Snapshot) error {
	start := time.Now()
	err := s.Store.Save(ctx, name, snap)
	observability.Store().OnSave(ctx, s.backend, name, len(snap.Nodes), time.Since(start), err)
	return err
}

// Unwrap returns the backend under the instrumentation.
func (s *instrumented) Unwrap() Store { return s.Store }
