// Package store provides the Postgres-backed implementation of the
// channelledger persistence layer: the three append-only logs, the
// quarantine log, and the transactional operations built on top of them
// (event/intent insertion with correlation, reorg processing, state-update
// admission, and the read queries). It has no knowledge of the reducer
// algorithms themselves beyond invoking package core's pure functions.
package store

import (
	"fmt"
	"net/url"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/synnergy-network/channelledger/core"
)

// Version is the schema/behavior version reported by Selftest.
const Version = "v0.1.0"

// Store wraps a Postgres connection pool and the optional in-process read
// cache.
type Store struct {
	db       *sqlx.DB
	cache    *core.StatusCache
	verifier core.Verifier
	metrics  *core.Metrics
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithCache enables the LRU read-cache with the given capacity. size <= 0
// disables it (the default).
func WithCache(size int) Option {
	return func(s *Store) {
		if size > 0 {
			s.cache = core.NewStatusCache(size)
		}
	}
}

// WithVerifier overrides the signature-verification capability. Production
// callers normally leave this unset and get core.Secp256k1Verifier{}.
func WithVerifier(v core.Verifier) Option {
	return func(s *Store) { s.verifier = v }
}

// WithMetrics attaches Prometheus collectors the store will increment on
// admission and reorg outcomes.
func WithMetrics(m *core.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore opens a connection pool against dsn. The schema must already be
// installed via SetupDatabase; NewStore itself never touches the schema.
func NewStore(dsn string, opts ...Option) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	s := &Store{db: db, verifier: core.Secp256k1Verifier{}}
	for _, opt := range opts {
		opt(s)
	}
	logrus.Infof("store connected to %s", redactDSN(dsn))
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// redactDSN strips credentials before a DSN is ever logged.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return "<redacted>"
	}
	if u.User != nil {
		u.User = url.User(u.User.Username())
	}
	return u.String()
}

// tx runs fn inside a transaction, committing on success and rolling back
// on any error or panic.
func (s *Store) tx(fn func(*sqlx.Tx) error) (err error) {
	t, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = t.Rollback()
			panic(p)
		}
	}()
	if err = fn(t); err != nil {
		if rbErr := t.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err = t.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// VersionInfo is returned by Selftest.
type VersionInfo struct {
	Version      string `json:"version"`
	Driver       string `json:"driver"`
	CacheEnabled bool   `json:"cache_enabled"`
}

// Selftest verifies connectivity and reports version information.
func (s *Store) Selftest() (VersionInfo, error) {
	if err := s.db.Ping(); err != nil {
		return VersionInfo{}, fmt.Errorf("selftest: %w", err)
	}
	var one int
	if err := s.db.Get(&one, "SELECT 1"); err != nil {
		return VersionInfo{}, fmt.Errorf("selftest query: %w", err)
	}
	return VersionInfo{
		Version:      Version,
		Driver:       "postgres",
		CacheEnabled: s.cache != nil,
	}, nil
}
