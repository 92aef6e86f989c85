// Package cache persists generated JavaScript keyed by source content, so
// unchanged files are not recompiled. Entries live in a SQL table; SQLite
// is the default backend and PostgreSQL can be shared between machines.
package cache

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Masterminds/semver/v3"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Key identifies a compilation: the options that affect output and the
// source text.
type Key string

// KeyFor hashes the parts with BLAKE2b-256. Each part is length-prefixed so
// ("ab", "c") and ("a", "bc") differ.
func KeyFor(parts ...string) Key {
	h, _ := blake2b.New256(nil)
	var n [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write([]byte(p))
	}
	return Key(hex.EncodeToString(h.Sum(nil)))
}

// Stats describes cache usage. Hits and Misses count lookups made through
// this Store; Entries and Bytes describe the whole table.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int64
	Bytes   int64
}

type Store struct {
	db      *sql.DB
	driver  string
	version *semver.Version
	compat  *semver.Constraints

	hits   atomic.Int64
	misses atomic.Int64
}

// Open connects to the cache database and creates the table if needed.
// Entries written by a compiler whose version shares major and minor with
// version are reused; others are treated as misses.
func Open(driver, dsn, version string) (*Store, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, errors.Errorf("unknown cache driver %q (supported: %s, %s)", driver, DriverSQLite, DriverPostgres)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return nil, errors.Wrapf(err, "compiler version %q", version)
	}
	compat, err := semver.NewConstraint(fmt.Sprintf("~%d.%d", v.Major(), v.Minor()))
	if err != nil {
		return nil, errors.Wrap(err, "version constraint")
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s cache", driver)
	}
	if driver == DriverSQLite {
		// SQLite allows one writer at a time.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, driver: driver, version: v, compat: compat}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS olive_cache (
			key        TEXT PRIMARY KEY,
			output     TEXT NOT NULL,
			version    TEXT NOT NULL,
			created_at BIGINT NOT NULL
		)`)
	return errors.Wrap(err, "create cache table")
}

// rebind turns ? placeholders into $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Get returns the cached output for key. An entry from an incompatible
// compiler version counts as a miss.
func (s *Store) Get(ctx context.Context, key Key) (string, bool, error) {
	var output, version string
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT output, version FROM olive_cache WHERE key = ?`), string(key),
	).Scan(&output, &version)
	if errors.Is(err, sql.ErrNoRows) {
		s.misses.Add(1)
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "read cache entry")
	}
	if !s.compatible(version) {
		s.misses.Add(1)
		return "", false, nil
	}
	s.hits.Add(1)
	return output, true, nil
}

func (s *Store) compatible(version string) bool {
	v, err := semver.NewVersion(version)
	return err == nil && s.compat.Check(v)
}

// Put stores output under key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key Key, output string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO olive_cache (key, output, version, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			output = excluded.output,
			version = excluded.version,
			created_at = excluded.created_at`),
		string(key), output, s.version.String(), time.Now().Unix())
	return errors.Wrap(err, "write cache entry")
}

// Prune deletes entries written by incompatible compiler versions and
// returns how many were removed.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT version FROM olive_cache`)
	if err != nil {
		return 0, errors.Wrap(err, "list cache versions")
	}
	var stale []string
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			rows.Close()
			return 0, errors.Wrap(err, "list cache versions")
		}
		if !s.compatible(version) {
			stale = append(stale, version)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, errors.Wrap(err, "list cache versions")
	}

	var removed int64
	for _, version := range stale {
		res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM olive_cache WHERE version = ?`), version)
		if err != nil {
			return removed, errors.Wrapf(err, "prune version %s", version)
		}
		n, _ := res.RowsAffected()
		removed += n
	}
	return removed, nil
}

// Clear deletes every entry.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM olive_cache`)
	return errors.Wrap(err, "clear cache")
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{Hits: s.hits.Load(), Misses: s.misses.Load()}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(LENGTH(output)), 0) FROM olive_cache`,
	).Scan(&st.Entries, &st.Bytes)
	if err != nil {
		return st, errors.Wrap(err, "read cache stats")
	}
	return st, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
