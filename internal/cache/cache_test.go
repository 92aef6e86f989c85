package cache_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nalgeon/be"

	"olive/internal/cache"
)

func openSQLite(t *testing.T, version string) *cache.Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "cache.db")
	s, err := cache.Open(cache.DriverSQLite, dsn, version)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestKeyFor(t *testing.T) {
	k := cache.KeyFor("optimize=true", "print(1)\n")
	be.Equal(t, len(k), 64)
	be.Equal(t, k, cache.KeyFor("optimize=true", "print(1)\n"))
	be.True(t, k != cache.KeyFor("optimize=false", "print(1)\n"))
	be.True(t, cache.KeyFor("ab", "c") != cache.KeyFor("a", "bc"))
}

func TestGetPut(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t, "1.2.0")
	key := cache.KeyFor("print(1)\n")

	_, ok, err := s.Get(ctx, key)
	be.Err(t, err, nil)
	be.True(t, !ok)

	be.Err(t, s.Put(ctx, key, "first"), nil)
	be.Err(t, s.Put(ctx, key, "second"), nil)

	out, ok, err := s.Get(ctx, key)
	be.Err(t, err, nil)
	be.True(t, ok)
	be.Equal(t, out, "second")

	st, err := s.Stats(ctx)
	be.Err(t, err, nil)
	be.Equal(t, st, cache.Stats{Hits: 1, Misses: 1, Entries: 1, Bytes: 6})
}

func TestVersionCompatibility(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "cache.db")
	key := cache.KeyFor("src")

	old, err := cache.Open(cache.DriverSQLite, dsn, "1.1.4")
	be.Err(t, err, nil)
	be.Err(t, old.Put(ctx, key, "from 1.1"), nil)
	be.Err(t, old.Close(), nil)

	patch, err := cache.Open(cache.DriverSQLite, dsn, "1.1.9")
	be.Err(t, err, nil)
	out, ok, err := patch.Get(ctx, key)
	be.Err(t, err, nil)
	be.True(t, ok)
	be.Equal(t, out, "from 1.1")
	be.Err(t, patch.Close(), nil)

	next, err := cache.Open(cache.DriverSQLite, dsn, "1.2.0")
	be.Err(t, err, nil)
	defer next.Close()
	_, ok, err = next.Get(ctx, key)
	be.Err(t, err, nil)
	be.True(t, !ok)

	be.Err(t, next.Put(ctx, cache.KeyFor("other"), "from 1.2"), nil)
	removed, err := next.Prune(ctx)
	be.Err(t, err, nil)
	be.Equal(t, removed, int64(1))

	st, err := next.Stats(ctx)
	be.Err(t, err, nil)
	be.Equal(t, st.Entries, int64(1))

	be.Err(t, next.Clear(ctx), nil)
	st, err = next.Stats(ctx)
	be.Err(t, err, nil)
	be.Equal(t, st.Entries, int64(0))
}

func TestConcurrentUse(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t, "1.2.0")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := cache.KeyFor(string(rune('a' + i)))
			if err := s.Put(ctx, key, "out"); err != nil {
				t.Errorf("put: %v", err)
			}
			if _, ok, err := s.Get(ctx, key); err != nil || !ok {
				t.Errorf("get: %v %v", ok, err)
			}
		}()
	}
	wg.Wait()

	st, err := s.Stats(ctx)
	be.Err(t, err, nil)
	be.Equal(t, st.Entries, int64(8))
	be.Equal(t, st.Hits, int64(8))
}

func TestOpenErrors(t *testing.T) {
	_, err := cache.Open("mysql", "x", "1.0.0")
	be.Err(t, err, "unknown cache driver")

	_, err = cache.Open(cache.DriverSQLite, filepath.Join(t.TempDir(), "c.db"), "not-a-version")
	be.Err(t, err, "compiler version")
}

// TestPostgres runs against a real server when OLIVE_TEST_POSTGRES holds a DSN.
func TestPostgres(t *testing.T) {
	dsn := os.Getenv("OLIVE_TEST_POSTGRES")
	if dsn == "" {
		t.Skip("OLIVE_TEST_POSTGRES not set")
	}
	ctx := context.Background()
	s, err := cache.Open(cache.DriverPostgres, dsn, "1.2.0")
	be.Err(t, err, nil)
	defer s.Close()
	be.Err(t, s.Clear(ctx), nil)

	key := cache.KeyFor("pg")
	be.Err(t, s.Put(ctx, key, "out"), nil)
	out, ok, err := s.Get(ctx, key)
	be.Err(t, err, nil)
	be.True(t, ok)
	be.Equal(t, out, "out")
}
