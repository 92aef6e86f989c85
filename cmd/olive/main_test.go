package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"olive/internal/cache"
	"olive/internal/compiler"
)

// lines feeds a fixed script to readProgram.
func lines(input ...string) func(string) (string, error) {
	return func(string) (string, error) {
		if len(input) == 0 {
			return "", io.EOF
		}
		line := input[0]
		input = input[1:]
		return line, nil
	}
}

func TestOpensBlock(t *testing.T) {
	be.True(t, opensBlock("function f(n) :: number -> number"))
	be.True(t, opensBlock("  while true"))
	be.True(t, opensBlock("if(x)"))
	be.True(t, !opensBlock("print(1)"))
	be.True(t, !opensBlock("format = 1"))
	be.True(t, !opensBlock(""))
}

func TestReadProgram(t *testing.T) {
	src, err := readProgram(lines("print(1)", "print(2)"))
	be.Err(t, err, nil)
	be.Equal(t, src, "print(1)")

	src, err = readProgram(lines("while true", "    break", "", "print(2)"))
	be.Err(t, err, nil)
	be.Equal(t, src, "while true\n    break")

	src, err = readProgram(lines("if true", "    pass"))
	be.Err(t, err, nil)
	be.Equal(t, src, "if true\n    pass")

	_, err = readProgram(lines())
	be.Err(t, err, io.EOF)
}

func TestReplEval(t *testing.T) {
	var out bytes.Buffer
	r := &repl{out: &out}

	be.True(t, !r.eval("let x = 1 + 2\nprint(x)"))
	be.True(t, strings.Contains(out.String(), "const x_5 = (1 + 2);"))

	out.Reset()
	r.eval(":optimize")
	r.eval("let x = 1 + 2")
	be.True(t, strings.Contains(out.String(), "optimize: true"))
	be.True(t, strings.Contains(out.String(), "const x_5 = 3;"))

	out.Reset()
	r.eval(":tree")
	r.eval("print(1)")
	be.True(t, !strings.Contains(out.String(), "print_1"))

	out.Reset()
	r.eval(":js")
	r.eval("print(y)")
	be.True(t, strings.Contains(out.String(), "<repl>: "))

	out.Reset()
	r.eval(":run")
	r.eval("print([1, 2] )")
	be.Equal(t, out.String(), "run: true\n[1, 2]\n")

	be.True(t, r.eval(":quit"))
}

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildUsesCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	a := writeSource(t, dir, "a.oil", "print(1)\n")
	b := writeSource(t, dir, "b.oil", "let x = 2 * 3\nprint(x)\n")

	store, err := cache.Open(cache.DriverSQLite, filepath.Join(t.TempDir(), "cache.db"), compiler.Version)
	be.Err(t, err, nil)
	defer store.Close()

	out := filepath.Join(dir, "out")
	cfg := buildConfig{Files: []string{a, b}, OutDir: out, Jobs: 2, Cache: store}

	sum, err := build(ctx, cfg)
	be.Err(t, err, nil)
	be.Equal(t, sum.Files, 2)
	be.Equal(t, sum.Cached, 0)

	js, err := os.ReadFile(filepath.Join(out, "b.js"))
	be.Err(t, err, nil)
	be.True(t, strings.Contains(string(js), "const x_5 = (2 * 3);"))
	be.Equal(t, sum.Bytes > int64(len(js)), true)

	sum, err = build(ctx, cfg)
	be.Err(t, err, nil)
	be.Equal(t, sum.Cached, 2)

	// Optimized output is cached separately.
	cfg.Compiler.Optimize = true
	sum, err = build(ctx, cfg)
	be.Err(t, err, nil)
	be.Equal(t, sum.Cached, 0)
	js, err = os.ReadFile(filepath.Join(out, "b.js"))
	be.Err(t, err, nil)
	be.True(t, strings.Contains(string(js), "const x_5 = 6;"))
}

func TestBuildWithoutCache(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.oil", "print(1)\n")
	bad := writeSource(t, dir, "bad.oil", "print(y)\n")

	sum, err := build(context.Background(), buildConfig{Files: []string{a}, Jobs: 1})
	be.Err(t, err, nil)
	be.Equal(t, sum.Cached, 0)
	_, err = os.Stat(filepath.Join(dir, "a.js"))
	be.Err(t, err, nil)

	_, err = build(context.Background(), buildConfig{Files: []string{a, bad}, Jobs: 1})
	be.Err(t, err, "bad.oil")
}

func TestCacheAction(t *testing.T) {
	ctx := context.Background()
	store, err := cache.Open(cache.DriverSQLite, filepath.Join(t.TempDir(), "cache.db"), compiler.Version)
	be.Err(t, err, nil)
	defer store.Close()
	be.Err(t, store.Put(ctx, cache.KeyFor("x"), "print_1(1);"), nil)

	var out bytes.Buffer
	be.Err(t, cacheAction(ctx, &out, store, "stats"), nil)
	be.True(t, strings.Contains(out.String(), "entries: 1"))

	out.Reset()
	be.Err(t, cacheAction(ctx, &out, store, "prune"), nil)
	be.Equal(t, out.String(), "removed 0 stale entries\n")

	out.Reset()
	be.Err(t, cacheAction(ctx, &out, store, "clear"), nil)
	be.Equal(t, out.String(), "cache cleared\n")

	be.Err(t, cacheAction(ctx, &out, store, "vacuum"), "unknown action")
}
