package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"olive/internal/cache"
	"olive/internal/compiler"
)

// -------------- BUILD --------------

type buildConfig struct {
	Files    []string
	OutDir   string
	Jobs     int
	Compiler compiler.Options
	Cache    *cache.Store // nil disables caching
}

type buildSummary struct {
	Files  int
	Cached int
	Bytes  int64
}

func cmdBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	optimize := fs.Bool("o", false, "optimize before generating")
	jobs := fs.Int("j", runtime.NumCPU(), "files compiled at once")
	outDir := fs.String("outdir", "", "write .js files here instead of next to the inputs")
	driver := fs.String("cache-driver", envOr("OLIVE_CACHE_DRIVER", cache.DriverSQLite), "cache backend: sqlite or postgres")
	dsn := fs.String("cache", os.Getenv("OLIVE_CACHE"), "cache DSN; empty disables the cache")
	verbose := fs.Bool("v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("build: expected files or directories")
	}

	files, err := compiler.SourceFiles(fs.Args())
	if err != nil {
		return err
	}

	cfg := buildConfig{
		Files:    files,
		OutDir:   *outDir,
		Jobs:     *jobs,
		Compiler: compiler.Options{Optimize: *optimize, Logger: newLogger(*verbose)},
	}
	if *dsn != "" {
		store, err := cache.Open(*driver, *dsn, compiler.Version)
		if err != nil {
			return err
		}
		defer store.Close()
		cfg.Cache = store
	}

	ctx, stop := signalContext()
	defer stop()

	sum, err := build(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "built %d files (%d cached), %s written\n",
		sum.Files, sum.Cached, humanize.Bytes(uint64(sum.Bytes)))
	return nil
}

// optionsKey is the part of the cache key that depends on compiler options.
func optionsKey(opts compiler.Options) string {
	return "optimize=" + strconv.FormatBool(opts.Optimize)
}

// build compiles cfg.Files and writes one .js file per input. Files whose
// source is in the cache are not recompiled.
func build(ctx context.Context, cfg buildConfig) (buildSummary, error) {
	sum := buildSummary{Files: len(cfg.Files)}
	outputs := make(map[string]string, len(cfg.Files))
	keys := make(map[string]cache.Key, len(cfg.Files))
	var misses []string

	for _, path := range cfg.Files {
		if cfg.Cache == nil {
			misses = append(misses, path)
			continue
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return sum, errors.Wrapf(err, "read %s", path)
		}
		key := cache.KeyFor(optionsKey(cfg.Compiler), string(src))
		keys[path] = key
		out, ok, err := cfg.Cache.Get(ctx, key)
		if err != nil {
			return sum, err
		}
		if ok {
			outputs[path] = out
			sum.Cached++
			continue
		}
		misses = append(misses, path)
	}

	results, err := compiler.CompileFiles(ctx, misses, cfg.Compiler, cfg.Jobs)
	if err != nil {
		return sum, err
	}
	for i, res := range results {
		path := misses[i]
		outputs[path] = res.Output
		if cfg.Cache != nil {
			if err := cfg.Cache.Put(ctx, keys[path], res.Output); err != nil {
				return sum, err
			}
		}
	}

	for _, path := range cfg.Files {
		out := outputs[path]
		if err := compiler.WriteFile(compiler.OutputPath(path, cfg.OutDir), []byte(out)); err != nil {
			return sum, err
		}
		sum.Bytes += int64(len(out))
	}
	return sum, nil
}

// -------------- CACHE --------------

func cmdCache(args []string) error {
	fs := flag.NewFlagSet("cache", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	driver := fs.String("cache-driver", envOr("OLIVE_CACHE_DRIVER", cache.DriverSQLite), "cache backend: sqlite or postgres")
	dsn := fs.String("cache", os.Getenv("OLIVE_CACHE"), "cache DSN")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("cache: expected one of stats, prune, clear")
	}
	if *dsn == "" {
		return errors.New("cache: no cache configured (use -cache or OLIVE_CACHE)")
	}

	store, err := cache.Open(*driver, *dsn, compiler.Version)
	if err != nil {
		return err
	}
	defer store.Close()

	return cacheAction(context.Background(), os.Stdout, store, fs.Arg(0))
}

func cacheAction(ctx context.Context, w io.Writer, store *cache.Store, action string) error {
	switch action {
	case "stats":
		st, err := store.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "entries: %s\n", humanize.Comma(st.Entries))
		fmt.Fprintf(w, "size:    %s\n", humanize.Bytes(uint64(st.Bytes)))
		return nil
	case "prune":
		n, err := store.Prune(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "removed %s stale entries\n", humanize.Comma(n))
		return nil
	case "clear":
		if err := store.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(w, "cache cleared")
		return nil
	default:
		return errors.Errorf("cache: unknown action %q", action)
	}
}
