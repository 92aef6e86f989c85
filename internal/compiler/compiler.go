// Package compiler runs the Olive pipeline: parse, analyze, optionally
// optimize, then generate JavaScript.
package compiler

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"olive/internal/ast"
	"olive/internal/codegen"
	"olive/internal/optimizer"
	"olive/internal/parser"
	"olive/internal/semantic"
)

// Version is the compiler version recorded with cached builds.
const Version = "1.2.0"

// Stage is the last pipeline step to run.
type Stage int

const (
	StageGenerate  Stage = iota // full compilation to JavaScript
	StageTree                   // stop after parsing and dump the tree
	StageDecorated              // stop after analysis (and optimization) and dump the tree
)

func (s Stage) String() string {
	switch s {
	case StageTree:
		return "tree"
	case StageDecorated:
		return "decorated"
	default:
		return "generate"
	}
}

type Options struct {
	StopAfter Stage
	Optimize  bool
	Logger    *log.Logger // nil discards log output
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return o.Logger
}

// Result is what one compilation produced. Output holds the JavaScript, or
// the dumped tree when the pipeline stopped early.
type Result struct {
	Name    string
	Output  string
	Tree    *ast.Program
	Session *semantic.Session
	Stats   optimizer.Stats
}

// Compile compiles one source text. name is used in error messages.
func Compile(name, src string, opts Options) (*Result, error) {
	lg := opts.logger()
	res := &Result{Name: name}

	prog, err := parser.Parse(src)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	res.Tree = prog
	if opts.StopAfter == StageTree {
		res.Output = ast.Dump(prog)
		return res, nil
	}

	sess, err := semantic.Analyze(prog)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	res.Session = sess
	lg.Printf("%s: analyzed, %d scopes, %d composite types", name, sess.Scopes.Len(), sess.Types.Minted())

	if opts.Optimize {
		o := optimizer.New()
		prog = o.Program(prog)
		res.Tree = prog
		res.Stats = o.Stats()
		lg.Printf("%s: optimized, %d folded, %d simplified, %d removed",
			name, res.Stats.Folded, res.Stats.Simplified, res.Stats.Removed)
	}
	if opts.StopAfter == StageDecorated {
		res.Output = ast.Dump(prog)
		return res, nil
	}

	js, err := codegen.Generate(prog)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	res.Output = js
	return res, nil
}

// CompileFile reads and compiles one .oil file.
func CompileFile(path string, opts Options) (*Result, error) {
	if err := checkExt(path); err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return Compile(path, string(src), opts)
}

// CompileFiles compiles independent files concurrently, at most jobs at a
// time (jobs < 1 means no limit). Results are in input order. The first
// failure cancels the files not yet started and is returned.
func CompileFiles(ctx context.Context, paths []string, opts Options, jobs int) ([]*Result, error) {
	results := make([]*Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := CompileFile(path, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
