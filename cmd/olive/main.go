package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"olive/internal/compiler"
	"olive/internal/runtime"
	"olive/internal/watch"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "compile":
		err = cmdCompile(os.Args[2:])
	case "run":
		err = cmdRun(os.Args[2:])
	case "build":
		err = cmdBuild(os.Args[2:])
	case "watch":
		err = cmdWatch(os.Args[2:])
	case "repl":
		err = cmdRepl(os.Args[2:])
	case "cache":
		err = cmdCache(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	case "version", "--version":
		fmt.Println("olive", compiler.Version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		printError(err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`Olive compiler

Usage:
  olive compile [-a] [-i] [-o] [-out file.js] [-v] <file.oil>
  olive run [-o] [-v] <file.oil>
  olive build [-o] [-j N] [-outdir dir] [-cache dsn] [-cache-driver sqlite|postgres] [-v] <files or dirs...>
  olive watch [-o] [-out file.js] [-v] <file.oil>
  olive repl
  olive cache [-cache dsn] [-cache-driver sqlite|postgres] stats|prune|clear
  olive version

Commands:
  compile  Compile one file and print the JavaScript (or a tree with -a / -i)
  run      Compile a file and execute the JavaScript in the embedded engine
  build    Compile many files concurrently, writing <name>.js next to each input
  watch    Recompile a file every time it changes
  repl     Compile programs typed at the prompt
  cache    Inspect or clean the build cache
  version  Olive compiler version

Flags (compile):
  -a       Show the tree after parsing, then stop
  -i       Show the decorated tree after analysis, then stop
  -o       Optimize before generating

Environment:
  OLIVE_CACHE         default cache DSN for build and cache
  OLIVE_CACHE_DRIVER  default cache driver (sqlite)
  NO_COLOR            disable colored diagnostics`)
}

var useColor = os.Getenv("NO_COLOR") == "" &&
	(isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))

func red(s string) string {
	if !useColor {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

func dim(s string) string {
	if !useColor {
		return s
	}
	return "\x1b[2m" + s + "\x1b[0m"
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, red("error: "+err.Error()))
}

func newLogger(verbose bool) *log.Logger {
	if !verbose {
		return nil
	}
	return log.New(os.Stderr, "olive: ", 0)
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// signalContext is canceled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// -------------- COMPILE --------------

func cmdCompile(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	showTree := fs.Bool("a", false, "show the tree after parsing, then stop")
	showDecorated := fs.Bool("i", false, "show the decorated tree, then stop")
	optimize := fs.Bool("o", false, "optimize before generating")
	out := fs.String("out", "", "write output to this file instead of stdout")
	verbose := fs.Bool("v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("compile: expected exactly one input file")
	}

	opts := compiler.Options{Optimize: *optimize, Logger: newLogger(*verbose)}
	switch {
	case *showTree:
		opts.StopAfter = compiler.StageTree
	case *showDecorated:
		opts.StopAfter = compiler.StageDecorated
	}

	res, err := compiler.CompileFile(fs.Arg(0), opts)
	if err != nil {
		return err
	}
	return emit(os.Stdout, *out, res.Output)
}

// emit writes output to the file at path, or to w when path is empty.
func emit(w io.Writer, path, output string) error {
	if path == "" {
		_, err := io.WriteString(w, output)
		return err
	}
	return compiler.WriteFile(path, []byte(output))
}

// -------------- RUN --------------

func cmdRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	optimize := fs.Bool("o", false, "optimize before generating")
	verbose := fs.Bool("v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("run: expected exactly one input file")
	}

	res, err := compiler.CompileFile(fs.Arg(0), compiler.Options{Optimize: *optimize, Logger: newLogger(*verbose)})
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	return errors.Wrap(runtime.Run(ctx, runtime.DefaultEnv(), res.Output), fs.Arg(0))
}

// -------------- WATCH --------------

func cmdWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	optimize := fs.Bool("o", false, "optimize before generating")
	out := fs.String("out", "", "write output to this file instead of stdout")
	verbose := fs.Bool("v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("watch: expected exactly one input file")
	}
	input := fs.Arg(0)
	opts := compiler.Options{Optimize: *optimize, Logger: newLogger(*verbose)}

	rebuild := func(path string) {
		res, err := compiler.CompileFile(path, opts)
		if err != nil {
			printError(err)
			return
		}
		if err := emit(os.Stdout, *out, res.Output); err != nil {
			printError(err)
			return
		}
		fmt.Fprintln(os.Stderr, dim("compiled "+path))
	}

	w, err := watch.New(input)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signalContext()
	defer stop()

	rebuild(input)
	err = w.Run(ctx, rebuild)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
