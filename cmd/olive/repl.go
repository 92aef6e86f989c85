package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"

	"olive/internal/compiler"
	"olive/internal/runtime"
)

// -------------- REPL --------------

const (
	historyFile = ".olive_history"
	promptMain  = "olive> "
	promptCont  = "  ...> "
)

// blockKeywords start a line whose body follows on indented lines.
var blockKeywords = []string{"function", "while", "for", "if", "else"}

func cmdRepl(_ []string) error {
	fmt.Printf("Olive %s. Enter a program; blocks end with an empty line. :help for commands.\n", compiler.Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	r := &repl{out: os.Stdout}
	for {
		src, err := readProgram(ln.Prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if r.eval(src) {
			return nil
		}
	}
}

// readProgram reads one program. A single line is submitted at once unless
// it opens a block; a block is submitted by an empty line.
func readProgram(prompt func(string) (string, error)) (string, error) {
	var lines []string
	for {
		p := promptMain
		if len(lines) > 0 {
			p = promptCont
		}
		line, err := prompt(p)
		if err != nil {
			if errors.Is(err, io.EOF) && len(lines) > 0 {
				break
			}
			return "", err
		}
		if len(lines) == 0 && !opensBlock(line) {
			return line, nil
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

func opensBlock(line string) bool {
	first, _, _ := strings.Cut(strings.TrimSpace(line), " ")
	first, _, _ = strings.Cut(first, "(")
	for _, kw := range blockKeywords {
		if first == kw {
			return true
		}
	}
	return false
}

type repl struct {
	out      io.Writer
	stage    compiler.Stage
	optimize bool
	execute  bool
}

// eval handles one submitted program or command. It reports whether the
// session should end.
func (r *repl) eval(src string) bool {
	cmd := strings.TrimSpace(src)
	if strings.HasPrefix(cmd, ":") {
		switch strings.ToLower(cmd) {
		case ":quit", ":q":
			return true
		case ":tree":
			r.stage = compiler.StageTree
		case ":decorated":
			r.stage = compiler.StageDecorated
		case ":js":
			r.stage = compiler.StageGenerate
		case ":run":
			r.execute = !r.execute
			fmt.Fprintf(r.out, "run: %v\n", r.execute)
		case ":optimize":
			r.optimize = !r.optimize
			fmt.Fprintf(r.out, "optimize: %v\n", r.optimize)
		case ":help":
			fmt.Fprintln(r.out, ":js :tree :decorated  choose what is printed")
			fmt.Fprintln(r.out, ":optimize             toggle the optimizer")
			fmt.Fprintln(r.out, ":run                  toggle running programs instead of printing them")
			fmt.Fprintln(r.out, ":quit                 leave")
		default:
			fmt.Fprintln(r.out, "unknown command. Type :help for commands.")
		}
		return false
	}

	res, err := compiler.Compile("<repl>", src+"\n", compiler.Options{StopAfter: r.stage, Optimize: r.optimize})
	if err != nil {
		fmt.Fprintln(r.out, red(err.Error()))
		return false
	}
	if r.execute && r.stage == compiler.StageGenerate {
		if err := runtime.Run(context.Background(), runtime.WriterEnv(r.out), res.Output); err != nil {
			fmt.Fprintln(r.out, red(err.Error()))
		}
		return false
	}
	fmt.Fprint(r.out, res.Output)
	if !strings.HasSuffix(res.Output, "\n") {
		fmt.Fprintln(r.out)
	}
	return false
}
