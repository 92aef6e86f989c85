package runtime

import (
	"fmt"
	"io"
)

// IO is where a running program prints.
type IO interface {
	Println(str string)
}

// Env aggregates the host services a program can reach.
type Env struct {
	io IO
}

func (e *Env) IO() IO {
	return e.io
}

// stdIO is the default IO implementation for the CLI.
type stdIO struct{}

func (stdIO) Println(str string) {
	fmt.Println(str)
}

// writerIO prints each line to an io.Writer.
type writerIO struct {
	w io.Writer
}

func (w writerIO) Println(str string) {
	fmt.Fprintln(w.w, str)
}

// DefaultEnv prints to stdout.
func DefaultEnv() *Env {
	return &Env{io: stdIO{}}
}

// NewEnv creates an Env with the given IO service.
func NewEnv(io IO) *Env {
	return &Env{io: io}
}

// WriterEnv creates an Env printing to w.
func WriterEnv(w io.Writer) *Env {
	return &Env{io: writerIO{w: w}}
}
