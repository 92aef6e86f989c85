// Package runtime executes generated JavaScript in an embedded engine, so
// Olive programs can be run without an external JavaScript host.
package runtime

import (
	"context"
	"strconv"
	"strings"

	"github.com/dop251/goja"
	"github.com/pkg/errors"
)

// Run executes js with console.log bound to env's IO. It stops early when
// ctx is done. A JavaScript exception is returned as an error carrying the
// thrown message.
func Run(ctx context.Context, env *Env, js string) error {
	vm := goja.New()
	p := printer{vm: vm}

	console := vm.NewObject()
	if err := console.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = p.format(arg, false)
		}
		env.IO().Println(strings.Join(parts, " "))
		return goja.Undefined()
	}); err != nil {
		return errors.Wrap(err, "bind console")
	}
	if err := vm.Set("console", console); err != nil {
		return errors.Wrap(err, "bind console")
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	_, err := vm.RunString(js)
	if err == nil {
		return nil
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause, ok := interrupted.Value().(error); ok {
			return errors.Wrap(cause, "interrupted")
		}
		return errors.New("interrupted")
	}
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return errors.Errorf("uncaught exception: %s", p.message(exc.Value()))
	}
	return errors.Wrap(err, "run")
}

// printer renders values the way Olive shows them: none for null, lists in
// brackets, sets and dictionaries in braces.
type printer struct {
	vm *goja.Runtime
}

func (p printer) format(v goja.Value, nested bool) string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return "none"
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		if s, isStr := v.Export().(string); isStr && nested {
			return strconv.Quote(s)
		}
		return v.String()
	}

	switch obj.ClassName() {
	case "Array":
		return "[" + p.join(p.elements(obj)) + "]"
	case "Set":
		from, _ := goja.AssertFunction(p.vm.Get("Array").ToObject(p.vm).Get("from"))
		arr, err := from(goja.Undefined(), obj)
		if err != nil {
			return obj.String()
		}
		return "{" + p.join(p.elements(arr.ToObject(p.vm))) + "}"
	case "Object":
		keys := obj.Keys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = strconv.Quote(k) + ": " + p.format(obj.Get(k), true)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case "Function":
		return "<function>"
	default:
		return obj.String()
	}
}

func (p printer) elements(arr *goja.Object) []goja.Value {
	n := int(arr.Get("length").ToInteger())
	out := make([]goja.Value, n)
	for i := range out {
		out[i] = arr.Get(strconv.Itoa(i))
	}
	return out
}

func (p printer) join(vals []goja.Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = p.format(v, true)
	}
	return strings.Join(parts, ", ")
}

// message extracts the text of a thrown value: the message of an Error, or
// the value itself.
func (p printer) message(v goja.Value) string {
	if obj, ok := v.(*goja.Object); ok {
		if m := obj.Get("message"); m != nil && !goja.IsUndefined(m) {
			return m.String()
		}
	}
	return p.format(v, false)
}
