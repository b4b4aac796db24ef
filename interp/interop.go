// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shellrt/shellrt/expand"
)

// InteropFunc is a host function registered under a dotted name, callable
// from script text exactly like a simple command: "namespace.name arg1
// arg2" dispatches here instead of to a builtin, function, or $PATH
// lookup. It is the seam an embedding host uses to expose its own
// functionality to scripts without spawning a real subprocess.
type InteropFunc func(ctx context.Context, io InteropIO, args []string) InteropResult

// InteropIO is the I/O and state surface available to an [InteropFunc],
// a thin wrapper over the same redirection and variable plumbing a
// builtin already uses, so that host functions and builtins observe
// exactly the same shell state.
type InteropIO interface {
	WriteStdout(p []byte) (int, error)
	WriteStderr(p []byte) (int, error)
	ReadStdinLine() (string, error)
	ReadStdinAll() ([]byte, error)
	ReadStdinN(n int) ([]byte, error)

	GetState(name string) expand.Variable
	UpdateState(vars map[string]expand.Variable)
}

// InteropResult is the outcome an [InteropFunc] reports back to the
// executor. It is normalized into the same [exitStatus] shape used for
// every other simple command, so an interop call composes with "&&",
// "||", pipelines, and "set -e" exactly like a builtin or external
// command would.
type InteropResult struct {
	kind  interopResultKind
	code  uint8
	state map[string]expand.Variable
	err   string
}

type interopResultKind uint8

const (
	interopOK interopResultKind = iota
	interopErr
	interopContinue
	interopBreak
)

// InteropOK reports success with exit code zero.
func InteropOK() InteropResult { return InteropResult{kind: interopOK} }

// InteropOKCode reports completion with an arbitrary exit code.
func InteropOKCode(code uint8) InteropResult {
	return InteropResult{kind: interopOK, code: code}
}

// InteropOKState reports completion with an exit code and a set of shell
// variables to merge into the calling session's state, e.g. so a host
// function can export values back into the script's environment.
func InteropOKState(code uint8, state map[string]expand.Variable) InteropResult {
	return InteropResult{kind: interopOK, code: code, state: state}
}

// InteropError reports a fatal error, equivalent to a handler returning a
// non-nil error: it aborts the running script rather than just setting a
// nonzero exit status.
func InteropError(message string) InteropResult {
	return InteropResult{kind: interopErr, err: message}
}

// InteropContinue and InteropBreak request the loop-control behavior of
// the "continue"/"break" builtins. They are only meaningful when the
// interop call site is lexically inside a loop body; elsewhere they are
// normalized to a successful no-op, matching how "continue"/"break"
// behave outside a loop.
var (
	InteropContinue = InteropResult{kind: interopContinue}
	InteropBreak    = InteropResult{kind: interopBreak}
)

// RegisterInterop installs fn under (namespace, name), so that the
// simple command "namespace.name ..." dispatches to it instead of an
// alias, function, builtin, or $PATH lookup. Registering under an
// existing (namespace, name) pair replaces the previous function.
func (r *Runner) RegisterInterop(namespace, name string, fn InteropFunc) {
	if r.interop == nil {
		r.interop = make(map[string]map[string]InteropFunc)
	}
	ns := r.interop[namespace]
	if ns == nil {
		ns = make(map[string]InteropFunc)
		r.interop[namespace] = ns
	}
	ns[name] = fn
}

// lookupInterop splits name on the first ".", e.g. "fs.readFile" into
// ("fs", "readFile"), and returns the registered function if any. Names
// without a "." never match, so plain commands are unaffected.
func (r *Runner) lookupInterop(name string) (InteropFunc, bool) {
	if r.interop == nil {
		return nil, false
	}
	ns, rest, ok := strings.Cut(name, ".")
	if !ok {
		return nil, false
	}
	fn, ok := r.interop[ns][rest]
	return fn, ok
}

// callInterop runs fn and folds its [InteropResult] into r.exit, the
// same normalization point [Runner.builtin] and [Runner.exec] feed into.
func (r *Runner) callInterop(ctx context.Context, fn InteropFunc, args []string) {
	res := fn(ctx, &runnerInteropIO{r: r}, args)
	switch res.kind {
	case interopErr:
		r.exit.fatal(fmt.Errorf("%s", res.err))
	case interopContinue:
		if r.inLoop {
			r.exit = exitStatus{}
			r.contnEnclosing = 1
		}
	case interopBreak:
		if r.inLoop {
			r.exit = exitStatus{}
			r.breakEnclosing = 1
		}
	default:
		r.exit = exitStatus{code: res.code}
		if res.state != nil {
			for name, vr := range res.state {
				r.setVar(name, vr)
			}
		}
	}
}

// runnerInteropIO adapts a [Runner]'s current stdin/stdout/stderr and
// variable table into the [InteropIO] surface, scanning stdin lazily so
// that an interop call that never reads stdin never blocks on it.
type runnerInteropIO struct {
	r       *Runner
	scanner *bufio.Reader
}

func (rio *runnerInteropIO) WriteStdout(p []byte) (int, error) {
	return rio.r.stdout.Write(p)
}

func (rio *runnerInteropIO) WriteStderr(p []byte) (int, error) {
	return rio.r.stderr.Write(p)
}

func (rio *runnerInteropIO) reader() *bufio.Reader {
	if rio.scanner == nil {
		rio.scanner = bufio.NewReader(rio.r.stdin)
	}
	return rio.scanner
}

func (rio *runnerInteropIO) ReadStdinLine() (string, error) {
	line, err := rio.reader().ReadString('\n')
	return strings.TrimSuffix(line, "\n"), err
}

func (rio *runnerInteropIO) ReadStdinAll() ([]byte, error) {
	return io.ReadAll(rio.reader())
}

func (rio *runnerInteropIO) ReadStdinN(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := rio.reader().Read(buf)
	return buf[:read], err
}

func (rio *runnerInteropIO) GetState(name string) expand.Variable {
	return rio.r.lookupVar(name)
}

func (rio *runnerInteropIO) UpdateState(vars map[string]expand.Variable) {
	for name, vr := range vars {
		rio.r.setVar(name, vr)
	}
}
