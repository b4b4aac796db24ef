// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"bytes"
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/shellrt/shellrt/syntax"
)

// Session wraps a [Runner] with an identity and an asynchronous entry
// point, so that a host process can address a running interpreter from
// outside the goroutine that is driving it: by job number for "fg"/"bg",
// by session ID for the interop layer and the orphan supervisor.
type Session struct {
	ID     ulid.ULID
	Runner *Runner

	collector OutputCollector
}

// NewSession builds a [Session] around a fresh [Runner], wiring the
// runner's stdout/stderr through the session's [OutputCollector] so that
// output survives across incremental [Runner.Run] calls, the same way a
// real terminal session accumulates scrollback.
func NewSession(opts ...RunnerOption) (*Session, error) {
	s := &Session{ID: newSessionID()}
	allOpts := append([]RunnerOption{StdIO(nil, &s.collector.stdout, &s.collector.stderr)}, opts...)
	r, err := New(allOpts...)
	if err != nil {
		return nil, err
	}
	s.Runner = r
	return s, nil
}

// newSessionID returns a ULID seeded from a crypto-random source, rather
// than the package's default monotonic/math-rand entropy, since sessions
// may be created concurrently across goroutines with no shared clock.
func newSessionID() ulid.ULID {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader)
}

// RunResult is the outcome of a [Session.RunAsync] call.
type RunResult struct {
	Err error
}

// RunAsync runs node in its own goroutine and returns a channel that
// receives exactly one [RunResult] once it completes. It exists for
// hosts that want to kick off a script and poll or select on its
// completion instead of blocking the calling goroutine, mirroring the
// relationship between the job subsystem's synchronous "wait" and a "&"
// statement's background execution.
func (s *Session) RunAsync(ctx context.Context, node syntax.Node) <-chan RunResult {
	ch := make(chan RunResult, 1)
	go func() {
		ch <- RunResult{Err: s.Runner.Run(ctx, node)}
	}()
	return ch
}

// Stdout returns everything written to the session's standard output
// across every [Runner.Run]/[Session.RunAsync] call so far.
func (s *Session) Stdout() string { return s.collector.Stdout() }

// Stderr returns everything written to the session's standard error
// across every [Runner.Run]/[Session.RunAsync] call so far.
func (s *Session) Stderr() string { return s.collector.Stderr() }

// Close releases resources the session owns beyond what [Runner.Reset]
// clears: namely, any job this session disowned into the process-wide
// orphan supervisor keeps running, but jobs still in this session's own
// table are cancelled, since nothing will ever observe their completion
// again once the session is gone.
func (s *Session) Close() {
	for _, j := range s.Runner.jobs {
		j.cancel()
	}
}

// OutputCollector is a persistent, concurrency-safe sink for a session's
// standard output and standard error streams, generalizing the
// mutex-guarded buffer pattern the interpreter's own tests use for
// collecting output from statements that may run in background
// goroutines.
type OutputCollector struct {
	stdout, stderr safeBuffer
}

func (c *OutputCollector) Stdout() string { return c.stdout.String() }
func (c *OutputCollector) Stderr() string { return c.stderr.String() }

// Reset clears both streams, for a session that wants to reuse its
// runner via [Runner.Reset] without retaining prior output.
func (c *OutputCollector) Reset() {
	c.stdout.Reset()
	c.stderr.Reset()
}

type safeBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *safeBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}
