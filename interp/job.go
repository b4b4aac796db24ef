// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/shellrt/shellrt/syntax"
)

// jobState is the lifecycle state of a background job, as reported by the
// "jobs" builtin.
type jobState uint8

const (
	jobRunning jobState = iota
	jobDone
)

func (s jobState) String() string {
	switch s {
	case jobDone:
		return "Done"
	default:
		return "Running"
	}
}

// job is one entry in a [Runner]'s job table, created for every "&"
// statement. Unlike a real OS process group, a job here wraps a Go
// goroutine running a subshell; signaling it cancels that goroutine's
// context rather than targeting a single process group, which is the
// natural adaptation of job control to an embeddable interpreter where a
// background job may itself be a pipeline of several external commands.
type job struct {
	num   int
	text  string
	state jobState
	exit  exitStatus

	done   chan struct{}
	cancel context.CancelFunc
}

// jobText renders a statement the way the "jobs" builtin reports it,
// falling back to an empty string if printing fails.
func jobText(st *syntax.Stmt) string {
	st2 := *st
	st2.Background = false
	var buf bytes.Buffer
	if err := syntax.Fprint(&buf, &syntax.File{Stmts: []*syntax.Stmt{&st2}}); err != nil {
		return ""
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// startJob registers a new background job for st and returns the context
// the caller should run it under, along with the job itself so the caller
// can record its completion.
func (r *Runner) startJob(ctx context.Context, st *syntax.Stmt) (context.Context, *job) {
	jobCtx, cancel := context.WithCancel(ctx)
	j := &job{
		num:    len(r.jobs) + 1,
		text:   jobText(st),
		state:  jobRunning,
		done:   make(chan struct{}),
		cancel: cancel,
	}
	r.jobs = append(r.jobs, j)
	r.curJob, r.prevJob = j.num, r.curJob
	return jobCtx, j
}

// finish records a job's completion. It does not remove the job from
// the table; callers of "jobs"/"wait" need to observe the Done state at
// least once, matching bash's "jobs" output after a job finishes.
func (j *job) finish(exit exitStatus) {
	j.exit = exit
	j.state = jobDone
	close(j.done)
}

// resolveJobSpec looks up a "%"-style job spec (%%, %+, %N, %-) or a bare
// job number, returning nil if it doesn't match any live entry.
func (r *Runner) resolveJobSpec(spec string) *job {
	spec, _ = cutPrefixByte(spec, '%')
	switch spec {
	case "", "%", "+":
		return r.jobByNum(r.curJob)
	case "-":
		return r.jobByNum(r.prevJob)
	}
	n := int(atoi(spec))
	return r.jobByNum(n)
}

func cutPrefixByte(s string, b byte) (string, bool) {
	if len(s) > 0 && s[0] == b {
		return s[1:], true
	}
	return s, false
}

func (r *Runner) jobByNum(n int) *job {
	for _, j := range r.jobs {
		if j.num == n {
			return j
		}
	}
	return nil
}

// orphanPool is the process-wide supervisor that disowned jobs are handed
// off to. It only waits out each job's completion; a session that exits
// before its disowned jobs finish no longer blocks on them.
var (
	orphanOnce sync.Once
	orphanPool *pool.Pool
)

func getOrphanPool() *pool.Pool {
	orphanOnce.Do(func() {
		orphanPool = pool.New().WithMaxGoroutines(64)
	})
	return orphanPool
}

// disown removes j from r's job table and hands it to the orphan
// supervisor, so it outlives the session that started it.
func (r *Runner) disown(j *job) {
	for i, cur := range r.jobs {
		if cur == j {
			r.jobs = append(r.jobs[:i], r.jobs[i+1:]...)
			break
		}
	}
	getOrphanPool().Go(func() {
		<-j.done
	})
}

// jobSpecError formats the standard "no such job" message used by
// fg/bg/disown/kill.
func jobSpecError(spec string) error {
	return fmt.Errorf("%s: no such job", spec)
}
