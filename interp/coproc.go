// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"
	"os"
	"strconv"

	"github.com/shellrt/shellrt/expand"
	"github.com/shellrt/shellrt/syntax"
)

// coprocFDBase is the first synthetic file descriptor number handed out to
// a coprocess's pipe ends, chosen to sit well above the handful of fds a
// simple script opens directly, mirroring the way bash itself starts
// allocating coprocess fds from a high, rarely-collided number.
const coprocFDBase = 63

// allocFile registers f under a new synthetic fd number and returns it as a
// decimal string, suitable for use as the argument of a "<&" or ">&"
// duplication redirect.
func (r *Runner) allocFile(f *os.File) string {
	if r.extraFiles == nil {
		r.extraFiles = make(map[string]*os.File)
		r.nextExtraFD = coprocFDBase
	}
	fd := strconv.Itoa(r.nextExtraFD)
	r.nextExtraFD++
	r.extraFiles[fd] = f
	return fd
}

// runCoproc runs cc.Stmt as a background job with its stdin and stdout
// wired to pipes, exposing the parent's ends of those pipes as the two
// elements of the NAME indexed array plus a NAME_PID variable, following
// the same job-table/bgProcs bookkeeping used for a plain "&" statement.
func (r *Runner) runCoproc(ctx context.Context, cc *syntax.CoprocClause) {
	name := "COPROC"
	if cc.Name != nil {
		name = cc.Name.Value
	}

	inR, inW, err := os.Pipe()
	if err != nil {
		r.exit.fatal(err)
		return
	}
	outR, outW, err := os.Pipe()
	if err != nil {
		inR.Close()
		inW.Close()
		r.exit.fatal(err)
		return
	}

	r2 := r.subshell(true)
	r2.stdin = inR
	r2.stdout = outW

	st2 := *cc.Stmt
	st2.Background = false

	bg := bgProc{
		done: make(chan struct{}),
		exit: new(exitStatus),
	}
	r.bgProcs = append(r.bgProcs, bg)
	r.lastBgPID = "g" + strconv.Itoa(len(r.bgProcs))
	jobCtx, j := r.startJob(ctx, cc.Stmt)

	go func() {
		defer inR.Close()
		defer outW.Close()
		r2.Run(jobCtx, &st2)
		r2.exit.exiting = false // subshells don't exit the parent shell
		*bg.exit = r2.exit
		close(bg.done)
		j.finish(r2.exit)
	}()

	readFD := r.allocFile(outR)
	writeFD := r.allocFile(inW)
	r.setVar(name, expand.Variable{Set: true, Kind: expand.Indexed, List: []string{readFD, writeFD}})
	r.setVarString(name+"_PID", r.lastBgPID)
	r.exit = exitStatus{}
}
