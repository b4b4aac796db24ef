// Copyright (c) 2017, Andrey Nering <andrey.nering@gmail.com>
// See LICENSE for licensing information

//go:build unix

package interp

import (
	"context"
	"fmt"
	"io/fs"
	"os/user"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"github.com/shellrt/shellrt/syntax"
)

func mkfifo(path string, mode uint32) error {
	return unix.Mkfifo(path, mode)
}

// access is similar to checking the permission bits from [io/fs.FileInfo],
// but it also takes into account the current user's role.
func (r *Runner) access(ctx context.Context, path string, mode uint32) error {
	// TODO(v4): "access" may need to become part of a handler, like "open" or "stat".
	return unix.Access(path, mode)
}

// unTestOwnOrGrp implements the -O and -G unary tests. If the file does not
// exist, or the current user cannot be retrieved, returns false.
func (r *Runner) unTestOwnOrGrp(ctx context.Context, op syntax.UnTestOperator, x string) bool {
	info, err := r.stat(ctx, x)
	if err != nil {
		return false
	}
	u, err := user.Current()
	if err != nil {
		return false
	}
	if op == syntax.TsUsrOwn {
		uid, _ := strconv.Atoi(u.Uid)
		return uint32(uid) == info.Sys().(*syscall.Stat_t).Uid
	}
	gid, _ := strconv.Atoi(u.Gid)
	return uint32(gid) == info.Sys().(*syscall.Stat_t).Gid
}

// atime returns the last access time recorded in info, used by the -N test.
func atime(info fs.FileInfo) (time.Time, error) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, fmt.Errorf("unsupported stat_t")
	}
	return time.Unix(st.Atim.Sec, st.Atim.Nsec), nil
}

// killPid sends signal sig to the process (or process group, if pid is
// negative) numbered pid, for the "kill" builtin.
func killPid(pid int, sig int) error {
	return unix.Kill(pid, unix.Signal(sig))
}

// signalNames maps the bare names accepted by "kill -SIGNAME" to their
// platform signal numbers.
var signalNames = map[string]int{
	"HUP": int(unix.SIGHUP), "INT": int(unix.SIGINT), "QUIT": int(unix.SIGQUIT),
	"KILL": int(unix.SIGKILL), "TERM": int(unix.SIGTERM), "USR1": int(unix.SIGUSR1),
	"USR2": int(unix.SIGUSR2), "CONT": int(unix.SIGCONT), "STOP": int(unix.SIGSTOP),
	"TSTP": int(unix.SIGTSTP), "CHLD": int(unix.SIGCHLD), "ABRT": int(unix.SIGABRT),
	"ALRM": int(unix.SIGALRM), "PIPE": int(unix.SIGPIPE), "WINCH": int(unix.SIGWINCH),
}

// signalByName resolves a signal name (with or without the "SIG" prefix)
// to its platform-specific number.
func signalByName(name string) (int, bool) {
	name = strings.ToUpper(strings.TrimPrefix(name, "SIG"))
	n, ok := signalNames[name]
	return n, ok
}

type waitStatus = syscall.WaitStatus
