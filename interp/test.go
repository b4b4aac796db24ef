// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"golang.org/x/term"

	"github.com/shellrt/shellrt/expand"
	"github.com/shellrt/shellrt/syntax"
)

// testParser turns the classic "test"/"[" argument list into the same
// syntax.TestExpr tree that the parser builds for "[[ ]]", so that both
// forms share one evaluator.
type testParser struct {
	rem []string
	cur string
	err func(error)
}

func (p *testParser) next() {
	if len(p.rem) == 0 {
		p.cur = ""
		return
	}
	p.cur = p.rem[0]
	p.rem = p.rem[1:]
}

func (p *testParser) errorf(format string, a ...any) {
	p.err(fmt.Errorf(format, a...))
}

// classicTest parses a classic test expression, stopping at fToken (either
// "]" or the end of the argument list for "test"). If classic is true, the
// looser classic-test grammar is used, accepting bare words with implicit
// -n semantics and without requiring escaped parens.
func (p *testParser) classicTest(fToken string, classic bool) syntax.TestExpr {
	return p.testOr(fToken, classic)
}

func (p *testParser) testOr(fToken string, classic bool) syntax.TestExpr {
	x := p.testAnd(fToken, classic)
	for p.cur == "-o" {
		p.next()
		y := p.testAnd(fToken, classic)
		x = &syntax.BinaryTest{Op: syntax.OrTest, X: x, Y: y}
	}
	return x
}

func (p *testParser) testAnd(fToken string, classic bool) syntax.TestExpr {
	x := p.testNot(fToken, classic)
	for p.cur == "-a" {
		p.next()
		y := p.testNot(fToken, classic)
		x = &syntax.BinaryTest{Op: syntax.AndTest, X: x, Y: y}
	}
	return x
}

func (p *testParser) testNot(fToken string, classic bool) syntax.TestExpr {
	if p.cur == "!" {
		p.next()
		x := p.testNot(fToken, classic)
		return &syntax.UnaryTest{Op: syntax.TsNot, X: x}
	}
	return p.testPrimary(fToken, classic)
}

var classicUnary = map[string]syntax.UnTestOperator{
	"-e": syntax.TsExists,
	"-f": syntax.TsRegFile,
	"-d": syntax.TsDirect,
	"-c": syntax.TsCharSp,
	"-b": syntax.TsBlckSp,
	"-p": syntax.TsNmPipe,
	"-S": syntax.TsSocket,
	"-L": syntax.TsSmbLink,
	"-h": syntax.TsSmbLink,
	"-g": syntax.TsGIDSet,
	"-u": syntax.TsUIDSet,
	"-r": syntax.TsRead,
	"-w": syntax.TsWrite,
	"-x": syntax.TsExec,
	"-s": syntax.TsNoEmpty,
	"-t": syntax.TsFdTerm,
	"-z": syntax.TsEmpStr,
	"-n": syntax.TsNempStr,
	"-v": syntax.TsVarSet,
	"-R": syntax.TsRefVar,
	"-O": syntax.TsUsrOwn,
	"-G": syntax.TsGrpOwn,
	"-k": syntax.TsSticky,
	"-N": syntax.TsModif,
}

var classicBinary = map[string]syntax.BinTestOperator{
	"=":   syntax.TsMatch,
	"==":  syntax.TsMatch,
	"!=":  syntax.TsNoMatch,
	"=~":  syntax.TsReMatch,
	"-nt": syntax.TsNewer,
	"-ot": syntax.TsOlder,
	"-ef": syntax.TsDevIno,
	"-eq": syntax.TsEql,
	"-ne": syntax.TsNeq,
	"-le": syntax.TsLeq,
	"-ge": syntax.TsGeq,
	"-lt": syntax.TsLss,
	"-gt": syntax.TsGtr,
	"<":   syntax.TsBefore,
	">":   syntax.TsAfter,
}

func litWord(s string) *syntax.Word {
	return &syntax.Word{Parts: []syntax.WordPart{&syntax.Lit{Value: s}}}
}

func (p *testParser) testPrimary(fToken string, classic bool) syntax.TestExpr {
	if p.cur == "" || p.cur == fToken {
		p.errorf("test: argument expected")
		return litWord("")
	}
	if p.cur == "(" {
		p.next()
		x := p.testOr(")", classic)
		if p.cur != ")" {
			p.errorf("test: missing ')'")
		}
		p.next()
		return &syntax.ParenTest{X: x}
	}
	if op, ok := classicUnary[p.cur]; ok {
		p.next()
		x := litWord(p.cur)
		p.next()
		return &syntax.UnaryTest{Op: op, X: x}
	}
	x := litWord(p.cur)
	p.next()
	if op, ok := classicBinary[p.cur]; ok {
		p.next()
		y := litWord(p.cur)
		p.next()
		return &syntax.BinaryTest{Op: op, X: x, Y: y}
	}
	return x
}

// bashTest evaluates expr, returning a non-empty string when the test is
// true. classic selects the looser [ and test builtin semantics, where a
// bare word tests for non-empty rather than being treated as a condition
// on its own right.
func (r *Runner) bashTest(ctx context.Context, expr syntax.TestExpr, classic bool) string {
	switch x := expr.(type) {
	case *syntax.Word:
		return r.literal(x)
	case *syntax.ParenTest:
		return r.bashTest(ctx, x.X, classic)
	case *syntax.BinaryTest:
		switch x.Op {
		case syntax.AndTest:
			if r.bashTest(ctx, x.X, classic) == "" {
				return ""
			}
			return r.bashTest(ctx, x.Y, classic)
		case syntax.OrTest:
			if s := r.bashTest(ctx, x.X, classic); s != "" {
				return s
			}
			return r.bashTest(ctx, x.Y, classic)
		}
		return oneIfTrue(r.binTest(ctx, x.Op, r.bashTest(ctx, x.X, classic), r.bashTest(ctx, x.Y, classic)))
	case *syntax.UnaryTest:
		if x.Op == syntax.TsNot {
			if r.bashTest(ctx, x.X, classic) == "" {
				return "1"
			}
			return ""
		}
		return oneIfTrue(r.unTest(ctx, x.Op, r.bashTest(ctx, x.X, classic)))
	}
	return ""
}

func oneIfTrue(b bool) string {
	if b {
		return "1"
	}
	return ""
}

func (r *Runner) unTest(ctx context.Context, op syntax.UnTestOperator, x string) bool {
	switch op {
	case syntax.TsExists:
		_, err := r.stat(ctx, x)
		return err == nil
	case syntax.TsRegFile:
		info, err := r.stat(ctx, x)
		return err == nil && info.Mode().IsRegular()
	case syntax.TsDirect:
		info, err := r.stat(ctx, x)
		return err == nil && info.IsDir()
	case syntax.TsCharSp:
		info, err := r.stat(ctx, x)
		return err == nil && info.Mode()&fs.ModeCharDevice != 0
	case syntax.TsBlckSp:
		info, err := r.stat(ctx, x)
		return err == nil && info.Mode()&fs.ModeDevice != 0 && info.Mode()&fs.ModeCharDevice == 0
	case syntax.TsNmPipe:
		info, err := r.stat(ctx, x)
		return err == nil && info.Mode()&fs.ModeNamedPipe != 0
	case syntax.TsSocket:
		info, err := r.stat(ctx, x)
		return err == nil && info.Mode()&fs.ModeSocket != 0
	case syntax.TsSmbLink:
		info, err := r.lstat(ctx, x)
		return err == nil && info.Mode()&fs.ModeSymlink != 0
	case syntax.TsGIDSet:
		info, err := r.stat(ctx, x)
		return err == nil && info.Mode()&fs.ModeSetgid != 0
	case syntax.TsUIDSet:
		info, err := r.stat(ctx, x)
		return err == nil && info.Mode()&fs.ModeSetuid != 0
	case syntax.TsSticky:
		info, err := r.stat(ctx, x)
		return err == nil && info.Mode()&fs.ModeSticky != 0
	case syntax.TsRead:
		return r.access(ctx, r.absPath(x), access_R_OK) == nil
	case syntax.TsWrite:
		return r.access(ctx, r.absPath(x), access_W_OK) == nil
	case syntax.TsExec:
		return r.access(ctx, r.absPath(x), access_X_OK) == nil
	case syntax.TsNoEmpty:
		info, err := r.stat(ctx, x)
		return err == nil && info.Size() > 0
	case syntax.TsFdTerm:
		fd, err := atoiFd(x)
		if err != nil {
			return false
		}
		return term.IsTerminal(fd)
	case syntax.TsEmpStr:
		return x == ""
	case syntax.TsNempStr:
		return x != ""
	case syntax.TsOptSet:
		_, opt := r.optByName(x, true)
		return opt != nil && *opt
	case syntax.TsVarSet:
		return r.lookupVar(x).IsSet()
	case syntax.TsRefVar:
		vr := r.lookupVar(x)
		return vr.IsSet() && vr.Kind == expand.NameRef
	case syntax.TsUsrOwn, syntax.TsGrpOwn:
		return r.unTestOwnOrGrp(ctx, op, x)
	case syntax.TsModif:
		// -N: file has been modified since it was last read.
		info, err := r.stat(ctx, x)
		a, err2 := atime(info)
		return err == nil && err2 == nil && info.ModTime().After(a)
	}
	return false
}

func atoiFd(s string) (int, error) {
	var fd int
	_, err := fmt.Sscanf(s, "%d", &fd)
	return fd, err
}

func (r *Runner) binTest(ctx context.Context, op syntax.BinTestOperator, x, y string) bool {
	switch op {
	case syntax.TsMatch:
		return match(y, x)
	case syntax.TsNoMatch:
		return !match(y, x)
	case syntax.TsReMatch:
		rx, err := regexp.Compile(y)
		if err != nil {
			r.errf("%v\n", err)
			return false
		}
		return rx.MatchString(x)
	case syntax.TsNewer:
		info1, err1 := r.stat(ctx, x)
		info2, err2 := r.stat(ctx, y)
		if err1 != nil || err2 != nil {
			return err2 != nil && err1 == nil
		}
		return info1.ModTime().After(info2.ModTime())
	case syntax.TsOlder:
		info1, err1 := r.stat(ctx, x)
		info2, err2 := r.stat(ctx, y)
		if err1 != nil || err2 != nil {
			return err1 != nil && err2 == nil
		}
		return info1.ModTime().Before(info2.ModTime())
	case syntax.TsDevIno:
		info1, err1 := r.stat(ctx, x)
		info2, err2 := r.stat(ctx, y)
		if err1 != nil || err2 != nil {
			return false
		}
		return os.SameFile(info1, info2)
	case syntax.TsEql, syntax.TsNeq, syntax.TsLeq, syntax.TsGeq, syntax.TsLss, syntax.TsGtr:
		nx := r.arithmStr(x)
		ny := r.arithmStr(y)
		switch op {
		case syntax.TsEql:
			return nx == ny
		case syntax.TsNeq:
			return nx != ny
		case syntax.TsLeq:
			return nx <= ny
		case syntax.TsGeq:
			return nx >= ny
		case syntax.TsLss:
			return nx < ny
		case syntax.TsGtr:
			return nx > ny
		}
	case syntax.TsBefore:
		return x < y
	case syntax.TsAfter:
		return x > y
	}
	return false
}

// arithmStr evaluates s as an arithmetic expression, matching the numeric
// comparisons done by -eq, -lt, and friends.
func (r *Runner) arithmStr(s string) int {
	return r.arithm(litWord(s))
}
