// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"fmt"
	"maps"
	mathrand "math/rand/v2"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shellrt/shellrt/expand"
	"github.com/shellrt/shellrt/syntax"
)

// overlayEnviron layers a set of local variables on top of a parent
// environment, without modifying the parent. It is used to implement
// subshells, command substitutions, and function-local scopes.
//
// A variable set with vr.Local true is always stored in the overlay
// itself. Otherwise, in an overlay marked as a function scope, if the name
// is not set in the overlay but is already declared somewhere up the
// parent chain, the write is forwarded there instead of shadowing it;
// this matches the way a plain "foo=bar" inside a function updates an
// existing variable of any enclosing scope rather than creating a new
// local one.
type overlayEnviron struct {
	parent expand.Environ
	values map[string]expand.Variable

	// funcScope marks the overlay pushed when entering a function body,
	// so that non-local writes know where to stop shadowing and start
	// forwarding to the parent scope.
	funcScope bool
}

// newOverlayEnviron creates a scope on top of parent. If background is
// true, the parent is fully copied rather than merely wrapped, so that
// a concurrently running background shell cannot observe writes made
// by the shell that spawned it, nor vice versa.
func newOverlayEnviron(parent expand.WriteEnviron, background bool) expand.WriteEnviron {
	if !background {
		return &overlayEnviron{parent: parent}
	}
	values := make(map[string]expand.Variable)
	parent.Each(func(name string, vr expand.Variable) bool {
		values[name] = vr
		return true
	})
	return &overlayEnviron{values: values}
}

func (o *overlayEnviron) Get(name string) expand.Variable {
	if vr, ok := o.values[name]; ok {
		return vr
	}
	if o.parent != nil {
		return o.parent.Get(name)
	}
	return expand.Variable{}
}

func (o *overlayEnviron) Set(name string, vr expand.Variable) error {
	if !vr.Local && o.funcScope {
		if _, ok := o.values[name]; !ok {
			if parent, ok := o.parent.(expand.WriteEnviron); ok && o.parent.Get(name).Declared() {
				return parent.Set(name, vr)
			}
		}
	}
	if o.values == nil {
		o.values = make(map[string]expand.Variable)
	}
	o.values[name] = vr
	return nil
}

func (o *overlayEnviron) Each(fn func(name string, vr expand.Variable) bool) {
	seen := make(map[string]bool, len(o.values))
	for name, vr := range o.values {
		seen[name] = true
		if !fn(name, vr) {
			return
		}
	}
	if o.parent == nil {
		return
	}
	o.parent.Each(func(name string, vr expand.Variable) bool {
		if seen[name] {
			return true
		}
		return fn(name, vr)
	})
}

// lookupVar resolves a variable by name, including the special
// parameters such as $@, $?, and $LINENO that are not stored in the
// environment.
func (r *Runner) lookupVar(name string) expand.Variable {
	if name == "" {
		panic("variable name must not be empty")
	}
	switch name {
	case "#":
		return expand.Variable{Set: true, Kind: expand.String, Str: strconv.Itoa(len(r.Params))}
	case "@", "*":
		return expand.Variable{Set: true, Kind: expand.Indexed, List: r.Params}
	case "?":
		return expand.Variable{Set: true, Kind: expand.String, Str: strconv.Itoa(int(r.lastExit.code))}
	case "!":
		if r.lastBgPID == "" {
			return expand.Variable{}
		}
		return expand.Variable{Set: true, Kind: expand.String, Str: r.lastBgPID}
	case "$":
		return expand.Variable{Set: true, Kind: expand.String, Str: strconv.Itoa(os.Getpid())}
	case "PPID":
		return expand.Variable{Set: true, Kind: expand.String, Str: strconv.Itoa(os.Getppid())}
	case "LINENO":
		line := 0
		if r.file != nil && r.curStmt != nil {
			line = r.file.Position(r.curStmt.Pos()).Line
		}
		return expand.Variable{Set: true, Kind: expand.String, Str: strconv.Itoa(line)}
	case "DIRSTACK":
		return expand.Variable{Set: true, Kind: expand.Indexed, List: r.dirStack}
	case "RANDOM":
		return expand.Variable{Set: true, Kind: expand.String, Str: strconv.Itoa(int(mathrand.Int32N(32768)))}
	case "SECONDS":
		secs := int(time.Since(r.startTime).Seconds())
		return expand.Variable{Set: true, Kind: expand.String, Str: strconv.Itoa(secs)}
	case "EPOCHSECONDS":
		return expand.Variable{Set: true, Kind: expand.String, Str: strconv.FormatInt(time.Now().Unix(), 10)}
	case "EPOCHREALTIME":
		now := time.Now()
		return expand.Variable{Set: true, Kind: expand.String, Str: fmt.Sprintf("%d.%06d", now.Unix(), now.Nanosecond()/1000)}
	case "0":
		name := "gosh"
		if r.filename != "" {
			name = r.filename
		}
		return expand.Variable{Set: true, Kind: expand.String, Str: name}
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		i := int(name[0] - '1')
		if i < len(r.Params) {
			return expand.Variable{Set: true, Kind: expand.String, Str: r.Params[i]}
		}
		return expand.Variable{Set: true, Kind: expand.String, Str: ""}
	}
	if vr := r.writeEnv.Get(name); vr.Declared() {
		return vr
	}
	if runtime.GOOS == "windows" {
		if vr := r.writeEnv.Get(strings.ToUpper(name)); vr.Declared() {
			return vr
		}
	}
	if r.opts[optNoUnset] {
		r.errf("%s: unbound variable\n", name)
		r.exit.code = 1
		r.exit.exiting = true
	}
	return expand.Variable{}
}

// envGet returns the string value of a variable, resolving any chain
// of name references.
func (r *Runner) envGet(name string) string {
	vr := r.lookupVar(name)
	_, vr = vr.Resolve(r.writeEnv)
	return vr.String()
}

func (r *Runner) delVar(name string) {
	if vr := r.lookupVar(name); vr.ReadOnly {
		r.errf("%s: readonly variable\n", name)
		r.exit.code = 1
		return
	}
	r.writeEnv.Set(name, expand.Variable{})
}

func (r *Runner) setVar(name string, vr expand.Variable) {
	if cur := r.lookupVar(name); cur.ReadOnly {
		r.errf("%s: readonly variable\n", name)
		r.exit.code = 1
		return
	}
	if r.opts[optAllExport] && vr.Kind == expand.String {
		vr.Exported = true
	}
	r.writeEnv.Set(name, vr)
}

func (r *Runner) setVarString(name, value string) {
	r.setVar(name, expand.Variable{Set: true, Kind: expand.String, Str: value})
}

// stringIndex reports whether an array index is a quoted string,
// meaning the assignment targets an associative array key rather than
// an arithmetic index.
func stringIndex(index syntax.ArithmExpr) bool {
	w, ok := index.(*syntax.Word)
	if !ok || len(w.Parts) != 1 {
		return false
	}
	switch w.Parts[0].(type) {
	case *syntax.DblQuoted, *syntax.SglQuoted:
		return true
	}
	return false
}

// setVarWithIndex places vr's string value at the given index of the
// array variable name, converting it to an indexed or associative
// array as needed. If index is nil, it is equivalent to setVar.
func (r *Runner) setVarWithIndex(prev expand.Variable, name string, index syntax.ArithmExpr, vr expand.Variable) {
	if prev.ReadOnly {
		r.errf("%s: readonly variable\n", name)
		r.exit.code = 1
		return
	}
	if index == nil {
		r.setVar(name, vr)
		return
	}
	valStr := vr.Str
	if prev.Kind == expand.Associative || stringIndex(index) {
		key := r.literal(index.(*syntax.Word))
		amap := make(map[string]string, len(prev.Map)+1)
		maps.Copy(amap, prev.Map)
		amap[key] = valStr
		prev.Set = true
		prev.Kind = expand.Associative
		prev.Map = amap
		r.setVar(name, prev)
		return
	}
	var list []string
	switch prev.Kind {
	case expand.String:
		list = []string{prev.Str}
	case expand.Indexed:
		list = append([]string(nil), prev.List...)
	}
	i := r.arithm(index)
	for len(list) <= i {
		list = append(list, "")
	}
	list[i] = valStr
	prev.Set = true
	prev.Kind = expand.Indexed
	prev.List = list
	r.setVar(name, prev)
}

func (r *Runner) setFunc(name string, body *syntax.Stmt) {
	if r.Funcs == nil {
		r.Funcs = make(map[string]*syntax.Stmt, 4)
	}
	r.Funcs[name] = body
}

// assignVal computes the value that an assignment should give to a
// variable, based on the previous value (for appends and naked
// assignments) and the kind requested by "declare"-family commands.
func (r *Runner) assignVal(prev expand.Variable, as *syntax.Assign, valType string) expand.Variable {
	if as.Naked {
		return prev
	}
	if as.Value != nil {
		s := r.literal(as.Value)
		if !as.Append || !prev.IsSet() {
			return expand.Variable{Set: true, Kind: expand.String, Str: s}
		}
		switch prev.Kind {
		case expand.Indexed:
			list := append([]string(nil), prev.List...)
			if len(list) == 0 {
				list = append(list, "")
			}
			list[0] += s
			return expand.Variable{Set: true, Kind: expand.Indexed, List: list}
		case expand.Associative:
			return expand.Variable{Set: true, Kind: expand.String, Str: s}
		default:
			return expand.Variable{Set: true, Kind: expand.String, Str: prev.Str + s}
		}
	}
	if as.Array == nil {
		// don't return an unset variable
		return expand.Variable{Set: true, Kind: expand.String, Str: ""}
	}
	elems := as.Array.List
	if valType == "" {
		valType = "-a"
	}
	if valType == "-A" {
		// The grammar here carries no per-element key, so an
		// associative array literal is only ever populated
		// through individual "foo[key]=value" assignments; a
		// plain "(a b c)" literal just seeds sequential keys.
		amap := make(map[string]string, len(elems))
		for i := range elems {
			amap[strconv.Itoa(i)] = r.literal(&elems[i])
		}
		if as.Append && prev.Kind == expand.Associative {
			maps.Copy(amap, prev.Map)
		}
		return expand.Variable{Set: true, Kind: expand.Associative, Map: amap}
	}
	list := make([]string, len(elems))
	for i := range elems {
		list[i] = r.literal(&elems[i])
	}
	if as.Append {
		switch prev.Kind {
		case expand.String:
			list = append([]string{prev.Str}, list...)
		case expand.Indexed:
			list = append(append([]string(nil), prev.List...), list...)
		}
	}
	return expand.Variable{Set: true, Kind: expand.Indexed, List: list}
}

func (r *Runner) namesByPrefix(prefix string) []string {
	var names []string
	r.writeEnv.Each(func(name string, vr expand.Variable) bool {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return true
	})
	return names
}
