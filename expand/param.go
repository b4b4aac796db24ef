// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shellrt/shellrt/syntax"
)

func anyOfLit(v any, vals ...string) string {
	word, _ := v.(*syntax.Word)
	if word == nil || len(word.Parts) != 1 {
		return ""
	}
	lit, ok := word.Parts[0].(*syntax.Lit)
	if !ok {
		return ""
	}
	for _, val := range vals {
		if lit.Value == val {
			return val
		}
	}
	return ""
}

func (cfg *Config) paramExp(ctx context.Context, pe *syntax.ParamExp) (string, error) {
	oldParam := cfg.curParam
	cfg.curParam = pe
	defer func() { cfg.curParam = oldParam }()

	name := pe.Param.Value
	var index syntax.ArithmExpr
	if pe.Ind != nil {
		index = &pe.Ind.Word
	}
	switch name {
	case "@", "*":
		index = &syntax.Word{Parts: []syntax.WordPart{
			&syntax.Lit{Value: name},
		}}
	}
	var vr Variable
	switch name {
	case "LINENO":
		// This is the only parameter expansion that the environment
		// interface cannot satisfy on its own.
		line := uint64(pe.Pos().Line())
		vr = Variable{Set: true, Kind: String, Str: strconv.FormatUint(line, 10)}
	default:
		vr = cfg.Env.Get(name)
	}
	set := vr.IsSet()
	str := cfg.varStr(vr, 0)
	if index != nil {
		var err error
		str, err = cfg.varInd(ctx, vr, index, 0)
		if err != nil {
			return "", err
		}
	}
	slicePos := func(expr syntax.ArithmExpr) (int, error) {
		p, err := Arithm(cfg, expr)
		if err != nil {
			return 0, err
		}
		if p < 0 {
			p = len(str) + p
			if p < 0 {
				p = len(str)
			}
		} else if p > len(str) {
			p = len(str)
		}
		return p, nil
	}
	var elems []string
	if anyOfLit(index, "@", "*") != "" {
		switch vr.Kind {
		case Indexed:
			elems = vr.List
		case Associative:
			keys := make([]string, 0, len(vr.Map))
			for k := range vr.Map {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				elems = append(elems, vr.Map[k])
			}
		}
	} else {
		elems = []string{str}
	}
	switch {
	case pe.Length:
		n := len(elems)
		if anyOfLit(index, "@", "*") == "" {
			n = utf8.RuneCountInString(str)
		}
		str = strconv.Itoa(n)
	case pe.Slice != nil:
		if pe.Slice.Offset.Parts != nil {
			offset, err := slicePos(&pe.Slice.Offset)
			if err != nil {
				return "", err
			}
			str = str[offset:]
		}
		if pe.Slice.Length.Parts != nil {
			length, err := slicePos(&pe.Slice.Length)
			if err != nil {
				return "", err
			}
			str = str[:length]
		}
	case pe.Repl != nil:
		orig, err := Pattern(cfg, &pe.Repl.Orig)
		if err != nil {
			return "", err
		}
		with, err := Literal(cfg, &pe.Repl.With)
		if err != nil {
			return "", err
		}
		n := 1
		if pe.Repl.All {
			n = -1
		}
		locs := findAllIndex(orig, str, n)
		buf := cfg.strBuilder()
		last := 0
		for _, loc := range locs {
			buf.WriteString(str[last:loc[0]])
			buf.WriteString(with)
			last = loc[1]
		}
		buf.WriteString(str[last:])
		str = buf.String()
	case pe.Exp != nil:
		arg, err := Literal(cfg, &pe.Exp.Word)
		if err != nil {
			return "", err
		}
		switch op := pe.Exp.Op; op {
		case syntax.SubstColAdd:
			if str == "" {
				break
			}
			fallthrough
		case syntax.SubstAdd:
			if set {
				str = arg
			}
		case syntax.SubstSub:
			if set {
				break
			}
			fallthrough
		case syntax.SubstColSub:
			if str == "" {
				str = arg
			}
		case syntax.SubstQuest:
			if set {
				break
			}
			fallthrough
		case syntax.SubstColQuest:
			if str == "" {
				return "", UnsetParameterError{
					Expr:    pe,
					Message: arg,
				}
			}
		case syntax.SubstAssgn:
			if set {
				break
			}
			fallthrough
		case syntax.SubstColAssgn:
			if str == "" {
				if err := cfg.envSet(name, arg); err != nil {
					return "", err
				}
				str = arg
			}
		case syntax.RemSmallPrefix, syntax.RemLargePrefix,
			syntax.RemSmallSuffix, syntax.RemLargeSuffix:
			suffix := op == syntax.RemSmallSuffix ||
				op == syntax.RemLargeSuffix
			large := op == syntax.RemLargePrefix ||
				op == syntax.RemLargeSuffix
			for i, elem := range elems {
				elems[i] = removePattern(elem, arg, suffix, large)
			}
			str = strings.Join(elems, " ")
		case syntax.UpperFirst, syntax.UpperAll,
			syntax.LowerFirst, syntax.LowerAll:

			caseFunc := unicode.ToLower
			if op == syntax.UpperFirst || op == syntax.UpperAll {
				caseFunc = unicode.ToUpper
			}
			all := op == syntax.UpperAll || op == syntax.LowerAll

			// empty string means '?'; nothing to do there
			expr, err := syntax.TranslatePattern(arg, false)
			if err != nil {
				return str, nil
			}
			rx := regexp.MustCompile(expr)

			for i, elem := range elems {
				rs := []rune(elem)
				for ri, r := range rs {
					if rx.MatchString(string(r)) {
						rs[ri] = caseFunc(r)
						if !all {
							break
						}
					}
				}
				elems[i] = string(rs)
			}
			str = strings.Join(elems, " ")
		}
	}
	return str, nil
}

func removePattern(str, pattern string, fromEnd, greedy bool) string {
	expr, err := syntax.TranslatePattern(pattern, greedy)
	if err != nil {
		return str
	}
	switch {
	case fromEnd && !greedy:
		// use .* to get the right-most (shortest) match
		expr = ".*(" + expr + ")$"
	case fromEnd:
		// simple suffix
		expr = "(" + expr + ")$"
	default:
		// simple prefix
		expr = "^(" + expr + ")"
	}
	// no need to check error as TranslatePattern returns one
	rx := regexp.MustCompile(expr)
	if loc := rx.FindStringSubmatchIndex(str); loc != nil {
		// remove the original pattern (the submatch)
		str = str[:loc[2]] + str[loc[3]:]
	}
	return str
}

func (cfg *Config) varStr(vr Variable, depth int) string {
	if depth > maxNameRefDepth {
		return ""
	}
	if vr.Kind == NameRef {
		vr = cfg.Env.Get(vr.Str)
		return cfg.varStr(vr, depth+1)
	}
	return vr.String()
}

func (cfg *Config) varInd(ctx context.Context, vr Variable, idx syntax.ArithmExpr, depth int) (string, error) {
	if depth > maxNameRefDepth {
		return "", nil
	}
	switch vr.Kind {
	case NameRef:
		vr = cfg.Env.Get(vr.Str)
		return cfg.varInd(ctx, vr, idx, depth+1)
	case Indexed:
		switch anyOfLit(idx, "@", "*") {
		case "@":
			return strings.Join(vr.List, " "), nil
		case "*":
			return cfg.ifsJoin(vr.List), nil
		}
		i, err := Arithm(cfg, idx)
		if err != nil {
			return "", err
		}
		if i >= 0 && i < len(vr.List) {
			return vr.List[i], nil
		}
		return "", nil
	case Associative:
		if lit := anyOfLit(idx, "@", "*"); lit != "" {
			keys := make([]string, 0, len(vr.Map))
			for k := range vr.Map {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			strs := make([]string, len(keys))
			for i, k := range keys {
				strs[i] = vr.Map[k]
			}
			if lit == "*" {
				return cfg.ifsJoin(strs), nil
			}
			return strings.Join(strs, " "), nil
		}
		key, err := Literal(cfg, idx.(*syntax.Word))
		if err != nil {
			return "", err
		}
		return vr.Map[key], nil
	default:
		if Arithm0, err := Arithm(cfg, idx); err != nil {
			return "", err
		} else if Arithm0 == 0 {
			return vr.Str, nil
		}
		return "", nil
	}
}

func (cfg *Config) namesByPrefix(prefix string) []string {
	var names []string
	cfg.Env.Each(func(name string, vr Variable) bool {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return true
	})
	return names
}
