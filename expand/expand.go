// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/shellrt/shellrt/syntax"
)

// Config controls how words and other constructs are expanded, giving access
// to the necessary state via the Env field, as well as other optional
// settings resembling bash's shell options.
type Config struct {
	Env WriteEnviron

	// CmdSubst is called to run the statements inside a command
	// substitution such as $(foo bar) and capture their standard output.
	CmdSubst func(io.Writer, *syntax.CmdSubst) error

	// ProcSubst is called to run the statements inside a process
	// substitution such as <(foo bar), returning the path that the
	// caller can use to read or write from the spawned process.
	ProcSubst func(*syntax.ProcSubst) (string, error)

	// ReadDir2 is used to read directory contents when resolving path
	// globbing patterns. If nil, [os.ReadDir] is used.
	ReadDir2 func(string) ([]fs.DirEntry, error)

	NoGlob     bool
	GlobStar   bool
	NoCaseGlob bool
	NullGlob   bool
	NoUnset    bool

	ifs string
	// curParam holds the parameter expansion node being evaluated, if
	// any; used for $LINENO.
	curParam *syntax.ParamExp

	bufferAlloc bytes.Buffer
	fieldAlloc  [4]fieldPart
	fieldsAlloc [4][]fieldPart
}

func (cfg *Config) readDir(dir string) ([]fs.DirEntry, error) {
	if cfg.ReadDir2 != nil {
		return cfg.ReadDir2(dir)
	}
	return os.ReadDir(dir)
}

func (cfg *Config) prepareIFS() {
	vr := cfg.Env.Get("IFS")
	if !vr.IsSet() {
		cfg.ifs = " \t\n"
	} else {
		cfg.ifs = vr.String()
	}
}

func (cfg *Config) ifsRune(r rune) bool {
	for _, r2 := range cfg.ifs {
		if r == r2 {
			return true
		}
	}
	return false
}

func (cfg *Config) ifsJoin(strs []string) string {
	sep := ""
	if cfg.ifs != "" {
		sep = cfg.ifs[:1]
	}
	return strings.Join(strs, sep)
}

func (cfg *Config) strBuilder() *bytes.Buffer {
	b := &cfg.bufferAlloc
	b.Reset()
	return b
}

func (cfg *Config) envGet(name string) string {
	return cfg.Env.Get(name).String()
}

func (cfg *Config) envSet(name, value string) error {
	return cfg.Env.Set(name, Variable{Set: true, Kind: String, Str: value})
}

// UnsetParameterError is returned by [Literal], [Fields], [Pattern] and
// [Document] when a parameter expansion of the form ${var?msg} or
// ${var:?msg} is hit for an unset or empty variable.
type UnsetParameterError struct {
	Expr    *syntax.ParamExp
	Message string
}

func (u UnsetParameterError) Error() string {
	return u.Message
}

// Literal expands a word as if it were within double quotes, returning its
// unsplit string form.
func Literal(cfg *Config, word *syntax.Word) (string, error) {
	if word == nil {
		return "", nil
	}
	field, err := cfg.wordField(context.Background(), word.Parts, quoteDouble)
	if err != nil {
		return "", err
	}
	return cfg.fieldJoin(field), nil
}

// Document expands a word as the body of a here-document.
func Document(cfg *Config, word *syntax.Word) (string, error) {
	return Literal(cfg, word)
}

// Pattern expands a word into an extended pattern, ready to be used for
// comparisons such as file name matching or the case command.
func Pattern(cfg *Config, word *syntax.Word) (string, error) {
	field, err := cfg.wordField(context.Background(), word.Parts, quoteSingle)
	if err != nil {
		return "", err
	}
	buf := cfg.strBuilder()
	for _, part := range field {
		if part.quote > quoteNone {
			buf.WriteString(syntax.QuotePattern(part.val))
		} else {
			buf.WriteString(part.val)
		}
	}
	return buf.String(), nil
}

// Fields expands one or more words as arguments of a command, including
// brace expansion, tilde expansion, parameter expansion, field splitting and
// path globbing.
func Fields(cfg *Config, words ...*syntax.Word) ([]string, error) {
	cfg.prepareIFS()
	ctx := context.Background()

	fields := make([]string, 0, len(words))
	dir := cfg.envGet("PWD")
	baseDir := syntax.QuotePattern(dir)
	for _, word := range words {
		for _, expWord := range Braces(word) {
			wfields, err := cfg.wordFields(ctx, expWord.Parts)
			if err != nil {
				return nil, err
			}
			for _, field := range wfields {
				path, doGlob := cfg.escapedGlobField(field)
				var matches []string
				abs := filepath.IsAbs(path)
				if doGlob && !cfg.NoGlob {
					if !abs {
						path = filepath.Join(baseDir, path)
					}
					matches = cfg.glob(path)
				}
				if len(matches) == 0 {
					if cfg.NullGlob && doGlob {
						continue
					}
					fields = append(fields, cfg.fieldJoin(field))
					continue
				}
				for _, match := range matches {
					if !abs {
						endSeparator := strings.HasSuffix(match, string(filepath.Separator))
						match, _ = filepath.Rel(dir, match)
						if endSeparator {
							match += string(filepath.Separator)
						}
					}
					fields = append(fields, match)
				}
			}
		}
	}
	return fields, nil
}

// Format implements the shell's printf-like format string expansion, used by
// the printf builtin and by the ${var@P} operator.
func Format(cfg *Config, format string, args []string) (string, int, error) {
	buf := cfg.strBuilder()
	esc := false
	var fmts []rune
	initialArgs := len(args)

	for _, c := range format {
		switch {
		case esc:
			esc = false
			switch c {
			case 'n':
				buf.WriteRune('\n')
			case 'r':
				buf.WriteRune('\r')
			case 't':
				buf.WriteRune('\t')
			case '\\':
				buf.WriteRune('\\')
			default:
				buf.WriteRune('\\')
				buf.WriteRune(c)
			}

		case len(fmts) > 0:
			switch c {
			case '%':
				buf.WriteByte('%')
				fmts = nil
			case 'c':
				var b byte
				if len(args) > 0 {
					arg := ""
					arg, args = args[0], args[1:]
					if len(arg) > 0 {
						b = arg[0]
					}
				}
				buf.WriteByte(b)
				fmts = nil
			case '+', '-', ' ':
				if len(fmts) > 1 {
					return "", 0, fmt.Errorf("invalid format char: %c", c)
				}
				fmts = append(fmts, c)
			case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
				fmts = append(fmts, c)
			case 's', 'd', 'i', 'u', 'o', 'x':
				arg := ""
				if len(args) > 0 {
					arg, args = args[0], args[1:]
				}
				var farg any = arg
				if c != 's' {
					n, _ := strconv.ParseInt(arg, 0, 0)
					if c == 'i' || c == 'd' {
						farg = int(n)
					} else {
						farg = uint(n)
					}
					if c == 'i' || c == 'u' {
						c = 'd'
					}
				}
				fmts = append(fmts, c)
				fmt.Fprintf(buf, string(fmts), farg)
				fmts = nil
			default:
				return "", 0, fmt.Errorf("invalid format char: %c", c)
			}
		case c == '\\':
			esc = true
		case args != nil && c == '%':
			// if args == nil, we are not doing format arguments
			fmts = []rune{c}
		default:
			buf.WriteRune(c)
		}
	}
	if len(fmts) > 0 {
		return "", 0, fmt.Errorf("missing format char")
	}
	return buf.String(), initialArgs - len(args), nil
}

func (cfg *Config) fieldJoin(parts []fieldPart) string {
	switch len(parts) {
	case 0:
		return ""
	case 1: // short-cut without a string copy
		return parts[0].val
	}
	buf := cfg.strBuilder()
	for _, part := range parts {
		buf.WriteString(part.val)
	}
	return buf.String()
}

func (cfg *Config) escapedGlobField(parts []fieldPart) (escaped string, glob bool) {
	buf := cfg.strBuilder()
	for _, part := range parts {
		if part.quote > quoteNone {
			buf.WriteString(syntax.QuotePattern(part.val))
			continue
		}
		buf.WriteString(part.val)
		if syntax.HasPattern(part.val) {
			glob = true
		}
	}
	if glob { // only copy the string if it will be used
		escaped = buf.String()
	}
	return escaped, glob
}

type fieldPart struct {
	val   string
	quote quoteLevel
}

type quoteLevel uint

const (
	quoteNone quoteLevel = iota
	quoteDouble
	quoteSingle
)

func (cfg *Config) wordField(ctx context.Context, wps []syntax.WordPart, ql quoteLevel) ([]fieldPart, error) {
	var field []fieldPart
	for i, wp := range wps {
		switch x := wp.(type) {
		case *syntax.Lit:
			s := x.Value
			if i == 0 {
				s = cfg.expandUser(s)
			}
			if ql == quoteDouble && strings.Contains(s, "\\") {
				buf := cfg.strBuilder()
				for i := 0; i < len(s); i++ {
					b := s[i]
					if b == '\\' && i+1 < len(s) {
						switch s[i+1] {
						case '\n': // remove \\\n
							i++
							continue
						case '"', '\\', '$', '`': // special chars
							continue
						}
					}
					buf.WriteByte(b)
				}
				s = buf.String()
			}
			field = append(field, fieldPart{val: s})
		case *syntax.SglQuoted:
			fp := fieldPart{quote: quoteSingle, val: x.Value}
			if x.Dollar {
				fp.val, _, _ = Format(cfg, fp.val, nil)
			}
			field = append(field, fp)
		case *syntax.DblQuoted:
			parts, err := cfg.wordField(ctx, x.Parts, quoteDouble)
			if err != nil {
				return nil, err
			}
			for _, part := range parts {
				part.quote = quoteDouble
				field = append(field, part)
			}
		case *syntax.ParamExp:
			str, err := cfg.paramExp(ctx, x)
			if err != nil {
				return nil, err
			}
			field = append(field, fieldPart{val: str})
		case *syntax.CmdSubst:
			str, err := cfg.cmdSubst(x)
			if err != nil {
				return nil, err
			}
			field = append(field, fieldPart{val: str})
		case *syntax.ArithmExp:
			n, err := Arithm(cfg, x.X)
			if err != nil {
				return nil, err
			}
			field = append(field, fieldPart{val: strconv.Itoa(n)})
		case *syntax.ProcSubst:
			path, err := cfg.ProcSubst(x)
			if err != nil {
				return nil, err
			}
			field = append(field, fieldPart{val: path})
		default:
			panic(fmt.Sprintf("unhandled word part: %T", x))
		}
	}
	return field, nil
}

func (cfg *Config) cmdSubst(cs *syntax.CmdSubst) (string, error) {
	buf := cfg.strBuilder()
	if err := cfg.CmdSubst(buf, cs); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func (cfg *Config) wordFields(ctx context.Context, wps []syntax.WordPart) ([][]fieldPart, error) {
	fields := cfg.fieldsAlloc[:0]
	curField := cfg.fieldAlloc[:0]
	allowEmpty := false
	flush := func() {
		if len(curField) == 0 {
			return
		}
		fields = append(fields, curField)
		curField = nil
	}
	splitAdd := func(val string) {
		for i, field := range strings.FieldsFunc(val, cfg.ifsRune) {
			if i > 0 {
				flush()
			}
			curField = append(curField, fieldPart{val: field})
		}
	}
	for i, wp := range wps {
		switch x := wp.(type) {
		case *syntax.Lit:
			s := x.Value
			if i == 0 {
				s = cfg.expandUser(s)
			}
			if strings.Contains(s, "\\") {
				buf := cfg.strBuilder()
				for i := 0; i < len(s); i++ {
					b := s[i]
					if b == '\\' {
						i++
						b = s[i]
					}
					buf.WriteByte(b)
				}
				s = buf.String()
			}
			curField = append(curField, fieldPart{val: s})
		case *syntax.SglQuoted:
			allowEmpty = true
			fp := fieldPart{quote: quoteSingle, val: x.Value}
			if x.Dollar {
				fp.val, _, _ = Format(cfg, fp.val, nil)
			}
			curField = append(curField, fp)
		case *syntax.DblQuoted:
			allowEmpty = true
			if len(x.Parts) == 1 {
				pe, _ := x.Parts[0].(*syntax.ParamExp)
				elems, err := cfg.quotedElems(pe)
				if err != nil {
					return nil, err
				}
				if elems != nil {
					for i, elem := range elems {
						if i > 0 {
							flush()
						}
						curField = append(curField, fieldPart{
							quote: quoteDouble,
							val:   elem,
						})
					}
					continue
				}
			}
			parts, err := cfg.wordField(ctx, x.Parts, quoteDouble)
			if err != nil {
				return nil, err
			}
			for _, part := range parts {
				part.quote = quoteDouble
				curField = append(curField, part)
			}
		case *syntax.ParamExp:
			str, err := cfg.paramExp(ctx, x)
			if err != nil {
				return nil, err
			}
			splitAdd(str)
		case *syntax.CmdSubst:
			str, err := cfg.cmdSubst(x)
			if err != nil {
				return nil, err
			}
			splitAdd(str)
		case *syntax.ArithmExp:
			n, err := Arithm(cfg, x.X)
			if err != nil {
				return nil, err
			}
			curField = append(curField, fieldPart{val: strconv.Itoa(n)})
		case *syntax.ProcSubst:
			path, err := cfg.ProcSubst(x)
			if err != nil {
				return nil, err
			}
			splitAdd(path)
		default:
			panic(fmt.Sprintf("unhandled word part: %T", x))
		}
	}
	flush()
	if allowEmpty && len(fields) == 0 {
		fields = append(fields, curField)
	}
	return fields, nil
}

// quotedElems checks if a parameter expansion is exactly ${@} or ${foo[@]}.
func (cfg *Config) quotedElems(pe *syntax.ParamExp) ([]string, error) {
	if pe == nil || pe.Length {
		return nil, nil
	}
	if pe.Param.Value == "@" {
		return cfg.Env.Get("@").List, nil
	}
	if pe.Ind == nil || anyOfLit(&pe.Ind.Word, "@") == "" {
		return nil, nil
	}
	vr := cfg.Env.Get(pe.Param.Value)
	if vr.Kind == Indexed {
		return vr.List, nil
	}
	return nil, nil
}

func (cfg *Config) expandUser(field string) string {
	if len(field) == 0 || field[0] != '~' {
		return field
	}
	name := field[1:]
	rest := ""
	if i := strings.Index(name, "/"); i >= 0 {
		rest = name[i:]
		name = name[:i]
	}
	if name == "" {
		return cfg.envGet("HOME") + rest
	}
	u, err := user.Lookup(name)
	if err != nil {
		return field
	}
	return u.HomeDir + rest
}

func findAllIndex(pattern, name string, n int) [][]int {
	expr, err := syntax.TranslatePattern(pattern, true)
	if err != nil {
		return nil
	}
	rx := regexp.MustCompile(expr)
	return rx.FindAllStringIndex(name, n)
}

func (cfg *Config) glob(pattern string) []string {
	parts := strings.Split(pattern, string(filepath.Separator))
	matches := []string{"."}
	if filepath.IsAbs(pattern) {
		if parts[0] == "" {
			// unix-like
			matches[0] = string(filepath.Separator)
		} else {
			// windows (for some reason it won't work without the
			// trailing separator)
			matches[0] = parts[0] + string(filepath.Separator)
		}
		parts = parts[1:]
	}
	rxFlags := ""
	if cfg.NoCaseGlob {
		rxFlags = "(?i)"
	}
	for _, part := range parts {
		if part == "**" && cfg.GlobStar {
			for i := range matches {
				// "a/**" should match "a/ a/b a/b/c ..."; note
				// how the zero-match case has a trailing
				// separator.
				matches[i] += string(filepath.Separator)
			}
			// expand all the possible levels of **
			latest := matches
			for {
				var newMatches []string
				for _, dir := range latest {
					newMatches = cfg.globDir(dir, regexp.MustCompile(rxFlags+".*"), newMatches)
				}
				if len(newMatches) == 0 {
					break
				}
				matches = append(matches, newMatches...)
				latest = newMatches
			}
			continue
		}
		expr, err := syntax.TranslatePattern(part, true)
		if err != nil {
			return nil
		}
		rx := regexp.MustCompile(rxFlags + "^" + expr + "$")
		var newMatches []string
		for _, dir := range matches {
			newMatches = cfg.globDir(dir, rx, newMatches)
		}
		matches = newMatches
	}
	return cfg.filterGlobIgnore(matches)
}

// filterGlobIgnore drops any match whose basename satisfies a pattern in
// $GLOBIGNORE, a colon-separated list of doublestar-syntax globs bash
// consults to exclude entries (dotfiles, build artifacts, etc.) from
// pathname expansion results.
func (cfg *Config) filterGlobIgnore(matches []string) []string {
	raw := cfg.Env.Get("GLOBIGNORE").String()
	if raw == "" {
		return matches
	}
	patterns := strings.Split(raw, ":")
	kept := matches[:0]
matchLoop:
	for _, m := range matches {
		base := filepath.Base(m)
		for _, pat := range patterns {
			if pat == "" {
				continue
			}
			if ok, err := doublestar.Match(pat, base); err == nil && ok {
				continue matchLoop
			}
		}
		kept = append(kept, m)
	}
	return kept
}

func (cfg *Config) globDir(dir string, rx *regexp.Regexp, matches []string) []string {
	entries, err := cfg.readDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if !strings.HasPrefix(rx.String(), `^\.`) && name[0] == '.' {
			continue
		}
		if rx.MatchString(name) {
			matches = append(matches, filepath.Join(dir, name))
		}
	}
	return matches
}

// ReadFields splits s the same way the read builtin does, honoring the
// current value of $IFS.
func ReadFields(cfg *Config, s string, n int, raw bool) []string {
	cfg.prepareIFS()
	type pos struct {
		start, end int
	}
	var fpos []pos

	runes := make([]rune, 0, len(s))
	infield := false
	esc := false
	for _, r := range s {
		if infield {
			if cfg.ifsRune(r) && (raw || !esc) {
				fpos[len(fpos)-1].end = len(runes)
				infield = false
			}
		} else {
			if !cfg.ifsRune(r) && (raw || !esc) {
				fpos = append(fpos, pos{start: len(runes), end: -1})
				infield = true
			}
		}
		if r == '\\' {
			if raw || esc {
				runes = append(runes, r)
			}
			esc = !esc
			continue
		}
		runes = append(runes, r)
		esc = false
	}
	if len(fpos) == 0 {
		return nil
	}
	if infield {
		fpos[len(fpos)-1].end = len(runes)
	}

	switch {
	case n == 1:
		// include heading/trailing IFSs
		fpos[0].start, fpos[0].end = 0, len(runes)
		fpos = fpos[:1]
	case n != -1 && n < len(fpos):
		// combine to max n fields
		fpos[n-1].end = fpos[len(fpos)-1].end
		fpos = fpos[:n]
	}

	fields := make([]string, len(fpos))
	for i, p := range fpos {
		fields[i] = string(runes[p.start:p.end])
	}
	return fields
}

// hasGlob reports whether path contains any unescaped glob metacharacters.
func hasGlob(path string) bool {
	magicChars := `*?[`
	if runtime.GOOS != "windows" {
		magicChars = `*?[\`
	}
	return strings.ContainsAny(path, magicChars)
}
