// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// shellrtd is a small demo driver showing how a host process embeds the
// interpreter as a session: it loads optional session defaults from TOML,
// wires a single demo interop namespace, runs a script through
// [interp.Session], and logs lifecycle events with zerolog.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/shellrt/shellrt/expand"
	"github.com/shellrt/shellrt/interp"
	"github.com/shellrt/shellrt/syntax"
)

var (
	configPath = flag.String("config", "", "path to a session-defaults TOML file (optional)")
	command    = flag.String("c", "", "command to be executed")
)

func main() {
	flag.Parse()

	noColor := !term.IsTerminal(int(os.Stderr.Fd()))
	color.NoColor = noColor
	errColor := color.New(color.FgRed)

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: noColor, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	if err := run(&log); err != nil {
		var es interp.ExitStatus
		if errors.As(err, &es) {
			os.Exit(int(es))
		}
		errColor.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(log *zerolog.Logger) error {
	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfig(*configPath)
		if err != nil && !errors.Is(err, ErrConfigNotFound) {
			return err
		} else if err == nil {
			cfg = loaded
		}
		log.Info().Str("path", *configPath).Bool("found", err == nil).Msg("session config loaded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var prog syntax.Node
	var err error
	var params []string
	switch {
	case *command != "":
		prog, err = syntax.NewParser().Parse(strings.NewReader(*command), "")
		params = flag.Args()
	case flag.NArg() > 0:
		path := flag.Arg(0)
		f, ferr := os.Open(path)
		if ferr != nil {
			return ferr
		}
		defer f.Close()
		prog, err = syntax.NewParser().Parse(f, path)
		params = flag.Args()[1:]
	default:
		prog, err = syntax.NewParser().Parse(os.Stdin, "")
	}
	if err != nil {
		return err
	}

	sess, err := newSession(cfg, params)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	log.Info().Str("session_id", sess.ID.String()).Msg("session started")

	resCh := sess.RunAsync(ctx, prog)
	res := <-resCh

	os.Stdout.WriteString(sess.Stdout())
	os.Stderr.WriteString(sess.Stderr())

	var code uint8
	var es interp.ExitStatus
	if errors.As(res.Err, &es) {
		code = uint8(es)
	}
	log.Info().Str("session_id", sess.ID.String()).Uint8("exit_code", code).Msg("session finished")

	return res.Err
}

// newSession builds a [interp.Session] seeded from cfg, enforcing the
// builtin allowlist (if any) via a call handler and registering the demo
// "demo.greet" interop function when its namespace is allowed.
func newSession(cfg *SessionConfig, params []string) (*interp.Session, error) {
	opts := []interp.RunnerOption{interp.Params(params...)}
	if len(cfg.Builtins) > 0 {
		opts = append(opts, interp.CallHandler(func(ctx context.Context, args []string) ([]string, error) {
			if len(args) > 0 && interp.IsBuiltin(args[0]) && !cfg.allows(args[0]) {
				return args, fmt.Errorf("shellrtd: builtin %q is disabled by session config", args[0])
			}
			return args, nil
		}))
	}

	sess, err := interp.NewSession(opts...)
	if err != nil {
		return nil, err
	}

	// Reset first, so the defaults below land on top of the interpreter's
	// own bootstrap (which would otherwise overwrite them on first Run).
	sess.Runner.Reset()

	if cfg.IFS != "" {
		sess.Runner.Vars["IFS"] = expand.Variable{Set: true, Kind: expand.String, Str: cfg.IFS}
	}
	if cfg.HistSize > 0 {
		sess.Runner.Vars["HISTSIZE"] = expand.Variable{Set: true, Kind: expand.String, Str: strconv.Itoa(cfg.HistSize)}
	}
	if cfg.HistFileSize > 0 {
		sess.Runner.Vars["HISTFILESIZE"] = expand.Variable{Set: true, Kind: expand.String, Str: strconv.Itoa(cfg.HistFileSize)}
	}

	if namespaceAllowed("demo", cfg.InteropNamespaces) {
		sess.Runner.RegisterInterop("demo", "greet", demoGreet)
	}

	return sess, nil
}

func namespaceAllowed(namespace string, allowlist []string) bool {
	if len(allowlist) == 0 {
		return true
	}
	for _, ns := range allowlist {
		if ns == namespace {
			return true
		}
	}
	return false
}

// demoGreet is a minimal interop function, exercising the calling
// convention a host would use to expose its own functionality to scripts
// as "demo.greet arg1 arg2" instead of an external command.
func demoGreet(ctx context.Context, io interp.InteropIO, args []string) interp.InteropResult {
	name := "world"
	if len(args) > 0 {
		name = args[0]
	}
	fmt.Fprintf(ioWriter{io}, "hello, %s!\n", name)
	return interp.InteropOK()
}

// ioWriter adapts InteropIO's stdout write method to io.Writer, so it can
// be used with fmt.Fprintf.
type ioWriter struct{ io interp.InteropIO }

func (w ioWriter) Write(p []byte) (int, error) { return w.io.WriteStdout(p) }
