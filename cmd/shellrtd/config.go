// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ErrConfigNotFound is returned by [LoadConfig] when the given path does
// not exist, so callers can fall back to [DefaultConfig] instead of
// treating a missing optional file as fatal.
var ErrConfigNotFound = errors.New("shellrtd: config file not found")

// SessionConfig holds the session defaults shellrtd seeds into a fresh
// [interp.Runner] before running a script, loaded from an optional TOML
// file. No field here changes interpreter semantics silently: it only
// seeds Runner state (Env, options) that is already public in the
// interpreter package.
type SessionConfig struct {
	// IFS overrides the initial word-splitting separator, "$IFS".
	IFS string `toml:"ifs"`
	// HistSize and HistFileSize seed HISTSIZE/HISTFILESIZE.
	HistSize     int `toml:"hist_size"`
	HistFileSize int `toml:"hist_file_size"`
	// Builtins, if non-empty, is the set of builtin names a session may
	// call; any other builtin invocation is rejected before it runs.
	// Empty means every builtin the interpreter implements is available.
	Builtins []string `toml:"builtins"`
	// InteropNamespaces, if non-empty, restricts which RegisterInterop
	// namespaces shellrtd itself wires up at startup.
	InteropNamespaces []string `toml:"interop_namespaces"`
}

// DefaultConfig returns the session defaults used when no config file is
// given or found.
func DefaultConfig() *SessionConfig {
	return &SessionConfig{
		HistSize:     500,
		HistFileSize: 500,
	}
}

// LoadConfig reads and parses a TOML session-defaults file.
func LoadConfig(path string) (*SessionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// allows reports whether name is permitted by the config's builtin
// allowlist. An empty allowlist permits everything.
func (cfg *SessionConfig) allows(name string) bool {
	if len(cfg.Builtins) == 0 {
		return true
	}
	for _, b := range cfg.Builtins {
		if b == name {
			return true
		}
	}
	return false
}
