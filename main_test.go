package main

import (
	"path/filepath"
	"runtime/debug"
	"testing"

	"github.com/CrestNiraj12/terminalfeed/infra/config"
	"github.com/CrestNiraj12/terminalfeed/infra/position"
)

func TestParseCLIArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		mode cliMode
		msg  string
	}{
		{name: "run default", args: nil, mode: cliRun},
		{name: "version long", args: []string{"--version"}, mode: cliVersion},
		{name: "version short", args: []string{"-v"}, mode: cliVersion},
		{name: "version single-dash", args: []string{"-version"}, mode: cliVersion},
		{name: "help long", args: []string{"--help"}, mode: cliHelp},
		{name: "help short", args: []string{"-h"}, mode: cliHelp},
		{name: "help word", args: []string{"help"}, mode: cliHelp},
		{name: "invalid flag", args: []string{"--bogus"}, mode: cliInvalid, msg: "unexpected argument: --bogus"},
		{name: "invalid flags", args: []string{"--bogus", "--pogus"}, mode: cliInvalid, msg: "unexpected argument: --bogus --pogus"},
		{name: "too many args", args: []string{"--version", "extra"}, mode: cliVersion},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mode, msg := parseCLIArgs(tc.args)
			if mode != tc.mode {
				t.Fatalf("mode mismatch: got %v want %v", mode, tc.mode)
			}
			if tc.msg != "" && msg != tc.msg {
				t.Fatalf("msg mismatch: got %q want %q", msg, tc.msg)
			}
		})
	}
}

func TestResolveVersionInfo(t *testing.T) {
	settings := buildSettingsMap([]debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2026-01-01T00:00:00Z"},
	})

	v, c, d := resolveVersionInfo("dev", "none", "unknown", "v1.2.3", settings)
	if v != "v1.2.3" || c != "0123456789ab" || d != "2026-01-01T00:00:00Z" {
		t.Fatalf("unexpected resolution: %s %s %s", v, c, d)
	}

	v, c, d = resolveVersionInfo("v9", "abc", "today", "(devel)", settings)
	if v != "v9" || c != "abc" || d != "today" {
		t.Fatalf("explicit values must win: %s %s %s", v, c, d)
	}
}

func TestOpenBackend_SQLite(t *testing.T) {
	b, err := openBackend(config.Config{
		PositionBackend: config.BackendSQLite,
		DBPath:          filepath.Join(t.TempDir(), "positions.db"),
	})
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	defer b.Close()
	if _, ok := b.(*position.SQLite); !ok {
		t.Fatalf("expected sqlite backend, got %T", b)
	}

	if _, err := openBackend(config.Config{PositionBackend: "redis"}); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}
