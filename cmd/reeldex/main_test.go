package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCommandSubcommands(t *testing.T) {
	root := newRootCommand()
	expected := []string{"scan", "movies", "verify", "sync", "history", "status", "doctor", "config"}
	for _, name := range expected {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected %q subcommand", name)
		}
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	cmd := newConfigInitCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	if err := cmd.Flags().Set("path", target); err != nil {
		t.Fatalf("set path flag: %v", err)
	}
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "library_dir") {
		t.Fatalf("expected sample config content, got %q", string(data))
	}
	if !strings.Contains(out.String(), target) {
		t.Fatalf("expected confirmation output, got %q", out.String())
	}

	// A second init without --overwrite refuses to clobber the file.
	again := newConfigInitCommand()
	if err := again.Flags().Set("path", target); err != nil {
		t.Fatalf("set path flag: %v", err)
	}
	if err := again.Execute(); err == nil {
		t.Fatal("expected error on existing config")
	}
}

func TestRenderTableAlignsColumns(t *testing.T) {
	rendered := renderTable(
		[]tableColumn{{name: "Name"}, {name: "Count", numeric: true}},
		[][]string{{"alpha", "1"}, {"beta", "22"}},
	)
	if !strings.Contains(rendered, "alpha") || !strings.Contains(rendered, "22") {
		t.Fatalf("unexpected table output:\n%s", rendered)
	}
	if renderTable(nil, nil) != "" {
		t.Fatal("expected empty output for no columns")
	}
}

func TestDisplayTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"The Matrix", "The Matrix"},
		{"BLADE RUNNER", "Blade Runner"},
		{"blade.runner.2049", "Blade Runner 2049"},
		{"Amélie", "Amélie"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := displayTitle(tc.in); got != tc.want {
			t.Fatalf("displayTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWorkersLabel(t *testing.T) {
	if got := workersLabel(0); got != "auto (half of CPUs)" {
		t.Fatalf("unexpected auto label %q", got)
	}
	if got := workersLabel(4); got != "4" {
		t.Fatalf("unexpected label %q", got)
	}
}
