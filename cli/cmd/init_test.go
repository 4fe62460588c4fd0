package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// initCLI adds global flags for the init command to record.
type initCLI struct {
	LogLevel string   `default:"warn" name:"log-level"`
	Tags     []string `name:"tags"`
	Init     Init     `cmd:""`
}

func TestInit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	run := func(args ...string) error {
		t.Helper()

		var cli initCLI

		parser, err := kong.New(&cli,
			kong.Exit(func(int) {}),
			kong.Vars{ConfigIdentifier: path},
		)
		if err != nil {
			t.Fatal(err)
		}

		ktx, err := parser.Parse(args)
		if err != nil {
			t.Fatal(err)
		}

		return cli.Init.Run(WithContext(t.Context(), ktx))
	}

	if err := run("--log-level", "debug", "--tags", "a,b", "init"); err != nil {
		t.Fatalf("init error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}

	if got["log-level"] != "debug" {
		t.Errorf("log-level = %v in %q", got["log-level"], data)
	}

	if _, ok := got["help"]; ok {
		t.Errorf("help flag written: %q", data)
	}

	if !strings.Contains(string(data), "- a") {
		t.Errorf("tags missing: %q", data)
	}

	if err := run("init"); !errors.Is(err, ErrWriteConfig) || !errors.Is(err, ErrFileExists) {
		t.Errorf("second init error = %v, want ErrFileExists", err)
	}

	if err := run("--log-level", "error", "init", "--force"); err != nil {
		t.Errorf("forced init error = %v", err)
	}
}

func TestConfigValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want any
	}{
		{nil, nil},
		{"", nil},
		{"x", "x"},
		{[]string{}, nil},
		{3, 3},
		{true, true},
	}

	for _, tt := range tests {
		if got := configValue(tt.in); got != tt.want {
			t.Errorf("configValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
