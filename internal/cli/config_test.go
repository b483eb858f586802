package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/yildizm/LogPanel/internal/emoji"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	oldCfgFile, oldOutputFmt := cfgFile, outputFmt
	defer func() {
		cfgFile, outputFmt = oldCfgFile, oldOutputFmt
		globalConfig = nil
		emoji.SetEmojiDisabled(false)
	}()

	root := NewRootCommand("dev", "none", "unknown")
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append([]string{"--no-emoji"}, args...))

	err := root.Execute()
	return buf.String(), err
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "full config",
			args:     []string{"config", "init", "--output", filepath.Join(dir, "full.yaml")},
			expected: "# LogPanel configuration",
		},
		{
			name:     "minimal config",
			args:     []string{"config", "init", "--minimal", "--output", filepath.Join(dir, "minimal.yaml")},
			expected: "dedup_strategy: none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(t, tt.args...)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !strings.Contains(out, "Configuration file created at") {
				t.Errorf("Expected creation message, got %q", out)
			}

			data, err := os.ReadFile(tt.args[len(tt.args)-1])
			if err != nil {
				t.Fatalf("Failed to read created config: %v", err)
			}
			if !strings.Contains(string(data), tt.expected) {
				t.Errorf("Expected config to contain %q\n%s", tt.expected, data)
			}
		})
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if _, err := executeCommand(t, "config", "init", "--output", path); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := executeCommand(t, "config", "init", "--output", path); err == nil {
		t.Error("Expected error when the config exists")
	}
	if _, err := executeCommand(t, "config", "init", "--output", path, "--force"); err != nil {
		t.Errorf("Expected --force to overwrite, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.yaml")
	invalid := filepath.Join(dir, "invalid.yaml")
	writeTestFile(t, valid, "panel:\n  dedup_strategy: numbers\n  preview_limit: 20\n")
	writeTestFile(t, invalid, "panel:\n  dedup_strategy: fuzzy\n")

	out, err := executeCommand(t, "--config", valid, "config", "validate")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, expected := range []string{"Configuration is valid", "Dedup Strategy: numbers", "Preview Limit: 20 rows"} {
		if !strings.Contains(out, expected) {
			t.Errorf("Expected output to contain %q\n%s", expected, out)
		}
	}

	out, err = executeCommand(t, "--config", invalid, "config", "validate")
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(out, "Configuration validation failed") {
		t.Errorf("Expected failure message, got %q", out)
	}
}

func TestConfigShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeTestFile(t, path, "panel:\n  preview_limit: 42\n")

	tests := []struct {
		format   string
		expected string
		wantErr  bool
	}{
		{"yaml", "preview_limit: 42", false},
		{"json", `"preview_limit": 42`, false},
		{"toml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := executeCommand(t, "--config", path, "config", "show", "--format", tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if !tt.wantErr && !strings.Contains(out, tt.expected) {
				t.Errorf("Expected output to contain %q\n%s", tt.expected, out)
			}
		})
	}
}

func TestConfigPath(t *testing.T) {
	out, err := executeCommand(t, "config", "path")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, expected := range []string{".logpanel.yaml", "Priority: Highest", "LOGPANEL_"} {
		if !strings.Contains(out, expected) {
			t.Errorf("Expected output to contain %q\n%s", expected, out)
		}
	}
}

func TestSkipsConfig(t *testing.T) {
	root := NewRootCommand("dev", "none", "unknown")

	var validate, view *cobra.Command
	for _, cmd := range root.Commands() {
		switch cmd.Name() {
		case "config":
			for _, sub := range cmd.Commands() {
				if sub.Name() == "validate" {
					validate = sub
				}
			}
		case "view":
			view = cmd
		}
	}
	if validate == nil || view == nil {
		t.Fatal("Expected config validate and view commands")
	}

	if !skipsConfig(validate) {
		t.Error("Expected config subcommands to load configuration themselves")
	}
	if skipsConfig(view) {
		t.Error("Expected view to require a valid configuration")
	}
}

func TestInvalidConfigFailsView(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeTestFile(t, path, "input:\n  format: xml\n")

	if _, err := executeCommand(t, "--config", path, "view", "--no-tui"); err == nil {
		t.Error("Expected view to fail with an invalid configuration")
	}
}
