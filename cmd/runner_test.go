package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/shared"
	tu "github.com/desertthunder/marquee/internal/testing"
)

func quietLogger() *log.Logger {
	return shared.NewLogger(io.Discard)
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := quietLogger()
			output := &bytes.Buffer{}
			fetcher := &tu.MockFetcher{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				Fetcher:    fetcher,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.fetcher != fetcher {
				t.Error("expected fetcher to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Fatal("expected default config to be set")
			}
			if runner.config.Paging.PageSize != 10 {
				t.Errorf("expected default page size 10, got %d", runner.config.Paging.PageSize)
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("writePlainln surrounds with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlainln("done %d", 3); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "\ndone 3\n" {
				t.Errorf("expected %q, got %q", "\ndone 3\n", output.String())
			}
		})

		t.Run("writePlainHeader frames the title", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			runner.writePlainHeader("Genres")

			lines := strings.Split(strings.TrimSpace(output.String()), "\n")
			if len(lines) != 3 || lines[1] != "Genres" {
				t.Errorf("expected framed title, got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "movies", "genres", "tui", "serve", "db"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})

	t.Run("Bootstrap", func(t *testing.T) {
		t.Run("loads the config file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			tu.MustWriteFile(t, path, "[paging]\npage_size = 3\n\n[logging]\nlevel = \"debug\"\n")

			runner := NewRunner(RunnerOpts{Logger: quietLogger(), Output: &bytes.Buffer{}})
			if err := runApp(t, runner, "--config", path, "db", "status", "--db", tempDB(t)); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if runner.config.Paging.PageSize != 3 {
				t.Errorf("expected page size 3, got %d", runner.config.Paging.PageSize)
			}
			if runner.logger.GetLevel() != log.DebugLevel {
				t.Errorf("expected debug level, got %v", runner.logger.GetLevel())
			}
			if runner.configPath != path {
				t.Errorf("expected configPath %s, got %s", path, runner.configPath)
			}
		})

		t.Run("missing file keeps defaults", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Paging.PageSize = 7
			runner := NewRunner(RunnerOpts{Config: config, Logger: quietLogger(), Output: &bytes.Buffer{}})

			path := filepath.Join(t.TempDir(), "missing.toml")
			if err := runApp(t, runner, "--config", path, "db", "status", "--db", tempDB(t)); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.config.Paging.PageSize != 7 {
				t.Errorf("expected injected config to survive, got page size %d", runner.config.Paging.PageSize)
			}
		})

		t.Run("log level flag overrides config", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: quietLogger(), Output: &bytes.Buffer{}})

			path := filepath.Join(t.TempDir(), "missing.toml")
			if err := runApp(t, runner, "--config", path, "--log-level", "error", "db", "status", "--db", tempDB(t)); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.logger.GetLevel() != log.ErrorLevel {
				t.Errorf("expected error level, got %v", runner.logger.GetLevel())
			}
		})

		t.Run("rejects unknown log level", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: quietLogger(), Output: &bytes.Buffer{}})

			path := filepath.Join(t.TempDir(), "missing.toml")
			err := runApp(t, runner, "--config", path, "--log-level", "loud", "db", "status", "--db", tempDB(t))
			if !errors.Is(err, shared.ErrInvalidFlag) {
				t.Errorf("expected ErrInvalidFlag, got %v", err)
			}
		})

		t.Run("rejects invalid config", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			tu.MustWriteFile(t, path, "[paging]\npage_size = 0\n")

			runner := NewRunner(RunnerOpts{Logger: quietLogger(), Output: &bytes.Buffer{}})
			err := runApp(t, runner, "--config", path, "db", "status", "--db", tempDB(t))
			if !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})

	t.Run("SetLogger", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: quietLogger()})
		runner.logger.SetLevel(log.WarnLevel)

		replacement := quietLogger()
		runner.SetLogger(replacement)

		if runner.logger != replacement {
			t.Fatal("expected logger to be replaced")
		}
		if replacement.GetLevel() != log.WarnLevel {
			t.Errorf("expected level to carry over, got %v", replacement.GetLevel())
		}

		runner.SetLogger(nil)
		if runner.logger != replacement {
			t.Error("expected nil logger to be ignored")
		}
	})

	t.Run("catalogFetcher", func(t *testing.T) {
		t.Run("prefers injected fetcher", func(t *testing.T) {
			fetcher := &tu.MockFetcher{}
			runner := NewRunner(RunnerOpts{Fetcher: fetcher, Logger: quietLogger()})

			got, err := runner.catalogFetcher()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != fetcher {
				t.Error("expected injected fetcher")
			}
		})

		t.Run("builds HTTP client from config", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: quietLogger()})

			got, err := runner.catalogFetcher()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got == nil {
				t.Error("expected a catalog client")
			}
		})

		t.Run("invalid base url is unavailable", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.API.BaseURL = "ftp://example.com"
			runner := NewRunner(RunnerOpts{Config: config, Logger: quietLogger()})

			if _, err := runner.catalogFetcher(); !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})
	})
}

// runApp runs the full command tree with args, as main does.
func runApp(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	return newApp(r).Run(context.Background(), append([]string{"marquee"}, args...))
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "marquee.db")
}
