//go:build integration

package tier1

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/schaermu/paihooks/internal/testutil"
)

const defaultTimeout = 2 * time.Minute

// Harness builds the paihooks binary once and runs it against an isolated
// base directory, the way the assistant host or git would invoke it.
type Harness struct {
	t       *testing.T
	binPath string
	baseDir string
	env     []string
}

// NewHarness creates a harness with a fresh base directory. The process
// environment is reduced to PATH plus what the test sets.
func NewHarness(t *testing.T) *Harness {
	t.Helper()
	home := t.TempDir()
	baseDir := filepath.Join(home, ".claude")
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatalf("create base dir: %v", err)
	}
	return &Harness{
		t:       t,
		baseDir: baseDir,
		env: []string{
			"PATH=" + os.Getenv("PATH"),
			"HOME=" + home,
			"PAI_DIR=" + baseDir,
		},
	}
}

// BaseDir returns the directory used as PAI_DIR
func (h *Harness) BaseDir() string {
	return h.baseDir
}

// Setenv adds or replaces a variable in the binary's environment
func (h *Harness) Setenv(key, value string) {
	prefix := key + "="
	for i, kv := range h.env {
		if strings.HasPrefix(kv, prefix) {
			h.env[i] = prefix + value
			return
		}
	}
	h.env = append(h.env, prefix+value)
}

// BuildBinary compiles cmd/paihooks into a temp directory
func (h *Harness) BuildBinary(ctx context.Context) error {
	h.t.Helper()

	projectRoot, err := testutil.FindProjectRoot()
	if err != nil {
		return fmt.Errorf("get project root: %w", err)
	}

	h.binPath = filepath.Join(h.t.TempDir(), "paihooks")
	h.t.Logf("Building %s", h.binPath)

	cmd := exec.CommandContext(ctx, "go", "build", "-o", h.binPath, "./cmd/paihooks")
	cmd.Dir = projectRoot
	cmd.Stdout = &testWriter{t: h.t, prefix: "[build] "}
	cmd.Stderr = &testWriter{t: h.t, prefix: "[build] "}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	return nil
}

// Result is the outcome of one binary invocation
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes the binary in dir with stdin as its input
func (h *Harness) Run(ctx context.Context, dir, stdin string, args ...string) (Result, error) {
	h.t.Helper()
	if h.binPath == "" {
		return Result{}, fmt.Errorf("binary not built")
	}

	cmd := exec.CommandContext(ctx, h.binPath, args...)
	cmd.Dir = dir
	cmd.Env = h.env
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.MultiWriter(&stderr, &testWriter{t: h.t, prefix: "[" + args[0] + "] "})

	res := Result{}
	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	case err != nil:
		return Result{}, fmt.Errorf("exec failed: %w", err)
	}

	res.Stdout, res.Stderr = stdout.String(), stderr.String()
	return res, nil
}

// MustRun executes the binary and fails the test on a non-zero exit
func (h *Harness) MustRun(ctx context.Context, dir, stdin string, args ...string) Result {
	h.t.Helper()
	res, err := h.Run(ctx, dir, stdin, args...)
	if err != nil {
		h.t.Fatalf("run failed: %v", err)
	}
	if res.ExitCode != 0 {
		h.t.Fatalf("command failed with exit code %d\nstdout: %s\nstderr: %s\nargs: %v",
			res.ExitCode, res.Stdout, res.Stderr, args)
	}
	return res
}

// WriteFile writes a file relative to the base directory
func (h *Harness) WriteFile(rel, content string) {
	h.t.Helper()
	path := filepath.Join(h.baseDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		h.t.Fatalf("mkdir parent: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		h.t.Fatalf("write file: %v", err)
	}
}

// ReadFile reads a file relative to the base directory
func (h *Harness) ReadFile(rel string) string {
	h.t.Helper()
	data, err := os.ReadFile(filepath.Join(h.baseDir, rel))
	if err != nil {
		h.t.Fatalf("read file: %v", err)
	}
	return string(data)
}

// testWriter wraps test logging for command output
type testWriter struct {
	t      *testing.T
	prefix string
}

func (w *testWriter) Write(p []byte) (n int, err error) {
	lines := strings.Split(string(p), "\n")
	for _, line := range lines {
		if line != "" {
			w.t.Log(w.prefix + line)
		}
	}
	return len(p), nil
}

var _ io.Writer = (*testWriter)(nil)
