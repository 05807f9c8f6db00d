package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Client provides the git operations used by the documentation updater
type Client interface {
	// TopLevel returns the absolute path of the working tree root
	TopLevel(ctx context.Context) (string, error)
	// StagedFiles lists staged paths relative to the working tree root,
	// excluding deletions
	StagedFiles(ctx context.Context) ([]string, error)
	// Add stages the given paths. It never commits.
	Add(ctx context.Context, paths ...string) error
}

// ShellClient implements Client by shelling out to the git command
type ShellClient struct {
	dir string
}

// NewShellClient creates a git client operating on the repository that
// contains dir. An empty dir means the current working directory.
func NewShellClient(dir string) *ShellClient {
	return &ShellClient{dir: dir}
}

// TopLevel runs git rev-parse --show-toplevel
func (c *ShellClient) TopLevel(ctx context.Context) (string, error) {
	output, err := c.output(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("git rev-parse failed: %w", err)
	}
	return strings.TrimSpace(output), nil
}

// StagedFiles runs git diff --cached with NUL separated output so paths with
// unusual characters are returned verbatim.
func (c *ShellClient) StagedFiles(ctx context.Context) ([]string, error) {
	output, err := c.output(ctx, "diff", "--cached", "--name-only", "--diff-filter=d", "-z")
	if err != nil {
		return nil, fmt.Errorf("git diff --cached failed: %w", err)
	}

	var files []string
	for _, name := range strings.Split(output, "\x00") {
		if name != "" {
			files = append(files, name)
		}
	}
	return files, nil
}

// Add runs git add for paths. Paths are passed after "--" so none of them
// can be mistaken for a flag.
func (c *ShellClient) Add(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, paths...)
	if err := c.runCommand(c.command(ctx, args...)); err != nil {
		return fmt.Errorf("git add failed: %w", err)
	}
	return nil
}

func (c *ShellClient) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "git", args...)
	if c.dir != "" {
		cmd.Args = insertGitFlags(cmd.Args, "-C", c.dir)
	}
	return cmd
}

func (c *ShellClient) output(ctx context.Context, args ...string) (string, error) {
	cmd := c.command(ctx, args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}

// insertGitFlags inserts flags immediately after the "git" command name,
// before the subcommand (e.g. "diff", "add").
func insertGitFlags(args []string, flags ...string) []string {
	if len(args) == 0 {
		return flags
	}
	result := make([]string, 0, len(args)+len(flags))
	result = append(result, args[0])
	result = append(result, flags...)
	result = append(result, args[1:]...)
	return result
}

// runCommand executes a command and returns an error with its output on failure
func (c *ShellClient) runCommand(cmd *exec.Cmd) error {
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
