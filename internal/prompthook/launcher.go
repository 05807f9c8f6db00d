package prompthook

import (
	"fmt"
	"os/exec"

	"github.com/google/shlex"
)

// Starter launches the richer-title process for a prompt
type Starter interface {
	Start(message string) error
}

// Launcher starts a detached command with the prompt appended as its last
// argument. The process is never waited on and its result is never
// observed; it may outlive the hook.
type Launcher struct {
	command string
}

// NewLauncher creates a launcher for command, a shell-style command line
func NewLauncher(command string) *Launcher {
	return &Launcher{command: command}
}

// Start splits the command line, starts the process with all standard
// streams discarded and releases it.
func (l *Launcher) Start(message string) error {
	args, err := shlex.Split(l.command)
	if err != nil {
		return fmt.Errorf("failed to parse title command: %w", err)
	}
	if len(args) == 0 {
		return fmt.Errorf("title command is empty")
	}

	// Not CommandContext: the process must survive the hook's context
	cmd := exec.Command(args[0], append(args[1:], message)...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start title command: %w", err)
	}
	return cmd.Process.Release()
}
