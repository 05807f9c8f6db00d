//go:build unix

package prompthook

import (
	"os/exec"
	"syscall"
)

// detach puts the child in its own process group so signals sent to the
// hook's group do not reach it.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
