//go:build !unix

package prompthook

import "os/exec"

func detach(cmd *exec.Cmd) {}
