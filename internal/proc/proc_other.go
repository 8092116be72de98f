//go:build !unix

package proc

import "os/exec"

// configure keeps exec's default cancellation, which kills the process itself.
func configure(*exec.Cmd) {}
