//go:build !windows

package runner

import "syscall"

// sendInterrupt delivers SIGINT to this process so a Ctrl+C typed while
// stdin is in raw mode reaches handleSignals.
func sendInterrupt() {
	_ = syscall.Kill(syscall.Getpid(), syscall.SIGINT)
}
