//go:build windows

package runner

import "syscall"

var procGenerateConsoleCtrlEvent = syscall.NewLazyDLL("kernel32.dll").NewProc("GenerateConsoleCtrlEvent")

// sendInterrupt raises CTRL_C_EVENT for the console process group, which
// os/signal reports as os.Interrupt.
func sendInterrupt() {
	const ctrlCEvent = 0
	_, _, _ = procGenerateConsoleCtrlEvent.Call(ctrlCEvent, 0)
}
