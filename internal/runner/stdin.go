package runner

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// startStdinStop reads single keypresses from stdin and stops the session
// on 's', 'q' or Esc. It returns a cleanup function that restores the
// terminal state. If stdin is not a terminal, nothing is started.
func startStdinStop(sess *Session, quiet bool) (cleanup func()) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return func() {}
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		if !quiet {
			fmt.Fprintf(os.Stderr, "[!] Could not enable raw terminal: %v\n", err)
		}
		return func() {}
	}

	// MakeRaw disables OPOST which stops \n → \r\n translation, causing
	// cursor alignment issues. Re-enable it since we only need raw input.
	fixOutputProcessing(fd)

	if !quiet {
		fmt.Fprintf(os.Stderr, "[*] Press 's' to stop the scan\n")
	}

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 0 {
				continue
			}

			switch buf[0] {
			case 0x03:
				// Ctrl+C: restore terminal and re-send SIGINT so the
				// signal handler fires normally.
				_ = term.Restore(fd, oldState)
				sendInterrupt()
				return
			case 's', 'S', 'q', 'Q', 0x1b:
				if sess.Running() {
					sess.Stop()
				}
			}
		}
	}()

	return func() { _ = term.Restore(fd, oldState) }
}
