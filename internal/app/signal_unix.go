//go:build !windows

package app

import (
	"os"
	"syscall"
)

// toggleSignals lists the OS signals that toggle recording. Hotkey daemons
// send SIGUSR1 to drive the app without a terminal attached.
func toggleSignals() []os.Signal {
	return []os.Signal{syscall.SIGUSR1}
}
