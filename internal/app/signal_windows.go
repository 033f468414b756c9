//go:build windows

package app

import "os"

// toggleSignals lists the OS signals that toggle recording. Windows has no
// user signals, so recording toggles through stdin only.
func toggleSignals() []os.Signal {
	return nil
}
