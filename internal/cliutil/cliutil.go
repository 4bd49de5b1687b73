package cliutil

import "os"

// IsTty reports whether the file is attached to a terminal, so commands
// can refuse to sit waiting on an interactive stdin.
func IsTty(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
