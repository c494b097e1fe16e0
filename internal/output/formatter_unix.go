//go:build !windows

package output

import "os"

// enableANSI reports whether the terminal understands escape sequences.
// Unix terminals do unless TERM says otherwise.
func enableANSI() bool {
	return os.Getenv("TERM") != "dumb"
}
