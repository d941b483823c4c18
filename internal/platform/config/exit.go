package config

import (
	"fmt"
	"io"
	"os"
)

// Exitf writes a formatted error message to stderr and exits with code 1.
// It provides a consistent fatal-exit pattern for CLI entry points.
func Exitf(format string, args ...any) {
	ExitCodef(1, format, args...)
}

// ExitCodef writes a formatted error message to stderr and exits with code.
// Codes below 1 are raised to 1 so fatal paths never report success.
func ExitCodef(code int, format string, args ...any) {
	writeExitMessage(os.Stderr, format, args...)
	if code < 1 {
		code = 1
	}
	os.Exit(code)
}

func writeExitMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}
