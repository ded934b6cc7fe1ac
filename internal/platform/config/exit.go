package config

import (
	"fmt"
	"os"
)

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	ExitCodef(1, format, args...)
}

// ExitCodef writes a formatted error message to stderr and exits with code.
// Codes below 1 are raised to 1 so a failure never reads as success.
func ExitCodef(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	if code < 1 {
		code = 1
	}
	os.Exit(code)
}
