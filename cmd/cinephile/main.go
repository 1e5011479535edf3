package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cinephile/internal/services"
)

const (
	exitFailure = 1
	exitFatal   = 2
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "cinephile:", err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps missing resources and unusable configuration to exitFatal so
// scripts can tell "run prep first" apart from ordinary failures.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case services.IsFatal(err):
		return exitFatal
	default:
		return exitFailure
	}
}
