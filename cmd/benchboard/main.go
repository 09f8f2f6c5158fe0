package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0 // Command completed
	ExitCheckFailed = 1 // Empty leaderboard with --fail-empty, or invalid data files
	ExitError       = 2 // Configuration or runtime error
)

// EmptyLeaderboardError is returned by rank and aggregate with --fail-empty
// when no model could be ranked.
type EmptyLeaderboardError struct {
	Message string
}

func (e *EmptyLeaderboardError) Error() string {
	return e.Message
}

// InvalidDataError is returned by validate when files fail their schema.
type InvalidDataError struct {
	Files int
}

func (e *InvalidDataError) Error() string {
	return fmt.Sprintf("%d file(s) failed validation", e.Files)
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var empty *EmptyLeaderboardError
	var invalid *InvalidDataError
	if errors.As(err, &empty) || errors.As(err, &invalid) {
		return ExitCheckFailed
	}
	return ExitError
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
