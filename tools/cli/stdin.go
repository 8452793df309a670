package main

import (
	"fmt"
	"os"

	"github.com/multimediallc/movie-awards/internal/ingest"
)

const stdinName = "<stdin>"

// isStdinPiped checks if stdin is being piped to the program
func isStdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin parses a catalogue piped on stdin
func readStdin(sep rune) ([]ingest.Row, error) {
	rows, err := ingest.ReadFrom(stdinName, os.Stdin, sep)
	if err != nil {
		return nil, fmt.Errorf("error reading from stdin: %w", err)
	}
	return rows, nil
}
