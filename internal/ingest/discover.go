package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/boyter/gocodewalker"
)

// Discover walks root and returns the catalogue files whose root-relative path
// matches any of the doublestar patterns, sorted. Ignore files under root are honoured.
func Discover(root string, patterns []string) ([]string, error) {
	if rootStat, err := os.Stat(root); err != nil || !rootStat.IsDir() {
		return nil, fmt.Errorf("import root is not a directory: %s", root)
	}
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid import pattern: %s", pattern)
		}
	}

	fileListQueue := make(chan *gocodewalker.File, 100)

	walker := gocodewalker.NewFileWalker(root, fileListQueue)
	walker.IncludeHidden = true
	walker.ExcludeDirectory = []string{".git"}
	walker.AllowListExtensions = []string{"csv"}

	errChan := make(chan error, 1)

	go func() {
		errChan <- walker.Start()
		close(errChan)
	}()

	files := make([]string, 0)
	for file := range fileListQueue {
		rel, err := filepath.Rel(root, file.Location)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if slices.ContainsFunc(patterns, func(pattern string) bool {
			match, _ := doublestar.Match(pattern, rel)
			return match
		}) {
			files = append(files, file.Location)
		}
	}

	if err := <-errChan; err != nil {
		return nil, fmt.Errorf("error walking import root: %w", err)
	}

	slices.Sort(files)
	return files, nil
}

// ReadFiles parses every file and concatenates the rows in file order
func ReadFiles(paths []string, sep rune) ([]Row, error) {
	rows := make([]Row, 0)
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		fileRows, err := ReadFrom(path, file, sep)
		_ = file.Close()
		if err != nil {
			return nil, err
		}
		rows = append(rows, fileRows...)
	}
	return rows, nil
}

// ReadFrom parses r, attributing parse errors to name
func ReadFrom(name string, r io.Reader, sep rune) ([]Row, error) {
	rows, err := Parse(r, sep)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.File = name
			return nil, pe
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return rows, nil
}
