package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	f "github.com/multimediallc/movie-awards/pkg/functional"
)

// Row is one catalogue line
type Row struct {
	Year      int
	Title     string
	Studios   string
	Producers []string
	Winner    bool
}

// UniqueProducers returns the row's producer names with repeats dropped, keeping first-seen order
func (r Row) UniqueProducers() []string {
	return f.RemoveDuplicates(slices.Clone(r.Producers))
}

type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var ErrMissingColumn = errors.New("missing required column")

var requiredColumns = []string{"year", "title", "producers"}

var producerSeparator = regexp.MustCompile(`,| and `)

// SplitProducers splits a producer credit such as "A, B and C" into distinct trimmed names
func SplitProducers(credit string) []string {
	names := f.Map(producerSeparator.Split(credit, -1), strings.TrimSpace)
	return f.RemoveDuplicates(f.Filtered(names, func(name string) bool { return name != "" }))
}

// Parse reads a delimited catalogue with a header line. Columns are matched by name,
// case-insensitively, and may appear in any order.
func Parse(r io.Reader, sep rune) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return []Row{}, nil
	}
	if err != nil {
		var csvErr *csv.ParseError
		if errors.As(err, &csvErr) {
			return nil, &ParseError{Line: csvErr.Line, Err: csvErr.Err}
		}
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, &ParseError{Line: 1, Err: fmt.Errorf("%w %q", ErrMissingColumn, required)}
		}
	}

	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rows := make([]Row, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				return nil, &ParseError{Line: csvErr.Line, Err: csvErr.Err}
			}
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}

		year, err := strconv.Atoi(field(record, "year"))
		if err != nil || year <= 0 {
			return nil, &ParseError{Line: line, Err: fmt.Errorf("invalid year %q", field(record, "year"))}
		}
		rows = append(rows, Row{
			Year:      year,
			Title:     field(record, "title"),
			Studios:   field(record, "studios"),
			Producers: SplitProducers(field(record, "producers")),
			Winner:    strings.EqualFold(field(record, "winner"), "yes"),
		})
	}
	return rows, nil
}
