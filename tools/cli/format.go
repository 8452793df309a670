package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/multimediallc/movie-awards/pkg/awards"
	f "github.com/multimediallc/movie-awards/pkg/functional"
)

type OutputFormat string

const (
	FormatDefault OutputFormat = "default"
	FormatOneLine OutputFormat = "one-line"
	FormatJSON    OutputFormat = "json"
)

var allowedFormats = []string{string(FormatDefault), string(FormatOneLine), string(FormatJSON)}

func validateFormat(format string) (OutputFormat, error) {
	if !slices.Contains(allowedFormats, format) {
		return "", fmt.Errorf("invalid format %s. Must be one of %s", format, strings.Join(allowedFormats, ", "))
	}
	return OutputFormat(format), nil
}

func years(n int) string {
	if n == 1 {
		return "1 year"
	}
	return fmt.Sprintf("%d years", n)
}

func intervalString(pi awards.ProducerInterval) string {
	return fmt.Sprintf("%s: %s (%d -> %d)", pi.Producer, years(pi.Interval), pi.PreviousWin, pi.FollowingWin)
}

func writeReport(w io.Writer, report awards.ProducerIntervalReport, format OutputFormat) error {
	switch format {
	case FormatJSON:
		jsonString, err := json.Marshal(report)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(jsonString))
		return err
	case FormatOneLine:
		_, err := fmt.Fprintf(w, "min: %s; max: %s\n",
			strings.Join(f.Map(report.Min, intervalString), ", "),
			strings.Join(f.Map(report.Max, intervalString), ", "),
		)
		return err
	default:
		if len(report.Min) == 0 {
			_, err := fmt.Fprintln(w, "No producer has won more than once")
			return err
		}
		sections := []struct {
			title     string
			intervals []awards.ProducerInterval
		}{
			{"Min interval", report.Min},
			{"Max interval", report.Max},
		}
		for _, section := range sections {
			if _, err := fmt.Fprintf(w, "%s:\n", section.title); err != nil {
				return err
			}
			for _, pi := range section.intervals {
				if _, err := fmt.Fprintf(w, "  %s\n", intervalString(pi)); err != nil {
					return err
				}
			}
		}
		return nil
	}
}
