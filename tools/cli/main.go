package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/multimediallc/movie-awards/internal/ingest"
	"github.com/multimediallc/movie-awards/pkg/awards"
	f "github.com/multimediallc/movie-awards/pkg/functional"
	"github.com/urfave/cli/v2"
)

// input selects where catalogue rows come from: explicit files first, then a discovery root
type input struct {
	files     []string
	root      string
	patterns  []string
	separator rune
}

func parseSeparator(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("separator must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "root",
			Aliases: []string{"r"},
			Usage:   "Directory to search for catalogue files when none are given",
		},
		&cli.StringSliceFlag{
			Name:    "pattern",
			Aliases: []string{"p"},
			Value:   cli.NewStringSlice("**/*.csv"),
			Usage:   "Glob pattern (relative to root) selecting catalogue files",
		},
		&cli.StringFlag{
			Name:    "separator",
			Aliases: []string{"s"},
			Value:   ";",
			Usage:   "Column separator",
		},
	}
}

func inputFromContext(cCtx *cli.Context) (input, error) {
	sep, err := parseSeparator(cCtx.String("separator"))
	if err != nil {
		return input{}, err
	}
	return input{
		files:     cCtx.Args().Slice(),
		root:      cCtx.String("root"),
		patterns:  cCtx.StringSlice("pattern"),
		separator: sep,
	}, nil
}

func main() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "Print version",
	}
	cli.VersionPrinter = func(cCtx *cli.Context) {
		fmt.Println(cCtx.App.Version)
	}
	app := &cli.App{
		Name:        "awards-cli",
		Usage:       "CLI tool for analysing movie award catalogues",
		Version:     "v0.1.0.dev",
		Description: "Reads delimited award catalogues (year;title;studios;producers;winner) from files, a directory or stdin.",
		Commands: []*cli.Command{
			{
				Name:        "intervals",
				Aliases:     []string{"i"},
				Usage:       "Report the producers with the shortest and longest gap between wins",
				UsageText:   "awards-cli intervals [options] [file1] [file2]...",
				Description: "Compute the min and max win intervals. Reads the given files, the files under --root, or a catalogue piped on stdin.",
				Flags: append(inputFlags(), &cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "default",
					Usage:   "Output format.  Allowed values are: default, one-line, and json",
				}),
				Action: func(cCtx *cli.Context) error {
					format, err := validateFormat(cCtx.String("format"))
					if err != nil {
						return err
					}
					in, err := inputFromContext(cCtx)
					if err != nil {
						return err
					}
					rows, err := loadRows(in, isStdinPiped())
					if err != nil {
						return err
					}
					return printIntervals(cCtx.Context, os.Stdout, rows, format)
				},
			},
			{
				Name:        "verify",
				Aliases:     []string{"v"},
				Usage:       "Verify one or more catalogue files",
				UsageText:   "awards-cli verify [options] <file1> [file2]...",
				Description: "Parse each file strictly and report its row, winner and producer counts. Stops at the first invalid file.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "separator",
						Aliases: []string{"s"},
						Value:   ";",
						Usage:   "Column separator",
					},
				},
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() == 0 {
						return fmt.Errorf("at least one catalogue file is required")
					}
					sep, err := parseSeparator(cCtx.String("separator"))
					if err != nil {
						return err
					}
					return verifyFiles(os.Stdout, cCtx.Args().Slice(), sep)
				},
			},
			{
				Name:        "producers",
				Aliases:     []string{"p"},
				Usage:       "List producers and their win counts",
				UsageText:   "awards-cli producers [options] [file1] [file2]...",
				Description: "List every distinct producer in first-seen order with the number of winning movies credited to them.",
				Flags: append(inputFlags(), &cli.BoolFlag{
					Name:    "winners",
					Aliases: []string{"w"},
					Usage:   "Only list producers with at least one win",
				}),
				Action: func(cCtx *cli.Context) error {
					in, err := inputFromContext(cCtx)
					if err != nil {
						return err
					}
					rows, err := loadRows(in, isStdinPiped())
					if err != nil {
						return err
					}
					listProducers(os.Stdout, rows, cCtx.Bool("winners"))
					return nil
				},
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func loadRows(in input, stdinPiped bool) ([]ingest.Row, error) {
	switch {
	case len(in.files) > 0:
		for _, file := range in.files {
			if fileStat, err := os.Stat(file); err != nil || fileStat.IsDir() {
				return nil, fmt.Errorf("not a file: %s", file)
			}
		}
		return ingest.ReadFiles(in.files, in.separator)
	case in.root != "":
		if rootStat, err := os.Stat(in.root); err != nil || !rootStat.IsDir() {
			return nil, fmt.Errorf("root is not a directory: %s", in.root)
		}
		files, err := ingest.Discover(in.root, in.patterns)
		if err != nil {
			return nil, fmt.Errorf("error walking root: %s", err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no files under %s match %v", in.root, in.patterns)
		}
		return ingest.ReadFiles(files, in.separator)
	case stdinPiped:
		return readStdin(in.separator)
	default:
		return nil, fmt.Errorf("no input: pass catalogue files, --root, or pipe a catalogue on stdin")
	}
}

func printIntervals(ctx context.Context, w io.Writer, rows []ingest.Row, format OutputFormat) error {
	report, err := awards.ComputeWinIntervals(ctx, ingest.RowSource(rows))
	if err != nil {
		return err
	}
	return writeReport(w, report, format)
}

func verifyFiles(w io.Writer, files []string, sep rune) error {
	for _, file := range files {
		rows, err := ingest.ReadFiles([]string{file}, sep)
		if err != nil {
			return err
		}
		winners := f.Count(rows, func(row ingest.Row) bool { return row.Winner })
		_, _ = fmt.Fprintf(w, "%s: %d movies, %d winners, %d producers\n", file, len(rows), winners, len(ingest.ProducerNames(rows)))
	}
	return nil
}

// listProducers prints each distinct producer with its win count, in first-seen order
func listProducers(w io.Writer, rows []ingest.Row, winnersOnly bool) {
	wins := awards.GroupWins(f.Filtered(ingest.Snapshot(rows), func(m awards.Movie) bool { return m.Winner }))
	// Snapshot numbers producers 1..n in ProducerNames order
	for i, name := range ingest.ProducerNames(rows) {
		count := 0
		if pw, ok := wins.Get(awards.ProducerID(i + 1)); ok {
			count = len(pw.Years)
		}
		if winnersOnly && count == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s: %d\n", name, count)
	}
}
