// Package awards computes how often producers of award-winning movies win again.
package awards

import "context"

type ProducerID uint

// Producer is a producing entity. Two producers are the same iff they share an ID;
// Name is only a display label.
type Producer struct {
	ID   ProducerID
	Name string
}

// Movie is a read-only snapshot of a catalogued movie and its credited producers
type Movie struct {
	ID        uint
	Title     string
	Year      int
	Studios   string
	Winner    bool
	Producers []Producer
}

// WinnerSource provides a snapshot of every movie flagged as a winner, with producers resolved
type WinnerSource interface {
	WinnerMovies(ctx context.Context) ([]Movie, error)
}

// ComputeWinIntervals reads the current winner snapshot and reports the producers
// with the shortest and longest gaps between consecutive wins.
// An error from the source is returned as is.
func ComputeWinIntervals(ctx context.Context, source WinnerSource) (ProducerIntervalReport, error) {
	movies, err := source.WinnerMovies(ctx)
	if err != nil {
		return ProducerIntervalReport{}, err
	}
	return Reduce(GroupWins(movies)), nil
}
