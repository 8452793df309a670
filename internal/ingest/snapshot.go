package ingest

import (
	"context"

	"github.com/multimediallc/movie-awards/pkg/awards"
	f "github.com/multimediallc/movie-awards/pkg/functional"
)

// ProducerNames returns the distinct producer names of rows in first-seen order
func ProducerNames(rows []Row) []string {
	names := make([]string, 0)
	seen := make(map[string]bool)
	for _, row := range rows {
		for _, name := range row.Producers {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// Snapshot turns rows into movies without going through storage. Each distinct
// producer name becomes one producer, numbered from 1 in first-seen order,
// which matches how the store creates producers on import.
func Snapshot(rows []Row) []awards.Movie {
	ids := make(map[string]awards.ProducerID)
	for i, name := range ProducerNames(rows) {
		ids[name] = awards.ProducerID(i + 1)
	}

	movies := make([]awards.Movie, 0, len(rows))
	for i, row := range rows {
		names := row.UniqueProducers()
		producers := make([]awards.Producer, 0, len(names))
		for _, name := range names {
			producers = append(producers, awards.Producer{ID: ids[name], Name: name})
		}
		movies = append(movies, awards.Movie{
			ID:        uint(i + 1),
			Title:     row.Title,
			Year:      row.Year,
			Studios:   row.Studios,
			Winner:    row.Winner,
			Producers: producers,
		})
	}
	return movies
}

// RowSource serves winner snapshots straight from parsed rows
type RowSource []Row

func (rs RowSource) WinnerMovies(ctx context.Context) ([]awards.Movie, error) {
	return f.Filtered(Snapshot(rs), func(m awards.Movie) bool { return m.Winner }), nil
}
