package awards

import (
	"slices"

	f "github.com/multimediallc/movie-awards/pkg/functional"
)

// ProducerInterval is the gap between two consecutive wins of the same producer
type ProducerInterval struct {
	Producer     string `json:"producer"`
	Interval     int    `json:"interval"`
	PreviousWin  int    `json:"previousWin"`
	FollowingWin int    `json:"followingWin"`
}

// ProducerIntervalReport holds every interval tied at the global minimum and maximum
type ProducerIntervalReport struct {
	Min []ProducerInterval `json:"min"`
	Max []ProducerInterval `json:"max"`
}

// Intervals returns one interval per pair of consecutive winning years.
// Two wins in the same year yield a zero interval.
func (pw ProducerWins) Intervals() []ProducerInterval {
	years := slices.Clone(pw.Years)
	slices.Sort(years)
	if len(years) < 2 {
		return nil
	}
	intervals := make([]ProducerInterval, 0, len(years)-1)
	for i := 1; i < len(years); i++ {
		intervals = append(intervals, ProducerInterval{
			Producer:     pw.Producer.Name,
			Interval:     years[i] - years[i-1],
			PreviousWin:  years[i-1],
			FollowingWin: years[i],
		})
	}
	return intervals
}

// AllIntervals flattens the intervals of every producer, in producer order
func (w *Wins) AllIntervals() []ProducerInterval {
	intervals := make([]ProducerInterval, 0)
	for _, pw := range w.All() {
		intervals = append(intervals, pw.Intervals()...)
	}
	return intervals
}

// Reduce selects the intervals tied at the smallest and at the largest gap.
// Both lists are empty when no producer has won twice.
func Reduce(wins *Wins) ProducerIntervalReport {
	intervals := wins.AllIntervals()
	if len(intervals) == 0 {
		return ProducerIntervalReport{
			Min: []ProducerInterval{},
			Max: []ProducerInterval{},
		}
	}

	lo, hi := intervals[0].Interval, intervals[0].Interval
	for _, pi := range intervals[1:] {
		if pi.Interval < lo {
			lo = pi.Interval
		}
		if pi.Interval > hi {
			hi = pi.Interval
		}
	}

	return ProducerIntervalReport{
		Min: f.Filtered(intervals, func(pi ProducerInterval) bool { return pi.Interval == lo }),
		Max: f.Filtered(intervals, func(pi ProducerInterval) bool { return pi.Interval == hi }),
	}
}
