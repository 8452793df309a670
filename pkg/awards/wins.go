package awards

// ProducerWins is the win history of a single producer
type ProducerWins struct {
	Producer Producer
	Years    []int
}

// Wins accumulates winning years per producer identity.
// Producers are kept in the order they were first seen.
type Wins struct {
	order []ProducerID
	byID  map[ProducerID]*ProducerWins
}

func NewWins() *Wins {
	return &Wins{
		order: make([]ProducerID, 0),
		byID:  make(map[ProducerID]*ProducerWins),
	}
}

// Add credits the movie's year to every producer attached to it
func (w *Wins) Add(movie Movie) {
	for _, producer := range movie.Producers {
		pw, found := w.byID[producer.ID]
		if !found {
			pw = &ProducerWins{Producer: producer, Years: make([]int, 0, 1)}
			w.byID[producer.ID] = pw
			w.order = append(w.order, producer.ID)
		}
		pw.Years = append(pw.Years, movie.Year)
	}
}

// Len returns the number of distinct producers seen
func (w *Wins) Len() int {
	return len(w.order)
}

// Get returns the win history for a producer id
func (w *Wins) Get(id ProducerID) (ProducerWins, bool) {
	pw, found := w.byID[id]
	if !found {
		return ProducerWins{}, false
	}
	return *pw, true
}

// All returns the win histories in first-seen order
func (w *Wins) All() []ProducerWins {
	all := make([]ProducerWins, 0, len(w.order))
	for _, id := range w.order {
		all = append(all, *w.byID[id])
	}
	return all
}

// GroupWins partitions winning movies by producer. The caller is responsible
// for passing winners only; the winner flag is not checked again here.
func GroupWins(movies []Movie) *Wins {
	wins := NewWins()
	for _, movie := range movies {
		wins.Add(movie)
	}
	return wins
}
