package server

import (
	"net/http"

	"github.com/multimediallc/movie-awards/internal/store"
	"github.com/multimediallc/movie-awards/pkg/awards"
)

type movieRequest struct {
	Title       *string `json:"title" validate:"required,max=255"`
	Year        *int    `json:"year" validate:"required,gt=0"`
	ProducerIDs []uint  `json:"producerIds" validate:"required,min=1,dive,gt=0"`
	Winner      *bool   `json:"winner" validate:"required"`
	Studios     *string `json:"studios" validate:"required,max=255"`
}

func (m movieRequest) toInput() store.MovieInput {
	return store.MovieInput{
		Title:       *m.Title,
		Year:        *m.Year,
		Studios:     *m.Studios,
		Winner:      *m.Winner,
		ProducerIDs: m.ProducerIDs,
	}
}

func (s *Server) listMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := s.store.Movies(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

func (s *Server) getMovie(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	movie, err := s.store.Movie(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

func (s *Server) createMovie(w http.ResponseWriter, r *http.Request) {
	var req movieRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	movie, err := s.store.CreateMovie(r.Context(), req.toInput())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("server: movie created", "id", movie.ID)
	writeJSON(w, http.StatusCreated, movie)
}

func (s *Server) updateMovie(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req movieRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	movie, err := s.store.UpdateMovie(r.Context(), id, req.toInput())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("server: movie updated", "id", movie.ID)
	writeJSON(w, http.StatusOK, movie)
}

func (s *Server) deleteMovie(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.DeleteMovie(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("server: movie deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) producerIntervals(w http.ResponseWriter, r *http.Request) {
	report, err := awards.ComputeWinIntervals(r.Context(), s.store)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("server: producer intervals computed", "min", len(report.Min), "max", len(report.Max))
	writeJSON(w, http.StatusOK, report)
}
