package server

import (
	"net/http"

	"github.com/multimediallc/movie-awards/internal/store"
)

type producerRequest struct {
	Name *string `json:"name" validate:"required,max=255"`
}

func (s *Server) listProducers(w http.ResponseWriter, r *http.Request) {
	producers, err := s.store.Producers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, producers)
}

func (s *Server) getProducer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	producer, err := s.store.Producer(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, producer)
}

func (s *Server) createProducer(w http.ResponseWriter, r *http.Request) {
	var req producerRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	producer, err := s.store.CreateProducer(r.Context(), store.ProducerInput{Name: *req.Name})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("server: producer created", "id", producer.ID)
	writeJSON(w, http.StatusCreated, producer)
}

func (s *Server) updateProducer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req producerRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	producer, err := s.store.UpdateProducer(r.Context(), id, store.ProducerInput{Name: *req.Name})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("server: producer updated", "id", producer.ID)
	writeJSON(w, http.StatusOK, producer)
}

func (s *Server) deleteProducer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.DeleteProducer(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("server: producer deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
