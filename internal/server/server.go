package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/multimediallc/movie-awards/internal/store"
)

// Server exposes the catalogue and the win-interval report over HTTP
type Server struct {
	store    store.Store
	logger   *slog.Logger
	validate *validator.Validate
	mux      *http.ServeMux
}

func New(s store.Store, logger *slog.Logger) *Server {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	srv := &Server{
		store:    s,
		logger:   logger,
		validate: validate,
		mux:      http.NewServeMux(),
	}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /movies", s.listMovies)
	s.mux.HandleFunc("GET /movies/{id}", s.getMovie)
	s.mux.HandleFunc("POST /movies", s.createMovie)
	s.mux.HandleFunc("PUT /movies/{id}", s.updateMovie)
	s.mux.HandleFunc("DELETE /movies/{id}", s.deleteMovie)
	s.mux.HandleFunc("GET /movies/producers/intervals", s.producerIntervals)

	s.mux.HandleFunc("GET /producers", s.listProducers)
	s.mux.HandleFunc("GET /producers/{id}", s.getProducer)
	s.mux.HandleFunc("POST /producers", s.createProducer)
	s.mux.HandleFunc("PUT /producers/{id}", s.updateProducer)
	s.mux.HandleFunc("DELETE /producers/{id}", s.deleteProducer)
}

// Handler returns the routes wrapped with request id and access logging
func (s *Server) Handler() http.Handler {
	return withRequestID(s.withAccessLog(s.mux))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request) (uint, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, badRequestError{message: "id must be a positive integer"}
	}
	return uint(id), nil
}

// decode reads a JSON body into dst and validates it. Unknown fields are ignored.
func (s *Server) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequestError{message: "invalid request body: " + err.Error()}
	}
	if err := s.validate.Struct(dst); err != nil {
		return err
	}
	return nil
}
