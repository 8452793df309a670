package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/multimediallc/movie-awards/internal/store"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
	Message    any    `json:"message"`
}

type badRequestError struct {
	message string
}

func (e badRequestError) Error() string {
	return e.message
}

func validationMessages(errs validator.ValidationErrors) []string {
	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must contain at least %s elements", fe.Field(), fe.Param()))
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be a positive number", fe.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag()))
		}
	}
	return messages
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
	}

	var notFound store.NotFoundError
	var badRequest badRequestError
	var invalid validator.ValidationErrors
	switch {
	case errors.As(err, &notFound):
		resp.StatusCode = http.StatusNotFound
		resp.Message = notFound.Error()
		s.logger.Warn("server: not found", "path", r.URL.Path, "error", err)
	case errors.As(err, &invalid):
		resp.StatusCode = http.StatusBadRequest
		resp.Message = validationMessages(invalid)
	case errors.As(err, &badRequest):
		resp.StatusCode = http.StatusBadRequest
		resp.Message = []string{badRequest.Error()}
	default:
		resp.StatusCode = http.StatusInternalServerError
		resp.Message = "Internal server error"
		s.logger.Error("server: request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, resp.StatusCode, resp)
}
