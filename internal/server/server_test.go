package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/multimediallc/movie-awards/internal/ingest"
	"github.com/multimediallc/movie-awards/internal/store"
	"github.com/multimediallc/movie-awards/pkg/awards"
)

const fixture = `year;title;studios;producers;winner
2000;Movie A;Studio;Producer 1;yes
1900;Movie B;Studio;Producer 1;yes
1999;Movie C;Studio;Producer 1;yes
1899;Movie D;Studio;Producer 2;yes
1900;Movie E;Studio;Producer 2;yes
1800;Movie F;Studio;Producer 2;yes
2000;Movie G;Studio;Producer 3;
`

func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), io.Discard, false)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	rows, err := ingest.Parse(strings.NewReader(fixture), ';')
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	if _, err := s.Import(context.Background(), rows); err != nil {
		t.Fatalf("failed to import fixture: %v", err)
	}
	srv := httptest.NewServer(New(s, slog.New(slog.NewTextHandler(io.Discard, nil))).Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = s.Close()
	})
	return srv, s
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	return v
}

func TestProducerIntervals(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/movies/producers/intervals", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	report := decodeBody[awards.ProducerIntervalReport](t, resp)
	expected := awards.ProducerIntervalReport{
		Min: []awards.ProducerInterval{
			{Producer: "Producer 1", Interval: 1, PreviousWin: 1999, FollowingWin: 2000},
			{Producer: "Producer 2", Interval: 1, PreviousWin: 1899, FollowingWin: 1900},
		},
		Max: []awards.ProducerInterval{
			{Producer: "Producer 1", Interval: 99, PreviousWin: 1900, FollowingWin: 1999},
			{Producer: "Producer 2", Interval: 99, PreviousWin: 1800, FollowingWin: 1899},
		},
	}
	got, _ := json.Marshal(report)
	want, _ := json.Marshal(expected)
	if string(got) != string(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

type unavailableStore struct {
	store.Store
	err error
}

func (u unavailableStore) WinnerMovies(ctx context.Context) ([]awards.Movie, error) {
	return nil, u.err
}

func TestProducerIntervals_StoreUnavailable(t *testing.T) {
	var logs bytes.Buffer
	s := New(unavailableStore{err: errors.New("database is closed")}, slog.New(slog.NewTextHandler(&logs, nil)))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/movies/producers/intervals", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(logs.String(), "database is closed") {
		t.Errorf("expected the store error to be logged, got %s", logs.String())
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected a generated request id")
	}
}

func TestMovies(t *testing.T) {
	srv, s := newTestServer(t)
	producers, _ := s.Producers(context.Background())

	resp := do(t, http.MethodGet, srv.URL+"/movies", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	movies := decodeBody[[]store.Movie](t, resp)
	if len(movies) != 7 {
		t.Errorf("expected 7 movies, got %d", len(movies))
	}

	created := do(t, http.MethodPost, srv.URL+"/movies", map[string]any{
		"title":       "New Movie",
		"year":        2020,
		"producerIds": []uint{producers[2].ID},
		"winner":      true,
		"studios":     "New Studio",
		"extra":       "ignored",
	})
	if created.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", created.StatusCode)
	}
	movie := decodeBody[store.Movie](t, created)
	if movie.ID == 0 || movie.Title != "New Movie" || len(movie.Producers) != 1 {
		t.Errorf("unexpected created movie %+v", movie)
	}

	get := do(t, http.MethodGet, fmt.Sprintf("%s/movies/%d", srv.URL, movie.ID), nil)
	if get.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", get.StatusCode)
	}

	updated := do(t, http.MethodPut, fmt.Sprintf("%s/movies/%d", srv.URL, movie.ID), map[string]any{
		"title":       "Updated Movie",
		"year":        2021,
		"producerIds": []uint{producers[0].ID, producers[1].ID},
		"winner":      false,
		"studios":     "",
	})
	if updated.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", updated.StatusCode)
	}
	if m := decodeBody[store.Movie](t, updated); m.Title != "Updated Movie" || m.Winner || len(m.Producers) != 2 {
		t.Errorf("unexpected updated movie %+v", m)
	}

	deleted := do(t, http.MethodDelete, fmt.Sprintf("%s/movies/%d", srv.URL, movie.ID), nil)
	if deleted.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", deleted.StatusCode)
	}
	gone := do(t, http.MethodGet, fmt.Sprintf("%s/movies/%d", srv.URL, movie.ID), nil)
	if gone.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", gone.StatusCode)
	}
}

func TestMovieErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tt := []struct {
		name           string
		method         string
		path           string
		body           any
		expectedStatus int
		expectedInBody string
	}{
		{"get missing", http.MethodGet, "/movies/999", nil, http.StatusNotFound, "Movie with id 999 not found"},
		{"delete missing", http.MethodDelete, "/movies/999", nil, http.StatusNotFound, "Movie with id 999 not found"},
		{"non numeric id", http.MethodGet, "/movies/abc", nil, http.StatusBadRequest, "id must be a positive integer"},
		{"missing fields", http.MethodPost, "/movies", map[string]any{"title": "X"}, http.StatusBadRequest, "year is required"},
		{"missing title", http.MethodPost, "/movies", map[string]any{
			"year": 2000, "producerIds": []uint{1}, "winner": true, "studios": "S",
		}, http.StatusBadRequest, "title is required"},
		{"negative year", http.MethodPost, "/movies", map[string]any{
			"title": "X", "year": -1, "producerIds": []uint{1}, "winner": true, "studios": "S",
		}, http.StatusBadRequest, "year must be a positive number"},
		{"empty producer list", http.MethodPost, "/movies", map[string]any{
			"title": "X", "year": 2000, "producerIds": []uint{}, "winner": true, "studios": "S",
		}, http.StatusBadRequest, "producerIds"},
		{"title too long", http.MethodPost, "/movies", map[string]any{
			"title": strings.Repeat("x", 256), "year": 2000, "producerIds": []uint{1}, "winner": true, "studios": "S",
		}, http.StatusBadRequest, "title must be at most 255 characters"},
		{"unknown producer", http.MethodPost, "/movies", map[string]any{
			"title": "X", "year": 2000, "producerIds": []uint{1, 999}, "winner": true, "studios": "S",
		}, http.StatusNotFound, "Producer with id 999 not found"},
		{"wrong type", http.MethodPut, "/movies/1", map[string]any{"title": 12}, http.StatusBadRequest, "invalid request body"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, tc.method, srv.URL+tc.path, tc.body)
			if resp.StatusCode != tc.expectedStatus {
				t.Fatalf("expected %d, got %d", tc.expectedStatus, resp.StatusCode)
			}
			body := decodeBody[ErrorResponse](t, resp)
			if body.StatusCode != tc.expectedStatus || body.Path != tc.path || body.Timestamp == "" {
				t.Errorf("unexpected error envelope %+v", body)
			}
			encoded, _ := json.Marshal(body.Message)
			if !strings.Contains(string(encoded), tc.expectedInBody) {
				t.Errorf("expected message to contain %q, got %s", tc.expectedInBody, encoded)
			}
		})
	}
}

func TestProducers(t *testing.T) {
	srv, _ := newTestServer(t)

	list := do(t, http.MethodGet, srv.URL+"/producers", nil)
	producers := decodeBody[[]store.Producer](t, list)
	if len(producers) != 3 {
		t.Fatalf("expected 3 producers, got %d", len(producers))
	}

	get := do(t, http.MethodGet, fmt.Sprintf("%s/producers/%d", srv.URL, producers[0].ID), nil)
	if p := decodeBody[store.Producer](t, get); p.Name != "Producer 1" {
		t.Errorf("unexpected producer %+v", p)
	}

	created := do(t, http.MethodPost, srv.URL+"/producers", map[string]any{"name": "New Producer"})
	if created.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", created.StatusCode)
	}
	newProducer := decodeBody[store.Producer](t, created)
	if newProducer.ID == 0 || newProducer.Name != "New Producer" {
		t.Errorf("unexpected created producer %+v", newProducer)
	}

	updated := do(t, http.MethodPut, fmt.Sprintf("%s/producers/%d", srv.URL, producers[0].ID), map[string]any{"name": "Updated Producer"})
	if p := decodeBody[store.Producer](t, updated); updated.StatusCode != http.StatusOK || p.Name != "Updated Producer" {
		t.Errorf("unexpected update %d %+v", updated.StatusCode, p)
	}

	intervals := do(t, http.MethodGet, srv.URL+"/movies/producers/intervals", nil)
	report := decodeBody[awards.ProducerIntervalReport](t, intervals)
	if report.Min[0].Producer != "Updated Producer" {
		t.Errorf("report should use the current producer name, got %+v", report.Min[0])
	}

	deleted := do(t, http.MethodDelete, fmt.Sprintf("%s/producers/%d", srv.URL, newProducer.ID), nil)
	if deleted.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", deleted.StatusCode)
	}

	tt := []struct {
		name           string
		method         string
		path           string
		body           any
		expectedStatus int
	}{
		{"get missing", http.MethodGet, "/producers/999", nil, http.StatusNotFound},
		{"update missing", http.MethodPut, "/producers/999", map[string]any{"name": "x"}, http.StatusNotFound},
		{"delete missing", http.MethodDelete, "/producers/999", nil, http.StatusNotFound},
		{"invalid name type", http.MethodPost, "/producers", map[string]any{"name": 12}, http.StatusBadRequest},
		{"missing name", http.MethodPost, "/producers", map[string]any{}, http.StatusBadRequest},
		{"name too long", http.MethodPost, "/producers", map[string]any{"name": strings.Repeat("x", 256)}, http.StatusBadRequest},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, tc.method, srv.URL+tc.path, tc.body)
			if resp.StatusCode != tc.expectedStatus {
				t.Errorf("expected %d, got %d", tc.expectedStatus, resp.StatusCode)
			}
		})
	}
}

func TestEmptyStringsAreAccepted(t *testing.T) {
	srv, _ := newTestServer(t)

	producer := do(t, http.MethodPost, srv.URL+"/producers", map[string]any{"name": ""})
	if producer.StatusCode != http.StatusCreated {
		t.Errorf("expected 201 for an empty producer name, got %d", producer.StatusCode)
	}

	movie := do(t, http.MethodPost, srv.URL+"/movies", map[string]any{
		"title": "", "year": 2000, "producerIds": []uint{1}, "winner": false, "studios": "",
	})
	if movie.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for an empty title, got %d", movie.StatusCode)
	}
	created := decodeBody[store.Movie](t, movie)
	if created.Title != "" || created.Studios != "" {
		t.Errorf("unexpected movie %+v", created)
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	srv, _ := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/producers", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.Header.Get(RequestIDHeader) != "abc-123" {
		t.Errorf("expected request id to be echoed, got %q", resp.Header.Get(RequestIDHeader))
	}
}
