package httpserver

import (
	"net/http"

	"github.com/Clark-Hu/popcorn-palace/internal/domain"
)

type movieRequest struct {
	ID          *int64   `json:"id"` // ignored
	Title       string   `json:"title"`
	Genre       string   `json:"genre"`
	Duration    *int     `json:"duration"`
	Rating      *float64 `json:"rating"`
	ReleaseYear *int     `json:"releaseYear"`
}

type movieResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Genre       string  `json:"genre"`
	Duration    int     `json:"duration"`
	Rating      float64 `json:"rating"`
	ReleaseYear int     `json:"releaseYear"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := s.catalog.List(r.Context())
	if err != nil {
		s.respondServiceError(w, "list movies", err)
		return
	}

	items := make([]movieResponse, 0, len(movies))
	for _, movie := range movies {
		items = append(items, toMovieResponse(movie))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var req movieRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	in, fe := req.validate(s.now())
	if !fe.empty() {
		s.respondValidation(w, fe)
		return
	}

	movie, err := s.catalog.Create(r.Context(), in)
	if err != nil {
		s.respondServiceError(w, "create movie", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	title, err := titleParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	var req movieRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	in, fe := req.validate(s.now())
	if !fe.empty() {
		s.respondValidation(w, fe)
		return
	}

	if _, err := s.catalog.UpdateByTitle(r.Context(), title, in); err != nil {
		s.respondServiceError(w, "update movie", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	title, err := titleParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	res, err := s.catalog.DeleteByTitle(r.Context(), title)
	if err != nil {
		s.respondServiceError(w, "delete movie", err)
		return
	}
	s.logger.Printf("deleted movie %q: %d showtimes, %d bookings", res.Movie.Title, res.ShowtimesDeleted, res.BookingsCanceled)
	w.WriteHeader(http.StatusOK)
}

func toMovieResponse(movie domain.Movie) movieResponse {
	return movieResponse{
		ID:          movie.ID,
		Title:       movie.Title,
		Genre:       movie.Genre,
		Duration:    movie.Duration,
		Rating:      movie.Rating,
		ReleaseYear: movie.ReleaseYear,
	}
}
