package httpserver

import (
	"net/http"
	"time"

	"github.com/Clark-Hu/popcorn-palace/internal/domain"
)

type showtimeRequest struct {
	ID        *int64     `json:"id"` // ignored
	MovieID   *int64     `json:"movieId"`
	Price     *float64   `json:"price"`
	Theater   string     `json:"theater"`
	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
}

type showtimeResponse struct {
	ID        int64     `json:"id"`
	MovieID   int64     `json:"movieId"`
	Price     float64   `json:"price"`
	Theater   string    `json:"theater"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

func (s *Server) handleGetShowtime(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "showtimeId")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	st, err := s.scheduler.Get(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, "get showtime", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toShowtimeResponse(st))
}

func (s *Server) handleCreateShowtime(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeShowtime(w, r)
	if !ok {
		return
	}

	st, err := s.scheduler.Create(r.Context(), in)
	if err != nil {
		s.respondServiceError(w, "create showtime", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toShowtimeResponse(st))
}

func (s *Server) handleUpdateShowtime(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "showtimeId")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	in, ok := s.decodeShowtime(w, r)
	if !ok {
		return
	}

	if _, err := s.scheduler.Update(r.Context(), id, in); err != nil {
		s.respondServiceError(w, "update showtime", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleDeleteShowtime(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "showtimeId")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	res, err := s.scheduler.Delete(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, "delete showtime", err)
		return
	}
	s.logger.Printf("deleted showtime %d: %d bookings", res.Showtime.ID, res.BookingsCanceled)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) decodeShowtime(w http.ResponseWriter, r *http.Request) (domain.ShowtimeInput, bool) {
	var req showtimeRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return domain.ShowtimeInput{}, false
	}
	in, fe := req.validate(s.now())
	if !fe.empty() {
		s.respondValidation(w, fe)
		return domain.ShowtimeInput{}, false
	}
	return in, true
}

func toShowtimeResponse(st domain.Showtime) showtimeResponse {
	return showtimeResponse{
		ID:        st.ID,
		MovieID:   st.MovieID,
		Price:     st.Price,
		Theater:   st.Theater,
		StartTime: st.StartTime.UTC(),
		EndTime:   st.EndTime.UTC(),
	}
}
