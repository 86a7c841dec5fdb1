package httpserver

import "net/http"

type bookingRequest struct {
	ShowtimeID *int64 `json:"showtimeId"`
	SeatNumber *int   `json:"seatNumber"`
	UserID     string `json:"userId"`
}

type bookingResponse struct {
	BookingID string `json:"bookingId"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	in, fe := req.validate()
	if !fe.empty() {
		s.respondValidation(w, fe)
		return
	}

	booking, err := s.ledger.Book(r.Context(), in)
	if err != nil {
		s.respondServiceError(w, "create booking", err)
		return
	}
	s.respondJSON(w, http.StatusOK, bookingResponse{BookingID: booking.ID})
}
