package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Clark-Hu/popcorn-palace/internal/domain"
)

const maxRequestBody = 1 << 20 // 1 MiB

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// detailer is implemented by domain errors that carry structured context.
type detailer interface {
	Details() any
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("request body must hold a single JSON object")
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondValidation(w http.ResponseWriter, errs fieldErrors) {
	s.respondJSON(w, http.StatusBadRequest, errorResponse{
		Code:    "VALIDATION_ERROR",
		Message: errs.Error(),
		Details: errs,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	var timeError *time.ParseError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		s.respondError(w, http.StatusRequestEntityTooLarge, "INVALID_INPUT", "Request body too large")
	case errors.As(err, &syntaxError), errors.Is(err, io.ErrUnexpectedEOF):
		s.respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusBadRequest, "INVALID_INPUT", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.As(err, &timeError):
		s.respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Timestamps must follow RFC 3339, e.g. 2025-02-14T11:47:46.125405Z")
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Unable to parse request body")
	}
}

// respondServiceError renders a domain error with its category's status and
// hides anything else behind a 500.
func (s *Server) respondServiceError(w http.ResponseWriter, op string, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		s.logger.Printf("%s error: %v", op, err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
		return
	}

	resp := errorResponse{Code: derr.Code, Message: err.Error()}
	var d detailer
	if errors.As(err, &d) {
		resp.Details = d.Details()
	}
	s.respondJSON(w, statusForKind(derr.Kind), resp)
}

func statusForKind(k domain.Kind) int {
	switch k {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindInvalidRange, domain.KindInvalidOrder:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
