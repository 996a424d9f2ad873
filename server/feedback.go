package server

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/orderdesk/orderdesk/store"
)

type createFeedbackRequest struct {
	CustomerName string `json:"customerName"`
	Message      string `json:"message"`
	Rating       int    `json:"rating"`
}

func (r createFeedbackRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CustomerName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Message, validation.Required, validation.Length(1, 5000)),
		validation.Field(&r.Rating, validation.Min(0), validation.Max(5)),
	)
}

func (s *Server) createFeedback(w http.ResponseWriter, r *http.Request) {
	var req createFeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	entry, err := s.feedback.Create(r.Context(), &store.Feedback{
		CustomerName: req.CustomerName,
		Message:      req.Message,
		Rating:       req.Rating,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	s.bump(r.Context(), nsFeedback)
	writeJSON(w, http.StatusCreated, entry)
}
