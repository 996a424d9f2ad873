package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/orderdesk/orderdesk/pkg/apperrors"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError maps the error taxonomy onto status codes. Client errors echo
// their message; server errors are logged and answered generically.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	code := apperrors.CodeOf(err)

	message := "internal server error"
	switch {
	case status < 500:
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
	case code == apperrors.CodeTransientStore:
		message = "storage temporarily unavailable"
	}

	if status >= 500 {
		logger.Error("request failed", "status", status, "error", err)
	}

	writeJSON(w, status, errorResponse{Error: errorBody{Code: string(code), Message: message}})
}
