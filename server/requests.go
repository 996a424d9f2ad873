package server

import (
	"encoding/json"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/orderdesk/orderdesk/pkg/apperrors"
)

// decodeJSON reads a request body into dst and runs its validation rules.
// Both malformed JSON and rule failures surface as validation errors so
// the client sees a 400 either way.
func decodeJSON(r *http.Request, dst validation.Validatable) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := dst.Validate(); err != nil {
		return apperrors.Validation(err.Error())
	}
	return nil
}
