package server

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/orderdesk/orderdesk/pkg/apperrors"
	"github.com/orderdesk/orderdesk/store"
)

type createItemRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

func (r createItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.Price, validation.Min(0.0)),
		validation.Field(&r.Stock, validation.Min(0)),
	)
}

type updateItemRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
}

func (r updateItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.Price, validation.Min(0.0)),
		validation.Field(&r.Stock, validation.Min(0)),
	)
}

func (r updateItemRequest) empty() bool {
	return r.Name == nil && r.Description == nil && r.Price == nil && r.Stock == nil
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	item, err := s.items.Create(r.Context(), &store.Item{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	s.bump(r.Context(), nsItems)
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if req.empty() {
		writeError(w, s.logger, apperrors.Validation("no fields to update"))
		return
	}

	item, err := s.items.Update(r.Context(), r.PathValue("id"), store.ItemPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	s.bump(r.Context(), nsItems)
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.items.SoftDelete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, s.logger, err)
		return
	}

	s.bump(r.Context(), nsItems)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
