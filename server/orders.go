package server

import (
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/orderdesk/orderdesk/store"
)

type orderLineRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func (r orderLineRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Price, validation.Min(0.0)),
		validation.Field(&r.Quantity, validation.Required, validation.Min(1)),
	)
}

type createOrderRequest struct {
	CustomerID   string             `json:"customerId"`
	CustomerName string             `json:"customerName"`
	Status       string             `json:"status"`
	OrderFrom    string             `json:"orderFrom"`
	TotalPrice   float64            `json:"totalPrice"`
	Items        []orderLineRequest `json:"items"`
	OrderDate    *time.Time         `json:"orderDate"`
}

func (r createOrderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CustomerID, validation.Required),
		validation.Field(&r.CustomerName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Status, validation.In("pending", "completed", "cancelled")),
		validation.Field(&r.TotalPrice, validation.Min(0.0)),
		validation.Field(&r.Items, validation.Required),
	)
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (r updateOrderStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required,
			validation.In("pending", "completed", "cancelled")),
	)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	lines := make([]store.OrderItem, 0, len(req.Items))
	total := req.TotalPrice
	for _, line := range req.Items {
		lines = append(lines, store.OrderItem{
			Name:     line.Name,
			Price:    line.Price,
			Quantity: line.Quantity,
		})
		if req.TotalPrice == 0 {
			total += line.Price * float64(line.Quantity)
		}
	}

	order, err := s.orders.Create(r.Context(), &store.Order{
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		Status:       req.Status,
		OrderFrom:    req.OrderFrom,
		TotalPrice:   total,
		Items:        lines,
		OrderDate:    req.OrderDate,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	s.bump(r.Context(), nsOrders)
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	order, err := s.orders.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	s.bump(r.Context(), nsOrders)
	writeJSON(w, http.StatusOK, order)
}
