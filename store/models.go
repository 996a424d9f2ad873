package store

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/orderdesk/orderdesk/pagination"
)

// OrderItem is one line of an order. Lines are denormalized into the order
// row as JSON; the analytics aggregator keys item statistics by Name.
type OrderItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Order is an order taken through a social channel.
//
// Status is empty for orders that predate the status column; the analytics
// aggregator deliberately treats those as completed.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID           string      `bun:"id,pk" json:"id"`
	CustomerID   string      `bun:"customer_id,notnull" json:"customerId"`
	CustomerName string      `bun:"customer_name,notnull" json:"customerName"`
	Status       string      `bun:"status" json:"status,omitempty"`
	OrderFrom    string      `bun:"order_from" json:"orderFrom,omitempty"`
	TotalPrice   float64     `bun:"total_price,notnull" json:"totalPrice"`
	Items        []OrderItem `bun:"items,type:jsonb" json:"items"`
	OrderDate    *time.Time  `bun:"order_date,nullzero" json:"orderDate,omitempty"`
	CreatedAt    time.Time   `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt    time.Time   `bun:"updated_at,notnull" json:"updatedAt"`
}

// CursorKey implements pagination.Keyed.
func (o *Order) CursorKey() pagination.Cursor {
	return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
}

// ReferenceDate is the date analytics windows are evaluated against: the
// explicit order date when present, the creation time otherwise.
func (o *Order) ReferenceDate() time.Time {
	if o.OrderDate != nil && !o.OrderDate.IsZero() {
		return *o.OrderDate
	}
	return o.CreatedAt
}

// Item is a catalog item. Deleting an item is always a soft delete so past
// orders keep resolving; the deleted listing endpoint serves the trash.
type Item struct {
	bun.BaseModel `bun:"table:items,alias:i"`

	ID          string    `bun:"id,pk" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description" json:"description,omitempty"`
	Price       float64   `bun:"price,notnull" json:"price"`
	Stock       int       `bun:"stock" json:"stock"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,notnull" json:"updatedAt"`
	DeletedAt   time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deletedAt,omitempty"`
}

// CursorKey implements pagination.Keyed.
func (i *Item) CursorKey() pagination.Cursor {
	return pagination.Cursor{CreatedAt: i.CreatedAt, ID: i.ID}
}

// Feedback is a customer feedback entry.
type Feedback struct {
	bun.BaseModel `bun:"table:feedback,alias:f"`

	ID           string    `bun:"id,pk" json:"id"`
	CustomerName string    `bun:"customer_name,notnull" json:"customerName"`
	Message      string    `bun:"message,notnull" json:"message"`
	Rating       int       `bun:"rating" json:"rating,omitempty"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"createdAt"`
}

// CursorKey implements pagination.Keyed.
func (f *Feedback) CursorKey() pagination.Cursor {
	return pagination.Cursor{CreatedAt: f.CreatedAt, ID: f.ID}
}
