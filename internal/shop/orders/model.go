package orders

import (
	"database/sql"
	"time"
)

const (
	StatusPending    = "pending"
	StatusPaid       = "paid"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

type Order struct {
	ID              int64
	UserID          int64
	TotalAmount     float64
	Status          string
	ShippingAddress sql.NullString
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items []OrderItem
}

type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int64
	UnitPrice   float64
}
