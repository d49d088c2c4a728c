package rentals

import (
	"database/sql"
	"time"
)

// Lifecycle: pending -> active -> completed, with cancelled reachable from
// pending and active. completed/cancelled are terminal.
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Rental struct {
	ID               int64
	UserID           int64
	ProductID        int64
	StartDate        time.Time
	EndDate          time.Time
	ActualReturnDate sql.NullTime
	Status           string
	TotalCost        float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
