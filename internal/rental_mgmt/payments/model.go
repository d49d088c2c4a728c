package payments

import (
	"database/sql"
	"time"
)

const (
	TypeTopUp        = "top_up"
	TypeRentalCharge = "rental_charge"
	TypeExtension    = "extension"
	// TypeOrderCharge rows are written by shop checkout as already
	// completed balance debits.
	TypeOrderCharge = "order_charge"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Payment is one row of the payments table. ExtensionDays is recorded at
// request time so confirmation never has to back-derive the day count from
// the satang-perturbed amount.
type Payment struct {
	ID            int64
	UserID        int64
	RentalID      sql.NullInt64
	Amount        float64
	Type          string
	Status        string
	PromptPayRef  sql.NullString
	ExtensionDays sql.NullInt64
	ConfirmedBy   sql.NullInt64
	ConfirmedAt   sql.NullTime
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
