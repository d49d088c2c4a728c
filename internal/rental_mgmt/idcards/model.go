package idcards

import (
	"database/sql"
	"time"
)

const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"
)

type IDCard struct {
	ID         int64
	UserID     int64
	ImageURL   string
	Status     string
	Notes      sql.NullString
	VerifiedBy sql.NullInt64
	VerifiedAt sql.NullTime
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
