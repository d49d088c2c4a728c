package notifications

import "time"

type Notification struct {
	ID        int64
	UserID    int64
	Title     string
	Message   string
	Type      string
	Read      bool
	CreatedAt time.Time
}
