package products

import (
	"database/sql"
	"time"
)

const (
	StatusAvailable   = "available"
	StatusRented      = "rented"
	StatusMaintenance = "maintenance"
	StatusCleaning    = "cleaning"
)

const (
	CategoryCar        = "car"
	CategoryMotorcycle = "motorcycle"
	CategoryRoom       = "room"
	CategoryYacht      = "yacht"
	CategoryOther      = "other"
)

// Product is one row of the products table. Metadata is free-form JSON kept
// opaque to the backend (bed size, engine capacity, strain info, ...).
type Product struct {
	ID           int64
	Name         string
	Category     string
	LicensePlate sql.NullString
	HourlyRate   sql.NullFloat64
	DailyRate    float64
	Description  sql.NullString
	ImageURL     sql.NullString
	Status       string
	Metadata     sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func ValidCategory(c string) bool {
	switch c {
	case CategoryCar, CategoryMotorcycle, CategoryRoom, CategoryYacht, CategoryOther:
		return true
	}
	return false
}

func ValidStatus(s string) bool {
	switch s {
	case StatusAvailable, StatusRented, StatusMaintenance, StatusCleaning:
		return true
	}
	return false
}
