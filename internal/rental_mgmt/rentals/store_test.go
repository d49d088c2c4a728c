package rentals

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirin-backend/internal/platform/apierr"
)

func newMockSQL(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &Store{db: conn}, mock
}

func sampleRental() (*Rental, *PendingCharge) {
	r := &Rental{
		UserID:    5,
		ProductID: 7,
		StartDate: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 1, 3, 10, 0, 0, 0, time.UTC),
		TotalCost: 600,
	}
	c := &PendingCharge{UserID: 5, Amount: 600.37, ReferenceID: "PP0123456789"}
	return r, c
}

func TestExecCreateInsertsRentalAndCharge(t *testing.T) {
	store, mock := newMockSQL(t)
	r, c := sampleRental()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM products WHERE id = .+ FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("available"))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO rentals").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(int64(5), int64(42), 600.37, "PP0123456789").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, store.ExecCreate(context.Background(), r, c))
	assert.Equal(t, int64(42), r.ID)
	assert.Equal(t, StatusPending, r.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecCreateRejectsUnavailableProduct(t *testing.T) {
	store, mock := newMockSQL(t)
	r, c := sampleRental()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM products WHERE id = .+ FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("rented"))
	mock.ExpectRollback()

	err := store.ExecCreate(context.Background(), r, c)
	assert.Equal(t, apierr.CodeInvalidState, apierr.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecCreateRejectsDoubleBooking(t *testing.T) {
	store, mock := newMockSQL(t)
	r, c := sampleRental()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM products WHERE id = .+ FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("available"))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := store.ExecCreate(context.Background(), r, c)
	assert.Equal(t, apierr.CodeConflict, apierr.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecApproveActivatesAndRentsProduct(t *testing.T) {
	store, mock := newMockSQL(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT product_id FROM rentals WHERE id = .+ FOR UPDATE").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id"}).AddRow(int64(7)))
	mock.ExpectExec(`UPDATE rentals SET status = 'active'.+status IN \(\?,\?\)`).
		WithArgs(int64(42), StatusPending, StatusActive).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products SET status = ").
		WithArgs("rented", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.ExecApprove(context.Background(), 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionRejectsTerminalRental(t *testing.T) {
	store, mock := newMockSQL(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT product_id FROM rentals WHERE id = .+ FOR UPDATE").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id"}).AddRow(int64(7)))
	// guarded update touches nothing for completed/cancelled rentals
	mock.ExpectExec("UPDATE rentals SET status = 'cancelled'").
		WithArgs(int64(42), StatusPending, StatusActive).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.ExecCancel(context.Background(), 42)
	assert.Equal(t, apierr.CodeInvalidState, apierr.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
