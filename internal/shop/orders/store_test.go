package orders

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirin-backend/internal/platform/apierr"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &Store{db: conn}, mock
}

func TestExecPayDebitsBalanceAndRecordsCharge(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, total_amount, status FROM orders").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "total_amount", "status"}).
			AddRow(int64(5), 450.0, StatusPending))
	mock.ExpectQuery("SELECT balance FROM users").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(1000.0))
	mock.ExpectExec("UPDATE users SET balance = balance").
		WithArgs(450.0, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE orders SET status = 'paid'").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(int64(5), 450.0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, store.ExecPay(context.Background(), 3, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecPayInsufficientBalance(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, total_amount, status FROM orders").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "total_amount", "status"}).
			AddRow(int64(5), 450.0, StatusPending))
	mock.ExpectQuery("SELECT balance FROM users").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(100.0))
	mock.ExpectRollback()

	err := store.ExecPay(context.Background(), 3, 5)
	assert.Equal(t, apierr.CodeConflict, apierr.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecPayRejectsNonPendingOrder(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, total_amount, status FROM orders").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "total_amount", "status"}).
			AddRow(int64(5), 450.0, StatusPaid))
	mock.ExpectRollback()

	err := store.ExecPay(context.Background(), 3, 5)
	assert.Equal(t, apierr.CodeInvalidState, apierr.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecPayGuardsOwnership(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, total_amount, status FROM orders").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "total_amount", "status"}).
			AddRow(int64(8), 450.0, StatusPending))
	mock.ExpectRollback()

	err := store.ExecPay(context.Background(), 3, 5)
	assert.Equal(t, apierr.CodeForbidden, apierr.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
