package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirin-backend/internal/platform/apierr"
)

type mockOrderStore struct {
	OrderStore

	getByID   func(ctx context.Context, id int64) (*Order, error)
	execPay   func(ctx context.Context, orderID, userID int64) error
	setStatus func(ctx context.Context, orderID int64, status string) error
}

func (m *mockOrderStore) GetByID(ctx context.Context, id int64) (*Order, error) {
	return m.getByID(ctx, id)
}

func (m *mockOrderStore) ExecPay(ctx context.Context, orderID, userID int64) error {
	return m.execPay(ctx, orderID, userID)
}

func (m *mockOrderStore) SetStatus(ctx context.Context, orderID int64, status string) error {
	return m.setStatus(ctx, orderID, status)
}

type noopNotifier struct{}

func (noopNotifier) Notify(ctx context.Context, userID int64, title, message, typ string) error {
	return nil
}

func (noopNotifier) NotifyAdmins(ctx context.Context, title, message, typ string) error {
	return nil
}

func TestCreateValidatesItems(t *testing.T) {
	svc := NewServiceWithStore(&mockOrderStore{}, noopNotifier{})

	_, err := svc.Create(context.Background(), 1, CreateOrderRequest{})
	assert.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))

	_, err = svc.Create(context.Background(), 1, CreateOrderRequest{
		Items: []CreateOrderItem{{ProductID: 7, Quantity: 0}},
	})
	assert.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))
}

func TestPayPropagatesConflict(t *testing.T) {
	store := &mockOrderStore{
		execPay: func(ctx context.Context, orderID, userID int64) error {
			return apierr.ErrConflict("insufficient balance")
		},
	}
	svc := NewServiceWithStore(store, noopNotifier{})

	_, err := svc.Pay(context.Background(), 3, 5)
	assert.Equal(t, apierr.CodeConflict, apierr.CodeOf(err))
}

func TestGetGuardsOwnership(t *testing.T) {
	store := &mockOrderStore{
		getByID: func(ctx context.Context, id int64) (*Order, error) {
			return &Order{ID: id, UserID: 5, Status: StatusPending}, nil
		},
	}
	svc := NewServiceWithStore(store, noopNotifier{})

	_, err := svc.Get(context.Background(), 3, 6, false)
	assert.Equal(t, apierr.CodeForbidden, apierr.CodeOf(err))

	got, err := svc.Get(context.Background(), 3, 6, true)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.UserID)
}

func TestSetStatusValidatesTransitions(t *testing.T) {
	store := &mockOrderStore{
		getByID: func(ctx context.Context, id int64) (*Order, error) {
			return &Order{ID: id, UserID: 5, Status: StatusShipped}, nil
		},
		setStatus: func(ctx context.Context, orderID int64, status string) error { return nil },
	}
	svc := NewServiceWithStore(store, noopNotifier{})

	_, err := svc.SetStatus(context.Background(), 3, "paid")
	assert.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))

	got, err := svc.SetStatus(context.Background(), 3, StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, got.Status)
}
