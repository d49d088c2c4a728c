package payments

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirin-backend/internal/platform/apierr"
	"mirin-backend/internal/platform/webpush"
)

type mockStore struct {
	PaymentStore

	insertPending      func(ctx context.Context, p *Payment) error
	rentalForExtension func(ctx context.Context, rentalID int64) (*ExtensionInfo, error)
	execConfirm        func(ctx context.Context, paymentID, adminID int64) (*Payment, error)
	execReject         func(ctx context.Context, paymentID int64) (*Payment, error)
}

func (m *mockStore) InsertPending(ctx context.Context, p *Payment) error {
	return m.insertPending(ctx, p)
}

func (m *mockStore) RentalForExtension(ctx context.Context, rentalID int64) (*ExtensionInfo, error) {
	return m.rentalForExtension(ctx, rentalID)
}

func (m *mockStore) ExecConfirm(ctx context.Context, paymentID, adminID int64) (*Payment, error) {
	return m.execConfirm(ctx, paymentID, adminID)
}

func (m *mockStore) ExecReject(ctx context.Context, paymentID int64) (*Payment, error) {
	return m.execReject(ctx, paymentID)
}

type mockNotifier struct {
	userTitles  []string
	userIDs     []int64
	adminTitles []string
}

func (m *mockNotifier) Notify(ctx context.Context, userID int64, title, message, typ string) error {
	m.userIDs = append(m.userIDs, userID)
	m.userTitles = append(m.userTitles, title)
	return nil
}

func (m *mockNotifier) NotifyAdmins(ctx context.Context, title, message, typ string) error {
	m.adminTitles = append(m.adminTitles, title)
	return nil
}

type mockPusher struct {
	payloads []webpush.Payload
}

func (m *mockPusher) Send(ctx context.Context, userID int64, p webpush.Payload) {
	m.payloads = append(m.payloads, p)
}

func TestTopUpRejectsNonPositiveAmount(t *testing.T) {
	svc := NewServiceWithStore(&mockStore{}, &mockNotifier{}, &mockPusher{}, "0812345678")

	_, err := svc.TopUp(context.Background(), 1, TopUpRequest{Amount: 0})
	assert.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))

	_, err = svc.TopUp(context.Background(), 1, TopUpRequest{Amount: -5})
	assert.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))
}

func TestTopUpRecordsPendingPaymentWithSatang(t *testing.T) {
	var inserted *Payment
	store := &mockStore{
		insertPending: func(ctx context.Context, p *Payment) error {
			p.ID = 10
			inserted = p
			return nil
		},
	}
	notifier := &mockNotifier{}
	svc := NewServiceWithStore(store, notifier, &mockPusher{}, "0812345678")

	resp, err := svc.TopUp(context.Background(), 1, TopUpRequest{Amount: 500})
	require.NoError(t, err)

	require.NotNil(t, inserted)
	assert.Equal(t, TypeTopUp, inserted.Type)
	assert.Greater(t, inserted.Amount, 500.0)
	assert.Less(t, inserted.Amount, 501.0)
	assert.False(t, inserted.RentalID.Valid)
	assert.True(t, strings.HasPrefix(inserted.PromptPayRef.String, "PP"))

	assert.Equal(t, inserted.Amount, resp.Amount)
	assert.Equal(t, inserted.PromptPayRef.String, resp.ReferenceID)
	assert.NotEmpty(t, resp.Payload)

	assert.Equal(t, []string{"New Top-up Request"}, notifier.adminTitles)
}

func TestExtendGuardsOwnership(t *testing.T) {
	store := &mockStore{
		rentalForExtension: func(ctx context.Context, rentalID int64) (*ExtensionInfo, error) {
			return &ExtensionInfo{RentalID: rentalID, UserID: 5, ProductID: 7, DailyRate: 300}, nil
		},
	}
	svc := NewServiceWithStore(store, &mockNotifier{}, &mockPusher{}, "0812345678")

	_, err := svc.Extend(context.Background(), 6, ExtendRequest{RentalID: 1, Days: 2})
	assert.Equal(t, apierr.CodeForbidden, apierr.CodeOf(err))
}

func TestExtendStoresDayCount(t *testing.T) {
	var inserted *Payment
	store := &mockStore{
		rentalForExtension: func(ctx context.Context, rentalID int64) (*ExtensionInfo, error) {
			return &ExtensionInfo{RentalID: rentalID, UserID: 5, ProductID: 7, DailyRate: 300}, nil
		},
		insertPending: func(ctx context.Context, p *Payment) error {
			p.ID = 11
			inserted = p
			return nil
		},
	}
	svc := NewServiceWithStore(store, &mockNotifier{}, &mockPusher{}, "0812345678")

	resp, err := svc.Extend(context.Background(), 5, ExtendRequest{RentalID: 1, Days: 3})
	require.NoError(t, err)

	require.NotNil(t, inserted)
	assert.Equal(t, TypeExtension, inserted.Type)
	require.True(t, inserted.ExtensionDays.Valid)
	assert.Equal(t, int64(3), inserted.ExtensionDays.Int64)
	require.True(t, inserted.RentalID.Valid)
	assert.Equal(t, int64(1), inserted.RentalID.Int64)

	// 3*300 plus the satang perturbation
	assert.Greater(t, inserted.Amount, 900.0)
	assert.Less(t, inserted.Amount, 901.0)
	assert.Equal(t, 3, resp.Days)
}

func TestExtendRejectsNonPositiveDays(t *testing.T) {
	svc := NewServiceWithStore(&mockStore{}, &mockNotifier{}, &mockPusher{}, "0812345678")

	_, err := svc.Extend(context.Background(), 5, ExtendRequest{RentalID: 1, Days: 0})
	assert.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))
}

func TestConfirmNotifiesPayer(t *testing.T) {
	store := &mockStore{
		execConfirm: func(ctx context.Context, paymentID, adminID int64) (*Payment, error) {
			return &Payment{ID: paymentID, UserID: 5, Amount: 500.37, Type: TypeTopUp, Status: StatusCompleted}, nil
		},
	}
	notifier := &mockNotifier{}
	pusher := &mockPusher{}
	svc := NewServiceWithStore(store, notifier, pusher, "0812345678")

	resp, err := svc.Confirm(context.Background(), 10, 99)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, resp.Status)
	assert.Equal(t, []int64{5}, notifier.userIDs)
	assert.Equal(t, []string{"Payment Confirmed"}, notifier.userTitles)
	require.Len(t, pusher.payloads, 1)
	assert.Equal(t, "Payment Confirmed", pusher.payloads[0].Title)
	assert.Contains(t, pusher.payloads[0].Body, "฿500.37")
}

func TestConfirmPropagatesNonPendingState(t *testing.T) {
	store := &mockStore{
		execConfirm: func(ctx context.Context, paymentID, adminID int64) (*Payment, error) {
			return nil, apierr.ErrInvalidState("payment is not pending")
		},
	}
	notifier := &mockNotifier{}
	svc := NewServiceWithStore(store, notifier, &mockPusher{}, "0812345678")

	_, err := svc.Confirm(context.Background(), 10, 99)
	assert.Equal(t, apierr.CodeInvalidState, apierr.CodeOf(err))
	assert.Empty(t, notifier.userTitles)
}

func TestRejectNotifiesPayer(t *testing.T) {
	store := &mockStore{
		execReject: func(ctx context.Context, paymentID int64) (*Payment, error) {
			return &Payment{ID: paymentID, UserID: 5, Amount: 600.12, Type: TypeRentalCharge, Status: StatusFailed}, nil
		},
	}
	notifier := &mockNotifier{}
	svc := NewServiceWithStore(store, notifier, &mockPusher{}, "0812345678")

	resp, err := svc.Reject(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, resp.Status)
	assert.Equal(t, []string{"Payment Rejected"}, notifier.userTitles)
}
