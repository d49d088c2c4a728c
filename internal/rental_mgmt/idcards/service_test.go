package idcards

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirin-backend/internal/platform/apierr"
	"mirin-backend/internal/platform/storage"
	"mirin-backend/internal/platform/webpush"
)

type mockCardStore struct {
	IDCardStore

	getByUser  func(ctx context.Context, userID int64) (*IDCard, error)
	getByID    func(ctx context.Context, id int64) (*IDCard, error)
	upsert     func(ctx context.Context, userID int64, imageURL string) (*IDCard, error)
	setVerdict func(ctx context.Context, id, adminID int64, status string, notes *string) error
}

func (m *mockCardStore) GetByUser(ctx context.Context, userID int64) (*IDCard, error) {
	return m.getByUser(ctx, userID)
}

func (m *mockCardStore) GetByID(ctx context.Context, id int64) (*IDCard, error) {
	return m.getByID(ctx, id)
}

func (m *mockCardStore) Upsert(ctx context.Context, userID int64, imageURL string) (*IDCard, error) {
	return m.upsert(ctx, userID, imageURL)
}

func (m *mockCardStore) SetVerdict(ctx context.Context, id, adminID int64, status string, notes *string) error {
	return m.setVerdict(ctx, id, adminID, status, notes)
}

type mockFiles struct {
	putCalls int
	deleted  []string
}

func (m *mockFiles) PutBase64(data, folder string) (*storage.Stored, error) {
	m.putCalls++
	return &storage.Stored{Key: folder + "/x.jpg", URL: "/uploads/" + folder + "/x.jpg"}, nil
}

func (m *mockFiles) Delete(key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}

type recordingNotifier struct {
	userTitles  []string
	adminTitles []string
}

func (m *recordingNotifier) Notify(ctx context.Context, userID int64, title, message, typ string) error {
	m.userTitles = append(m.userTitles, title)
	return nil
}

func (m *recordingNotifier) NotifyAdmins(ctx context.Context, title, message, typ string) error {
	m.adminTitles = append(m.adminTitles, title)
	return nil
}

type recordingPusher struct {
	payloads []webpush.Payload
}

func (m *recordingPusher) Send(ctx context.Context, userID int64, p webpush.Payload) {
	m.payloads = append(m.payloads, p)
}

func TestUploadRejectsVerifiedCard(t *testing.T) {
	store := &mockCardStore{
		getByUser: func(ctx context.Context, userID int64) (*IDCard, error) {
			return &IDCard{ID: 1, UserID: userID, Status: StatusVerified}, nil
		},
	}
	files := &mockFiles{}
	svc := NewServiceWithStore(store, files, &recordingNotifier{}, &recordingPusher{})

	_, err := svc.Upload(context.Background(), 5, UploadRequest{Image: "data:image/jpeg;base64,aGk="})
	assert.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))
	assert.Zero(t, files.putCalls)
}

func TestUploadReplacesRejectedCard(t *testing.T) {
	var upserted string
	store := &mockCardStore{
		getByUser: func(ctx context.Context, userID int64) (*IDCard, error) {
			return &IDCard{ID: 1, UserID: userID, ImageURL: "/uploads/id_cards/old.jpg", Status: StatusRejected}, nil
		},
		upsert: func(ctx context.Context, userID int64, imageURL string) (*IDCard, error) {
			upserted = imageURL
			return &IDCard{ID: 1, UserID: userID, ImageURL: imageURL, Status: StatusPending}, nil
		},
	}
	notifier := &recordingNotifier{}
	files := &mockFiles{}
	svc := NewServiceWithStore(store, files, notifier, &recordingPusher{})

	resp, err := svc.Upload(context.Background(), 5, UploadRequest{Image: "data:image/jpeg;base64,aGk="})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, resp.Status)
	assert.Equal(t, "/uploads/id_cards/x.jpg", upserted)
	assert.Equal(t, []string{"New ID Verification"}, notifier.adminTitles)
	assert.Equal(t, []string{"id_cards/old.jpg"}, files.deleted)
}

func TestUploadFirstCardDeletesNothing(t *testing.T) {
	store := &mockCardStore{
		getByUser: func(ctx context.Context, userID int64) (*IDCard, error) { return nil, nil },
		upsert: func(ctx context.Context, userID int64, imageURL string) (*IDCard, error) {
			return &IDCard{ID: 1, UserID: userID, ImageURL: imageURL, Status: StatusPending}, nil
		},
	}
	files := &mockFiles{}
	svc := NewServiceWithStore(store, files, &recordingNotifier{}, &recordingPusher{})

	_, err := svc.Upload(context.Background(), 5, UploadRequest{Image: "data:image/jpeg;base64,aGk="})
	require.NoError(t, err)
	assert.Empty(t, files.deleted)
}

func TestStatusGuardsOwnership(t *testing.T) {
	store := &mockCardStore{
		getByUser: func(ctx context.Context, userID int64) (*IDCard, error) {
			return &IDCard{ID: 1, UserID: userID, Status: StatusPending}, nil
		},
	}
	svc := NewServiceWithStore(store, &mockFiles{}, &recordingNotifier{}, &recordingPusher{})

	_, err := svc.Status(context.Background(), 5, 6, false)
	assert.Equal(t, apierr.CodeForbidden, apierr.CodeOf(err))

	got, err := svc.Status(context.Background(), 5, 6, true)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.UserID)
}

func TestVerifyValidatesStatus(t *testing.T) {
	svc := NewServiceWithStore(&mockCardStore{}, &mockFiles{}, &recordingNotifier{}, &recordingPusher{})

	_, err := svc.Verify(context.Background(), 1, 99, VerifyRequest{Status: "pending"})
	assert.Equal(t, apierr.CodeInvalidArgument, apierr.CodeOf(err))
}

func TestVerifyNotifiesOwner(t *testing.T) {
	card := &IDCard{ID: 1, UserID: 5, Status: StatusPending}
	store := &mockCardStore{
		getByID: func(ctx context.Context, id int64) (*IDCard, error) { return card, nil },
		setVerdict: func(ctx context.Context, id, adminID int64, status string, notes *string) error {
			card.Status = status
			return nil
		},
	}
	notifier := &recordingNotifier{}
	pusher := &recordingPusher{}
	svc := NewServiceWithStore(store, &mockFiles{}, notifier, pusher)

	resp, err := svc.Verify(context.Background(), 1, 99, VerifyRequest{Status: StatusVerified})
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, resp.Status)
	assert.Equal(t, []string{"ID Verified"}, notifier.userTitles)
	require.Len(t, pusher.payloads, 1)
	assert.Equal(t, "ID Verified", pusher.payloads[0].Title)
}
