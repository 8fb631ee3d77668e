package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/coffeehaus/storefront/internal/models"
	service "github.com/coffeehaus/storefront/internal/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []*models.Notification
	updates map[uuid.UUID]models.NotificationStatus
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{updates: make(map[uuid.UUID]models.NotificationStatus)}
}

func (r *fakeNotificationRepo) CreateNotification(_ context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.created = append(r.created, notification)

	return nil
}

func (r *fakeNotificationRepo) UpdateNotificationStatus(_ context.Context, id uuid.UUID, status models.NotificationStatus, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.updates[id] = status

	return nil
}

func (r *fakeNotificationRepo) ListNotifications(_ context.Context, recipient string, _, _ int) ([]models.Notification, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var notifications []models.Notification
	for _, n := range r.created {
		if n.Recipient == recipient {
			notifications = append(notifications, *n)
		}
	}

	return notifications, len(notifications), nil
}

type fakeEmailSender struct {
	mu   sync.Mutex
	sent []*models.EmailNotificationRequest
	err  error
}

func (s *fakeEmailSender) Send(_ context.Context, req *models.EmailNotificationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	s.sent = append(s.sent, req)

	return nil
}

func TestNotificationService_SendEmail(t *testing.T) {
	ctx := context.Background()

	req := &models.EmailNotificationRequest{
		Recipient: "alice@example.com",
		Subject:   "Hello",
		Content:   "Welcome aboard",
	}

	t.Run("Success", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		sender := &fakeEmailSender{}
		svc := service.NewNotificationService(repo, newFakeUserRepo(), sender)

		notification, err := svc.SendEmail(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, models.StatusSent, notification.Status)
		require.Len(t, repo.created, 1)
		assert.Equal(t, models.StatusSent, repo.updates[notification.ID])
		require.Len(t, sender.sent, 1)
	})

	t.Run("Delivery Failure Is Recorded", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		sender := &fakeEmailSender{err: assert.AnError}
		svc := service.NewNotificationService(repo, newFakeUserRepo(), sender)

		notification, err := svc.SendEmail(ctx, req)

		require.Error(t, err)
		assert.Nil(t, notification)
		// The record exists and is marked failed for auditing.
		require.Len(t, repo.created, 1)
		assert.Equal(t, models.StatusFailed, repo.updates[repo.created[0].ID])
	})
}

func TestNotificationService_OrderCommitted(t *testing.T) {
	ctx := context.Background()

	alice := &models.User{ID: uuid.New(), Email: "alice@example.com", Name: "Alice"}
	owner := alice.ID.String()

	order := &models.Order{
		ID:    10,
		Owner: owner,
		Lines: []models.OrderLine{
			{ProductID: 42, Name: "latte", CommittedPrice: decimal.RequireFromString("3.50"), Quantity: 2},
		},
	}

	t.Run("Sends To The Owner's Email", func(t *testing.T) {
		users := newFakeUserRepo()
		require.NoError(t, users.CreateUser(ctx, alice))

		sender := &fakeEmailSender{}
		svc := service.NewNotificationService(newFakeNotificationRepo(), users, sender)

		svc.OrderCommitted(ctx, owner, order)

		require.Len(t, sender.sent, 1)
		// The opaque owner key resolves to the account's email address.
		assert.Equal(t, "alice@example.com", sender.sent[0].Recipient)
		assert.Contains(t, sender.sent[0].Subject, "10")
		assert.Contains(t, sender.sent[0].Content, "7.00")
	})

	t.Run("Owner Key Without An Account Sends Nothing", func(t *testing.T) {
		sender := &fakeEmailSender{}
		svc := service.NewNotificationService(newFakeNotificationRepo(), newFakeUserRepo(), sender)

		svc.OrderCommitted(ctx, "chat:12345", order)
		svc.OrderCommitted(ctx, uuid.NewString(), order)

		assert.Empty(t, sender.sent)
	})

	t.Run("Delivery Failure Never Panics Or Propagates", func(t *testing.T) {
		users := newFakeUserRepo()
		require.NoError(t, users.CreateUser(ctx, alice))

		failing := service.NewNotificationService(newFakeNotificationRepo(), users, &fakeEmailSender{err: assert.AnError})

		failing.OrderCommitted(ctx, owner, order)
	})
}

func TestNotificationService_ListNotifications(t *testing.T) {
	ctx := context.Background()
	repo := newFakeNotificationRepo()
	svc := service.NewNotificationService(repo, newFakeUserRepo(), &fakeEmailSender{})

	_, err := svc.SendEmail(ctx, &models.EmailNotificationRequest{
		Recipient: "alice@example.com", Subject: "a", Content: "b",
	})
	require.NoError(t, err)

	notifications, total, err := svc.ListNotifications(ctx, "alice@example.com", 0, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, notifications, 1)
}
