package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coffeehaus/storefront/internal/models"
	repository "github.com/coffeehaus/storefront/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupNotificationRepoTest(t *testing.T) (repository.NotificationRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return repository.NewNotificationRepo(db), mock
}

func TestNotificationRepository_CreateNotification(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo, mock := setupNotificationRepoTest(t)
		ctx := context.Background()

		notification := &models.Notification{
			ID:        uuid.New(),
			Type:      models.NotificationTypeEmail,
			Recipient: "alice@example.com",
			Subject:   "Order confirmed",
			Content:   "Your order is on its way",
			Status:    models.StatusPending,
		}

		mock.ExpectExec(`INSERT INTO notifications`).
			WithArgs(notification.ID, notification.Type, notification.Recipient,
				notification.Subject, notification.Content, notification.Status, "").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.CreateNotification(ctx, notification)
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		repo, mock := setupNotificationRepoTest(t)
		ctx := context.Background()

		mock.ExpectExec(`INSERT INTO notifications`).
			WillReturnError(errors.New("connection reset"))

		err := repo.CreateNotification(ctx, &models.Notification{ID: uuid.New()})
		assert.Error(t, err)
	})
}

func TestNotificationRepository_UpdateNotificationStatus(t *testing.T) {
	t.Run("Sent stamps sent_at", func(t *testing.T) {
		repo, mock := setupNotificationRepoTest(t)
		ctx := context.Background()

		id := uuid.New()

		mock.ExpectExec(`UPDATE notifications`).
			WithArgs(models.StatusSent, "", sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateNotificationStatus(ctx, id, models.StatusSent, "")
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failed keeps sent_at null", func(t *testing.T) {
		repo, mock := setupNotificationRepoTest(t)
		ctx := context.Background()

		id := uuid.New()

		mock.ExpectExec(`UPDATE notifications`).
			WithArgs(models.StatusFailed, "smtp timeout", nil, id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateNotificationStatus(ctx, id, models.StatusFailed, "smtp timeout")
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNotificationRepository_ListNotifications(t *testing.T) {
	repo, mock := setupNotificationRepoTest(t)
	ctx := context.Background()

	now := time.Now()
	sentAt := now.Add(-time.Minute)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notifications`).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	columns := []string{"id", "type", "recipient", "subject", "content", "status", "error_message", "created_at", "updated_at", "sent_at"}
	mock.ExpectQuery(`SELECT id, type, recipient, subject, content, status`).
		WithArgs("alice@example.com", 10, 0).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(uuid.New(), models.NotificationTypeEmail, "alice@example.com",
				"Order confirmed", "Your order is on its way", models.StatusSent, "", now, now, &sentAt))

	notifications, total, err := repo.ListNotifications(ctx, "alice@example.com", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.StatusSent, notifications[0].Status)
	require.NotNil(t, notifications[0].SentAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}
