package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coffeehaus/storefront/internal/models"
	repository "github.com/coffeehaus/storefront/internal/repositories"
	"github.com/coffeehaus/storefront/pkg/sendgrid"
	"github.com/google/uuid"
)

type NotificationService interface {
	SendEmail(ctx context.Context, req *models.EmailNotificationRequest) (*models.Notification, error)
	ListNotifications(ctx context.Context, recipient string, page, size int) ([]models.Notification, int, error)
	OrderCommitted(ctx context.Context, owner string, order *models.Order)
}

type notificationService struct {
	repo         repository.NotificationRepository
	users        repository.UserRepository
	emailService sendgrid.EmailService
}

func NewNotificationService(repo repository.NotificationRepository, users repository.UserRepository, emailService sendgrid.EmailService) NotificationService {
	return &notificationService{repo: repo, users: users, emailService: emailService}
}

func (n *notificationService) SendEmail(ctx context.Context, req *models.EmailNotificationRequest) (*models.Notification, error) {

	notification := &models.Notification{
		ID:        uuid.New(),
		Type:      models.NotificationTypeEmail,
		Recipient: req.Recipient,
		Subject:   req.Subject,
		Content:   req.Content,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// Save to the database first so a delivery failure is still auditable.
	if err := n.repo.CreateNotification(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification record: %w", err)
	}

	if err := n.emailService.Send(ctx, req); err != nil {

		notification.Status = models.StatusFailed
		notification.Error = err.Error()

		_ = n.repo.UpdateNotificationStatus(ctx, notification.ID, models.StatusFailed, notification.Error)

		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	notification.Status = models.StatusSent

	if err := n.repo.UpdateNotificationStatus(ctx, notification.ID, models.StatusSent, ""); err != nil {
		return nil, fmt.Errorf("notification sent successfully but failed to update notification status: %w", err)
	}

	return notification, nil
}

func (n *notificationService) ListNotifications(ctx context.Context, recipient string, page, size int) ([]models.Notification, int, error) {

	page, size = models.NormalizePage(page, size)

	return n.repo.ListNotifications(ctx, recipient, page, size)
}

// OrderCommitted sends the order confirmation. The owner key is opaque to
// the checkout path; only keys that resolve to a user account get an email.
// Failures are logged only; the order is already durable and must not be
// affected.
func (n *notificationService) OrderCommitted(ctx context.Context, owner string, order *models.Order) {

	userID, err := uuid.Parse(owner)
	if err != nil {
		slog.Warn("Order confirmation skipped, owner is not a user id",
			slog.Int64("orderId", order.ID), slog.String("owner", owner))
		return
	}

	user, err := n.users.GetUserByID(ctx, userID)
	if err != nil {
		slog.Warn("Order confirmation skipped, owner lookup failed",
			slog.Int64("orderId", order.ID), slog.Any("error", err))
		return
	}

	req := &models.EmailNotificationRequest{
		Recipient: user.Email,
		Subject:   fmt.Sprintf("Order #%d confirmed", order.ID),
		Content: fmt.Sprintf("Your order #%d for %d item(s), total %s, has been received.",
			order.ID, order.ItemCount(), order.TotalCost().StringFixed(2)),
	}

	if _, err := n.SendEmail(ctx, req); err != nil {
		slog.Warn("Order confirmation email failed",
			slog.Int64("orderId", order.ID), slog.Any("error", err))
	}
}
