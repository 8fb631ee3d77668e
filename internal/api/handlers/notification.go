package handlers

import (
	"net/http"
	"strconv"

	"github.com/coffeehaus/storefront/internal/api/middleware"
	"github.com/coffeehaus/storefront/internal/models"
	service "github.com/coffeehaus/storefront/internal/services"
	"github.com/coffeehaus/storefront/internal/utils"
	"github.com/coffeehaus/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type NotificationHandler struct {
	notificationService service.NotificationService
	validator           *validator.Validate
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, validator: validator.New()}
}

func (h *NotificationHandler) SendEmail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.EmailNotificationRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		notification, err := h.notificationService.SendEmail(r.Context(), &req)
		if err != nil {
			logger.Error("Email delivery failed", "recipient", req.Recipient, "error", err.Error())
			response.Error(w, err)
			return
		}

		logger.Info("Email sent", "notificationId", notification.ID.String())
		response.Success(w, http.StatusCreated, notification)
	}
}

func (h *NotificationHandler) ListNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		recipient := r.URL.Query().Get("recipient")
		if recipient == "" {
			response.Success(w, http.StatusOK, models.PaginatedResponse{})
			return
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

		page, size = models.NormalizePage(page, size)

		notifications, total, err := h.notificationService.ListNotifications(r.Context(), recipient, page, size)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.PaginatedResponse{
			Data:     notifications,
			Total:    total,
			Page:     page,
			PageSize: size,
		})
	}
}
