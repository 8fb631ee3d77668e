package handlers

import (
	"net/http"
	"strconv"

	"github.com/coffeehaus/storefront/internal/api/middleware"
	"github.com/coffeehaus/storefront/internal/errors"
	"github.com/coffeehaus/storefront/internal/metrics"
	service "github.com/coffeehaus/storefront/internal/services"
	"github.com/coffeehaus/storefront/internal/utils/response"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Checkout commits the authenticated user's cart into an order. The body is
// empty; everything the commit needs is already in the cart and catalog.
func (h *OrderHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		owner, ok := cartOwner(r)
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		order, err := h.orderService.Checkout(r.Context(), owner)
		if err != nil {
			metrics.ObserveCheckout(false)
			logger.Warn("Checkout failed", "error", err.Error())
			response.Error(w, err)
			return
		}

		metrics.ObserveCheckout(true)
		logger.Info("Order committed", "orderId", order.ID, "items", order.ItemCount())
		response.Success(w, http.StatusCreated, order)
	}
}

func (h *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		owner, ok := cartOwner(r)
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid order id"))
			return
		}

		order, err := h.orderService.GetOrderByID(r.Context(), owner, id)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

// MarkPaid settles an order after out-of-band payment.
func (h *OrderHandler) MarkPaid() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		owner, ok := cartOwner(r)
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid order id"))
			return
		}

		order, err := h.orderService.MarkPaid(r.Context(), owner, id)
		if err != nil {
			response.Error(w, err)
			return
		}

		logger.Info("Order marked paid", "orderId", order.ID)
		response.Success(w, http.StatusOK, order)
	}
}

func (h *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		owner, ok := cartOwner(r)
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

		history, err := h.orderService.ListOrders(r.Context(), owner, page, size)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, history)
	}
}
