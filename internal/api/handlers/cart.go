package handlers

import (
	"net/http"
	"strconv"

	"github.com/coffeehaus/storefront/internal/api/middleware"
	"github.com/coffeehaus/storefront/internal/errors"
	"github.com/coffeehaus/storefront/internal/models"
	service "github.com/coffeehaus/storefront/internal/services"
	"github.com/coffeehaus/storefront/internal/utils"
	"github.com/coffeehaus/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CartHandler struct {
	cartService *service.CartService
	validator   *validator.Validate
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService, validator: validator.New()}
}

// cartOwner resolves the cart key for the authenticated user. Carts are
// partitioned per user; no request can reach another user's cart.
func cartOwner(r *http.Request) (string, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return "", false
	}

	return claims.UserID.String(), true
}

func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		owner, ok := cartOwner(r)
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		cart, err := h.cartService.GetCart(r.Context(), owner)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		owner, ok := cartOwner(r)
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		snapshot, err := req.Snapshot()
		if err != nil {
			response.Error(w, err)
			return
		}

		cart, err := h.cartService.AddItem(r.Context(), owner, snapshot, req.Quantity, req.Override)
		if err != nil {
			logger.Warn("Failed to add item to cart", "productId", req.ProductID, "error", err.Error())
			response.Error(w, err)
			return
		}

		logger.Info("Item added to cart", "productId", req.ProductID, "quantity", req.Quantity)
		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) AdjustItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		owner, ok := cartOwner(r)
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.AdjustItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if err := req.Validate(); err != nil {
			response.Error(w, err)
			return
		}

		cart, err := h.cartService.AdjustItem(r.Context(), owner, req.ProductID, req.Delta)
		if err != nil {
			logger.Warn("Failed to adjust cart item", "productId", req.ProductID, "error", err.Error())
			response.Error(w, err)
			return
		}

		logger.Info("Cart item adjusted", "productId", req.ProductID, "delta", req.Delta)
		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		owner, ok := cartOwner(r)
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		productID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid product id"))
			return
		}

		cart, err := h.cartService.RemoveItem(r.Context(), owner, productID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		owner, ok := cartOwner(r)
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		if err := h.cartService.ClearCart(r.Context(), owner); err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, map[string]string{"status": "cleared"})
	}
}
