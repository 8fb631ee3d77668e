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
	"github.com/microcosm-cc/bluemonday"
)

type ProductHandler struct {
	productService *service.ProductService
	validator      *validator.Validate
	sanitizer      *bluemonday.Policy
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
		// Names and descriptions are rendered in storefront pages; strip
		// all markup before anything reaches the database.
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (h *ProductHandler) CreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.CreateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		req.Name = h.sanitizer.Sanitize(req.Name)
		req.Description = h.sanitizer.Sanitize(req.Description)

		product, err := h.productService.CreateProduct(r.Context(), &req)
		if err != nil {
			logger.Error("Product creation failed", "error", err.Error())
			response.Error(w, err)
			return
		}

		logger.Info("Product created", "productId", product.ID)
		response.Success(w, http.StatusCreated, product)
	}
}

func (h *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid product id"))
			return
		}

		product, err := h.productService.GetProductByID(r.Context(), id)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid product id"))
			return
		}

		var req models.UpdateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if req.Name != nil {
			sanitized := h.sanitizer.Sanitize(*req.Name)
			req.Name = &sanitized
		}

		if req.Description != nil {
			sanitized := h.sanitizer.Sanitize(*req.Description)
			req.Description = &sanitized
		}

		product, err := h.productService.UpdateProduct(r.Context(), id, &req)
		if err != nil {
			logger.Error("Product update failed", "productId", id, "error", err.Error())
			response.Error(w, err)
			return
		}

		logger.Info("Product updated", "productId", product.ID)
		response.Success(w, http.StatusOK, product)
	}
}

// for eg: GET /products?page=1&pageSize=10
func (h *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

		products, err := h.productService.ListProducts(r.Context(), page, size)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, products)
	}
}
