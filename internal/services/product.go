package service

import (
	"context"
	"log/slog"

	"github.com/coffeehaus/storefront/internal/cache"
	"github.com/coffeehaus/storefront/internal/errors"
	"github.com/coffeehaus/storefront/internal/models"
	repository "github.com/coffeehaus/storefront/internal/repositories"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// ProductService is the catalog's read/write surface for browsing. Reads go
// through the cache; the coordinator's re-pricing deliberately bypasses
// this service and hits the repository, so checkout always sees live prices.
type ProductService struct {
	repo  repository.ProductRepository
	cache cache.Cache
	sfg   singleflight.Group // collapses concurrent misses for the same product
}

func NewProductService(repo repository.ProductRepository, productCache cache.Cache) *ProductService {
	return &ProductService{repo: repo, cache: productCache}
}

func (s *ProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return nil, errors.AddValidationError("price", "must be a non-negative decimal number")
	}

	product := &models.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Status:      "active",
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, errors.DatabaseError("Failed to create product").WithError(err)
	}

	return product, nil
}

func (s *ProductService) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {

	key := cache.ProductKey(id)

	var cached models.Product

	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		slog.Warn("Product cache read failed", slog.String("key", key), slog.Any("error", err))
	}

	if found {
		return &cached, nil
	}

	v, err, _ := s.sfg.Do(key, func() (any, error) {
		product, err := s.repo.GetProductByID(ctx, id)
		if err != nil {
			if err == repository.ErrProductNotFound {
				return nil, errors.ProductNotFoundError("Product not found")
			}

			return nil, errors.DatabaseError("Failed to fetch product").WithError(err)
		}

		if err := s.cache.Set(ctx, key, product, 0); err != nil {
			slog.Warn("Product cache write failed", slog.String("key", key), slog.Any("error", err))
		}

		return product, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*models.Product), nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error) {

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if err == repository.ErrProductNotFound {
			return nil, errors.ProductNotFoundError("Product not found")
		}

		return nil, errors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
	}

	if req.Name != nil {
		product.Name = *req.Name
	}

	if req.Description != nil {
		product.Description = *req.Description
	}

	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil || price.IsNegative() {
			return nil, errors.AddValidationError("price", "must be a non-negative decimal number")
		}

		product.Price = price
	}

	if req.Status != nil {
		product.Status = *req.Status
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, errors.DatabaseError("Failed to update product").WithError(err)
	}

	// Drop the stale cache entry; the next read repopulates it.
	key := cache.ProductKey(id)
	if err := s.cache.Delete(ctx, key); err != nil {
		slog.Warn("Product cache invalidation failed", slog.String("key", key), slog.Any("error", err))
	}

	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, page, size int) (*models.PaginatedResponse, error) {

	if page < 1 {
		page = 1
	}

	if size < 1 || size > 100 {
		size = 20
	}

	products, total, err := s.repo.ListProducts(ctx, page, size)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch products").WithError(err)
	}

	return &models.PaginatedResponse{
		Data:     products,
		Total:    total,
		Page:     page,
		PageSize: size,
	}, nil
}
