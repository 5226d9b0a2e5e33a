package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Vinoddhakad18/go-architecture/internal/core/domain"
	"github.com/Vinoddhakad18/go-architecture/internal/core/port"
	"github.com/Vinoddhakad18/go-architecture/internal/repository"
)

var (
	// ErrProductNotFound indicates the requested product does not exist or
	// was deleted.
	ErrProductNotFound = errors.New("product not found")
	// ErrCodeTaken indicates another product already owns the code.
	ErrCodeTaken = errors.New("product code already in use")
)

// CacheObserver receives cache hit/miss signals for metrics. Implementations
// must be cheap and non-blocking.
type CacheObserver interface {
	CacheHit(entity string)
	CacheMiss(entity string)
}

// ProductService handles product CRUD with a read-through cache. Reads check
// the cache before the database and populate it on a miss. Writes hit the
// database first and then invalidate the identity key, the code key (old and
// new on a rename) and every cached listing. Invalidation failures are
// logged, never surfaced: the entries expire on their own TTL.
type ProductService struct {
	products port.ProductRepository
	cache    port.TTLStore
	ttls     domain.CacheTTLs
	observer CacheObserver
	logger   *zap.Logger
	now      func() time.Time
}

// NewProductService constructs a ProductService.
func NewProductService(products port.ProductRepository, cache port.TTLStore, ttls domain.CacheTTLs, log *zap.Logger) *ProductService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductService{
		products: products,
		cache:    cache,
		ttls:     ttls,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (s *ProductService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// WithCacheObserver attaches a hit/miss recorder.
func (s *ProductService) WithCacheObserver(observer CacheObserver) {
	s.observer = observer
}

// CreateProductInput carries the writable product fields.
type CreateProductInput struct {
	Code        string
	Name        string
	Description string
	PriceCents  int64
	Stock       int
}

// CreateProduct inserts a new product and invalidates cached listings.
func (s *ProductService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	if code == "" {
		return nil, fmt.Errorf("code is required")
	}
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if input.PriceCents < 0 {
		return nil, fmt.Errorf("price must not be negative")
	}

	now := s.now()
	product := domain.Product{
		ID:          uuid.NewString(),
		Code:        code,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		PriceCents:  input.PriceCents,
		Stock:       input.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrCodeTaken
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.invalidateListings(ctx)

	return &product, nil
}

// GetProduct loads a product by id, consulting the cache first.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrProductNotFound
	}

	key := domain.CacheKeyProduct(id)
	if product := s.cacheGet(ctx, key); product != nil {
		return product, nil
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	s.cacheSet(ctx, key, product, s.ttls.For(domain.CacheTierMedium))

	return product, nil
}

// GetProductByCode loads a product through its unique code.
func (s *ProductService) GetProductByCode(ctx context.Context, code string) (*domain.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrProductNotFound
	}

	key := domain.CacheKeyProductCode(code)
	if product := s.cacheGet(ctx, key); product != nil {
		return product, nil
	}

	product, err := s.products.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product by code: %w", err)
	}

	s.cacheSet(ctx, key, product, s.ttls.For(domain.CacheTierMedium))

	return product, nil
}

// ListProducts returns a page of products. Each distinct page/limit/sort
// combination is cached under its own key with a short TTL.
func (s *ProductService) ListProducts(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	filter = filter.Normalize()
	key := domain.CacheKeyProductList(filter)

	if s.cache != nil {
		var cached domain.ProductPage
		found, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("product cache read failed", zap.String("key", key), zap.Error(err))
		} else if found {
			s.observeHit("product_list")
			return &cached, nil
		}
		s.observeMiss("product_list")
	}

	page, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	s.cacheSet(ctx, key, page, s.ttls.For(domain.CacheTierShort))

	return page, nil
}

// UpdateProductInput carries the fields an update may change. Nil pointers
// leave the field untouched.
type UpdateProductInput struct {
	Code        *string
	Name        *string
	Description *string
	PriceCents  *int64
	Stock       *int
}

// UpdateProduct applies the provided changes and invalidates every cache key
// the product could be served from, including the previous code key on a
// rename.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	oldCode := product.Code

	if input.Code != nil {
		code := strings.TrimSpace(*input.Code)
		if code == "" {
			return nil, fmt.Errorf("code must not be empty")
		}
		product.Code = code
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("name must not be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, fmt.Errorf("price must not be negative")
		}
		product.PriceCents = *input.PriceCents
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	product.UpdatedAt = s.now()

	if err := s.products.Update(ctx, *product); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrProductNotFound
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrCodeTaken
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	keys := []string{domain.CacheKeyProduct(product.ID), domain.CacheKeyProductCode(product.Code)}
	if oldCode != product.Code {
		keys = append(keys, domain.CacheKeyProductCode(oldCode))
	}
	s.cacheDelete(ctx, keys...)
	s.invalidateListings(ctx)

	return product, nil
}

// DeleteProduct soft-deletes the product and drops every cache key that
// could still serve it.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("get product: %w", err)
	}

	if err := s.products.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}

	s.cacheDelete(ctx, domain.CacheKeyProduct(id), domain.CacheKeyProductCode(product.Code))
	s.invalidateListings(ctx)

	return nil
}

func (s *ProductService) cacheGet(ctx context.Context, key string) *domain.Product {
	if s.cache == nil {
		return nil
	}
	var cached domain.Product
	found, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("product cache read failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	if !found {
		s.observeMiss("product")
		return nil
	}
	s.observeHit("product")
	return &cached
}

func (s *ProductService) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	if s.cache == nil || ttl <= 0 {
		return
	}
	if err := s.cache.SetJSON(ctx, key, value, ttl); err != nil {
		s.logger.Warn("product cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *ProductService) cacheDelete(ctx context.Context, keys ...string) {
	if s.cache == nil || len(keys) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("product cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (s *ProductService) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, domain.CacheProductListPattern); err != nil {
		s.logger.Warn("product listing invalidation failed", zap.Error(err))
	}
}

func (s *ProductService) observeHit(entity string) {
	if s.observer != nil {
		s.observer.CacheHit(entity)
	}
}

func (s *ProductService) observeMiss(entity string) {
	if s.observer != nil {
		s.observer.CacheMiss(entity)
	}
}
