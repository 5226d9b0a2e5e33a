package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Vinoddhakad18/go-architecture/internal/core/domain"
)

var testCacheTTLs = domain.CacheTTLs{
	Short:  time.Minute,
	Medium: 10 * time.Minute,
	Long:   time.Hour,
}

type productFixture struct {
	service *ProductService
	repo    *fakeProductRepository
	cache   *fakeTTLStore
}

func newProductFixture(t *testing.T, now func() time.Time, products ...domain.Product) *productFixture {
	t.Helper()

	repo := newFakeProductRepository(products...)
	cache := newFakeTTLStore(now)

	service := NewProductService(repo, cache, testCacheTTLs, nil)
	service.WithClock(now)

	return &productFixture{service: service, repo: repo, cache: cache}
}

func testProduct() domain.Product {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return domain.Product{
		ID:         "prod-1",
		Code:       "SKU-001",
		Name:       "Widget",
		PriceCents: 1299,
		Stock:      5,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func TestProductService_GetProductReadThrough(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	fx := newProductFixture(t, now, testProduct())

	first, err := fx.service.GetProduct(context.Background(), "prod-1")
	if err != nil {
		t.Fatalf("GetProduct returned error: %v", err)
	}
	if first.Code != "SKU-001" {
		t.Fatalf("unexpected product: %+v", first)
	}
	if fx.repo.getCalls != 1 {
		t.Fatalf("expected one repository read, got %d", fx.repo.getCalls)
	}

	ttl, ok := fx.cache.ttlOf(domain.CacheKeyProduct("prod-1"))
	if !ok {
		t.Fatalf("expected miss to populate the cache")
	}
	if ttl != testCacheTTLs.Medium {
		t.Fatalf("expected medium tier TTL, got %s", ttl)
	}

	// The second read is served from the cache.
	second, err := fx.service.GetProduct(context.Background(), "prod-1")
	if err != nil {
		t.Fatalf("GetProduct returned error: %v", err)
	}
	if fx.repo.getCalls != 1 {
		t.Fatalf("expected cached read, repository saw %d calls", fx.repo.getCalls)
	}
	if second.Name != first.Name || second.PriceCents != first.PriceCents {
		t.Fatalf("cached product diverged: %+v", second)
	}
}

func TestProductService_GetProductByCodeReadThrough(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	fx := newProductFixture(t, now, testProduct())

	if _, err := fx.service.GetProductByCode(context.Background(), "SKU-001"); err != nil {
		t.Fatalf("GetProductByCode returned error: %v", err)
	}
	if _, ok := fx.cache.ttlOf(domain.CacheKeyProductCode("SKU-001")); !ok {
		t.Fatalf("expected code key to be cached")
	}

	if _, err := fx.service.GetProductByCode(context.Background(), "SKU-001"); err != nil {
		t.Fatalf("GetProductByCode returned error: %v", err)
	}
	if fx.repo.getCalls != 1 {
		t.Fatalf("expected cached read, repository saw %d calls", fx.repo.getCalls)
	}
}

func TestProductService_GetProductNotFound(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	fx := newProductFixture(t, now)

	if _, err := fx.service.GetProduct(context.Background(), "missing"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if _, err := fx.service.GetProduct(context.Background(), "  "); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound for blank id, got %v", err)
	}
}

func TestProductService_ListProductsCached(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	fx := newProductFixture(t, now, testProduct())

	filter := domain.ProductFilter{Page: 1, Limit: 20}
	page, err := fx.service.ListProducts(context.Background(), filter)
	if err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}

	ttl, ok := fx.cache.ttlOf(domain.CacheKeyProductList(filter))
	if !ok {
		t.Fatalf("expected listing to be cached")
	}
	if ttl != testCacheTTLs.Short {
		t.Fatalf("expected short tier TTL for listings, got %s", ttl)
	}

	if _, err := fx.service.ListProducts(context.Background(), filter); err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}
	if fx.repo.listCalls != 1 {
		t.Fatalf("expected cached listing, repository saw %d calls", fx.repo.listCalls)
	}
}

func TestProductService_CreateInvalidatesListings(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	fx := newProductFixture(t, now)

	// Warm a listing entry so there is something to drop.
	if _, err := fx.service.ListProducts(context.Background(), domain.ProductFilter{}); err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}

	created, err := fx.service.CreateProduct(context.Background(), CreateProductInput{
		Code:       "SKU-002",
		Name:       "Gadget",
		PriceCents: 4999,
	})
	if err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}

	if len(fx.cache.deletedPatterns) != 1 || fx.cache.deletedPatterns[0] != domain.CacheProductListPattern {
		t.Fatalf("expected listing pattern invalidation, got %v", fx.cache.deletedPatterns)
	}
	if _, ok := fx.cache.ttlOf(domain.CacheKeyProductList(domain.ProductFilter{})); ok {
		t.Fatalf("expected cached listing to be dropped")
	}
}

func TestProductService_CreateDuplicateCode(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	fx := newProductFixture(t, now, testProduct())

	_, err := fx.service.CreateProduct(context.Background(), CreateProductInput{Code: "SKU-001", Name: "Clone"})
	if !errors.Is(err, ErrCodeTaken) {
		t.Fatalf("expected ErrCodeTaken, got %v", err)
	}
}

func TestProductService_UpdateInvalidatesOldCodeKey(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	fx := newProductFixture(t, now, testProduct())

	// Warm both lookup keys.
	if _, err := fx.service.GetProduct(context.Background(), "prod-1"); err != nil {
		t.Fatalf("GetProduct returned error: %v", err)
	}
	if _, err := fx.service.GetProductByCode(context.Background(), "SKU-001"); err != nil {
		t.Fatalf("GetProductByCode returned error: %v", err)
	}

	newCode := "SKU-RENAMED"
	updated, err := fx.service.UpdateProduct(context.Background(), "prod-1", UpdateProductInput{Code: &newCode})
	if err != nil {
		t.Fatalf("UpdateProduct returned error: %v", err)
	}
	if updated.Code != newCode {
		t.Fatalf("unexpected product: %+v", updated)
	}

	for _, key := range []string{
		domain.CacheKeyProduct("prod-1"),
		domain.CacheKeyProductCode(newCode),
		domain.CacheKeyProductCode("SKU-001"),
	} {
		if !containsKey(fx.cache.deletedKeys, key) {
			t.Fatalf("expected %s to be invalidated, deleted: %v", key, fx.cache.deletedKeys)
		}
	}

	// The stale code key no longer serves the product.
	if _, ok := fx.cache.ttlOf(domain.CacheKeyProductCode("SKU-001")); ok {
		t.Fatalf("expected old code key to be dropped")
	}
}

func TestProductService_DeleteInvalidatesEverything(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	fx := newProductFixture(t, now, testProduct())

	if _, err := fx.service.GetProduct(context.Background(), "prod-1"); err != nil {
		t.Fatalf("GetProduct returned error: %v", err)
	}
	if _, err := fx.service.ListProducts(context.Background(), domain.ProductFilter{}); err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}

	if err := fx.service.DeleteProduct(context.Background(), "prod-1"); err != nil {
		t.Fatalf("DeleteProduct returned error: %v", err)
	}

	if !containsKey(fx.cache.deletedKeys, domain.CacheKeyProduct("prod-1")) {
		t.Fatalf("expected identity key invalidation, deleted: %v", fx.cache.deletedKeys)
	}
	if !containsKey(fx.cache.deletedKeys, domain.CacheKeyProductCode("SKU-001")) {
		t.Fatalf("expected code key invalidation, deleted: %v", fx.cache.deletedKeys)
	}
	if len(fx.cache.deletedPatterns) == 0 {
		t.Fatalf("expected listing pattern invalidation")
	}

	if _, err := fx.service.GetProduct(context.Background(), "prod-1"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected deleted product to be gone, got %v", err)
	}

	if err := fx.service.DeleteProduct(context.Background(), "prod-1"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected second delete to report ErrProductNotFound, got %v", err)
	}
}

func TestProductService_CacheFailuresAreSwallowed(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	fx := newProductFixture(t, now, testProduct())

	// A broken cache degrades to plain database reads and writes.
	fx.cache.getErr = errors.New("cache down")
	fx.cache.setErr = errors.New("cache down")
	fx.cache.delErr = errors.New("cache down")

	if _, err := fx.service.GetProduct(context.Background(), "prod-1"); err != nil {
		t.Fatalf("GetProduct should survive a cache outage, got %v", err)
	}
	if _, err := fx.service.ListProducts(context.Background(), domain.ProductFilter{}); err != nil {
		t.Fatalf("ListProducts should survive a cache outage, got %v", err)
	}

	price := int64(1599)
	if _, err := fx.service.UpdateProduct(context.Background(), "prod-1", UpdateProductInput{PriceCents: &price}); err != nil {
		t.Fatalf("UpdateProduct should survive a cache outage, got %v", err)
	}
	if err := fx.service.DeleteProduct(context.Background(), "prod-1"); err != nil {
		t.Fatalf("DeleteProduct should survive a cache outage, got %v", err)
	}
}

func TestProductService_ObserverSeesHitsAndMisses(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	fx := newProductFixture(t, now, testProduct())

	observer := &recordingObserver{}
	fx.service.WithCacheObserver(observer)

	if _, err := fx.service.GetProduct(context.Background(), "prod-1"); err != nil {
		t.Fatalf("GetProduct returned error: %v", err)
	}
	if _, err := fx.service.GetProduct(context.Background(), "prod-1"); err != nil {
		t.Fatalf("GetProduct returned error: %v", err)
	}

	if observer.misses["product"] != 1 {
		t.Fatalf("expected one product miss, got %d", observer.misses["product"])
	}
	if observer.hits["product"] != 1 {
		t.Fatalf("expected one product hit, got %d", observer.hits["product"])
	}
}

type recordingObserver struct {
	hits   map[string]int
	misses map[string]int
}

func (o *recordingObserver) CacheHit(entity string) {
	if o.hits == nil {
		o.hits = make(map[string]int)
	}
	o.hits[entity]++
}

func (o *recordingObserver) CacheMiss(entity string) {
	if o.misses == nil {
		o.misses = make(map[string]int)
	}
	o.misses[entity]++
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
