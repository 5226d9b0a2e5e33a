package port

import (
	"context"

	"github.com/Vinoddhakad18/go-architecture/internal/core/domain"
)

// ProductRepository persists catalog products.
type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByCode(ctx context.Context, code string) (*domain.Product, error)
	Update(ctx context.Context, product domain.Product) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error)
}
