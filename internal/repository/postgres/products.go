package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Vinoddhakad18/go-architecture/internal/core/domain"
	"github.com/Vinoddhakad18/go-architecture/internal/core/port"
	"github.com/Vinoddhakad18/go-architecture/internal/repository"
)

var productColumns = []string{
	"id",
	"code",
	"name",
	"description",
	"price_cents",
	"stock",
	"created_at",
	"updated_at",
	"deleted_at",
}

// ProductRepository implements port.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewProductRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewProductRepository(exec pgExecutor) *ProductRepository {
	repo := &ProductRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *ProductRepository) WithTx(tx pgx.Tx) *ProductRepository {
	if tx == nil {
		return r
	}
	return &ProductRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new product row.
func (r *ProductRepository) Create(ctx context.Context, product domain.Product) error {
	query := r.builder.Insert("arch.products").
		Columns(productColumns...).
		Values(
			product.ID,
			product.Code,
			product.Name,
			product.Description,
			product.PriceCents,
			product.Stock,
			product.CreatedAt,
			product.UpdatedAt,
			product.DeletedAt,
		)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert product sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	stmt, args, err := r.builder.
		Select(productColumns...).
		From("arch.products").
		Where(squirrel.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select product sql: %w", err)
	}

	return r.scanProduct(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByCode retrieves a product by its unique code.
func (r *ProductRepository) GetByCode(ctx context.Context, code string) (*domain.Product, error) {
	stmt, args, err := r.builder.
		Select(productColumns...).
		From("arch.products").
		Where(squirrel.Eq{"code": code, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select product sql: %w", err)
	}

	return r.scanProduct(r.exec.QueryRow(ctx, stmt, args...))
}

// Update persists product field changes, including code renames.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) error {
	stmt, args, err := r.builder.
		Update("arch.products").
		Set("code", product.Code).
		Set("name", product.Name).
		Set("description", product.Description).
		Set("price_cents", product.PriceCents).
		Set("stock", product.Stock).
		Set("updated_at", product.UpdatedAt).
		Where(squirrel.Eq{"id": product.ID, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update product sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SoftDelete marks the product deleted without removing the row.
func (r *ProductRepository) SoftDelete(ctx context.Context, id string) error {
	now := time.Now().UTC()
	stmt, args, err := r.builder.
		Update("arch.products").
		Set("deleted_at", now).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete product sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("soft delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns a page of products with a total count for paging metadata.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	filter = filter.Normalize()

	orderBy := "created_at DESC"
	switch filter.Sort {
	case "name":
		orderBy = "name ASC"
	case "price":
		orderBy = "price_cents ASC"
	case "code":
		orderBy = "code ASC"
	}

	stmt, args, err := r.builder.
		Select(productColumns...).
		From("arch.products").
		Where(squirrel.Eq{"deleted_at": nil}).
		OrderBy(orderBy).
		Limit(uint64(filter.Limit)).
		Offset(uint64((filter.Page - 1) * filter.Limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list products sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var items []domain.Product
	for rows.Next() {
		product, err := scanProductRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	countStmt, countArgs, err := r.builder.
		Select("COUNT(*)").
		From("arch.products").
		Where(squirrel.Eq{"deleted_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count products sql: %w", err)
	}

	var total int
	if err := r.exec.QueryRow(ctx, countStmt, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	return &domain.ProductPage{
		Items: items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (r *ProductRepository) scanProduct(row pgx.Row) (*domain.Product, error) {
	product, err := scanProductRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

func scanProductRow(row pgx.Row) (*domain.Product, error) {
	var product domain.Product
	if err := row.Scan(
		&product.ID,
		&product.Code,
		&product.Name,
		&product.Description,
		&product.PriceCents,
		&product.Stock,
		&product.CreatedAt,
		&product.UpdatedAt,
		&product.DeletedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &product, nil
}

var _ port.ProductRepository = (*ProductRepository)(nil)
