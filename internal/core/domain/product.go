package domain

import "time"

// Product mirrors the persisted representation in the products table.
// Code is a unique, human-facing identifier used as a secondary lookup key.
type Product struct {
	ID          string
	Code        string
	Name        string
	Description string
	PriceCents  int64
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// ProductFilter scopes product listings.
type ProductFilter struct {
	Page  int
	Limit int
	Sort  string
}

// Normalize clamps paging values into usable ranges.
func (f ProductFilter) Normalize() ProductFilter {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Sort == "" {
		f.Sort = "created_at"
	}
	return f
}

// ProductPage is a single page of listed products.
type ProductPage struct {
	Items []Product
	Total int
	Page  int
	Limit int
}
