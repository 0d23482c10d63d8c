package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"tokoadmin/internal/models"
)

// TrashedScope selects live rows, trashed rows, or both.
type TrashedScope int

const (
	ScopeLive TrashedScope = iota
	ScopeOnlyTrashed
	ScopeWithTrashed
)

// LowStockBelow is the upper bound (exclusive) of the low-stock list filter.
const LowStockBelow = 10

const (
	DefaultPerPage = 25
	MaxPerPage     = 100
)

// SortableColumns are the columns a listing may be ordered by.
var SortableColumns = map[string]bool{
	"name":         true,
	"sku":          true,
	"category":     true,
	"status":       true,
	"price":        true,
	"stock":        true,
	"brand":        true,
	"published_at": true,
	"created_at":   true,
	"updated_at":   true,
}

// Sort orders a listing by one column.
type Sort struct {
	Column string
	Desc   bool
}

// ListQuery holds the listing filters. Zero values mean "no restriction".
type ListQuery struct {
	Statuses   []models.Status
	Categories []string
	Featured   *bool
	Visible    *bool
	OutOfStock bool
	LowStock   bool
	// PublishedFrom and PublishedUntil are inclusive calendar dates.
	PublishedFrom  *time.Time
	PublishedUntil *time.Time
	Trashed        TrashedScope
	Search         string
	Sort           Sort
	Page           int
	PerPage        int
}

// Normalize applies the default sort and pagination bounds.
func (q ListQuery) Normalize() ListQuery {
	if q.Sort.Column == "" {
		q.Sort = Sort{Column: "created_at", Desc: true}
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	return q
}

// Summary aggregates the live catalog.
type Summary struct {
	Total      int64
	Active     int64
	LowStock   int64
	Featured   int64
	TotalValue decimal.Decimal
}

// CreatorCount is the number of live products referencing one user.
type CreatorCount struct {
	UserID *string
	Count  int64
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string, scope TrashedScope) (*models.Product, error)
	List(ctx context.Context, query ListQuery) ([]models.Product, int64, error)
	// Toggle flips a boolean column of a live product.
	Toggle(ctx context.Context, id string, column string) error
	// SetFlag sets a boolean column of a live product.
	SetFlag(ctx context.Context, id string, column string, value bool) error
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	ForceDelete(ctx context.Context, id string) error

	CountByCategory(ctx context.Context) (map[string]int64, error)
	Summarize(ctx context.Context, lowStockBelow int) (Summary, error)
	CountByCreator(ctx context.Context) ([]CreatorCount, error)
}
