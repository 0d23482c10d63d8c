package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tokoadmin/internal/apperrors"
	"tokoadmin/internal/models"
)

const productResource = "product"

var flagColumns = map[string]bool{
	"is_featured": true,
	"is_visible":  true,
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Create validates and inserts a new product.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := product.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, product); err != nil {
			return err
		}
		if err := tx.Create(product).Error; err != nil {
			return translateWriteError(product, "create", err)
		}
		return nil
	})
}

// Update validates and writes every column of a live product except its
// creation time and deletion marker.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findProduct(tx, product.ID, ScopeLive); err != nil {
			return err
		}
		if err := ensureUnique(tx, product); err != nil {
			return err
		}
		res := tx.Model(&models.Product{}).
			Where("id = ?", product.ID).
			Select("*").
			Omit("id", "created_at", "deleted_at").
			Updates(product)
		if res.Error != nil {
			return translateWriteError(product, "update", res.Error)
		}
		return nil
	})
}

// GetByID retrieves a single product in the given scope.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string, scope TrashedScope) (*models.Product, error) {
	return findProduct(r.db.WithContext(ctx), id, scope)
}

// List returns one page of products matching the query and the total
// number of matches.
func (r *GORMProductRepository) List(ctx context.Context, query ListQuery) ([]models.Product, int64, error) {
	query = query.Normalize()
	if !SortableColumns[query.Sort.Column] {
		return nil, 0, apperrors.NewValidation("sort", fmt.Sprintf("cannot sort by %q", query.Sort.Column))
	}

	var total int64
	if err := r.filtered(ctx, query).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	direction := "ASC"
	if query.Sort.Desc {
		direction = "DESC"
	}
	products := []models.Product{}
	err := r.filtered(ctx, query).
		Order(fmt.Sprintf("%s %s", query.Sort.Column, direction)).
		Order("id ASC").
		Offset((query.Page - 1) * query.PerPage).
		Limit(query.PerPage).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

func (r *GORMProductRepository) filtered(ctx context.Context, query ListQuery) *gorm.DB {
	q := withScope(r.db.WithContext(ctx).Model(&models.Product{}), query.Trashed)

	if len(query.Statuses) > 0 {
		q = q.Where("status IN ?", query.Statuses)
	}
	if len(query.Categories) > 0 {
		q = q.Where("category IN ?", query.Categories)
	}
	if query.Featured != nil {
		q = q.Where("is_featured = ?", *query.Featured)
	}
	if query.Visible != nil {
		q = q.Where("is_visible = ?", *query.Visible)
	}
	if query.OutOfStock {
		q = q.Where("stock = ?", 0)
	}
	if query.LowStock {
		q = q.Where("stock > ? AND stock < ?", 0, LowStockBelow)
	}
	if query.PublishedFrom != nil {
		q = q.Where("published_at >= ?", StartOfDay(*query.PublishedFrom))
	}
	if query.PublishedUntil != nil {
		q = q.Where("published_at < ?", StartOfDay(*query.PublishedUntil).AddDate(0, 0, 1))
	}
	if term := strings.TrimSpace(query.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(category) LIKE ?)", like, like, like, like)
	}
	return q
}

// Toggle flips a boolean column of a live product.
func (r *GORMProductRepository) Toggle(ctx context.Context, id string, column string) error {
	if !flagColumns[column] {
		return fmt.Errorf("column %q cannot be toggled", column)
	}
	return r.updateLive(ctx, id, column, gorm.Expr("NOT "+column))
}

// SetFlag sets a boolean column of a live product.
func (r *GORMProductRepository) SetFlag(ctx context.Context, id string, column string, value bool) error {
	if !flagColumns[column] {
		return fmt.Errorf("column %q cannot be set", column)
	}
	return r.updateLive(ctx, id, column, value)
}

func (r *GORMProductRepository) updateLive(ctx context.Context, id, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("failed to update %s of product %s: %w", column, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &apperrors.NotFoundError{Resource: productResource, ID: id}
	}
	return nil
}

// SoftDelete marks a live product as trashed.
func (r *GORMProductRepository) SoftDelete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := findProduct(tx, id, ScopeWithTrashed)
		if err != nil {
			return err
		}
		if product.Trashed() {
			return &apperrors.IllegalStateTransitionError{ID: id, From: "trashed", Action: "delete"}
		}
		if err := tx.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete product %s: %w", id, err)
		}
		return nil
	})
}

// Restore clears the deletion marker of a trashed product. Only
// deleted_at is written so the row comes back exactly as it was trashed.
func (r *GORMProductRepository) Restore(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := findProduct(tx, id, ScopeWithTrashed)
		if err != nil {
			return err
		}
		if !product.Trashed() {
			return &apperrors.IllegalStateTransitionError{ID: id, From: "live", Action: "restore"}
		}
		if err := ensureUnique(tx, product); err != nil {
			return err
		}
		err = tx.Unscoped().Model(&models.Product{}).
			Where("id = ?", id).
			UpdateColumn("deleted_at", nil).Error
		if err != nil {
			return fmt.Errorf("failed to restore product %s: %w", id, err)
		}
		return nil
	})
}

// ForceDelete permanently removes a trashed product.
func (r *GORMProductRepository) ForceDelete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := findProduct(tx, id, ScopeWithTrashed)
		if err != nil {
			return err
		}
		if !product.Trashed() {
			return &apperrors.IllegalStateTransitionError{ID: id, From: "live", Action: "force-delete"}
		}
		if err := tx.Unscoped().Delete(&models.Product{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to force-delete product %s: %w", id, err)
		}
		return nil
	})
}

// CountByCategory counts live products per raw category value.
// Products without a category are reported under the empty key.
func (r *GORMProductRepository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Category string
		Count    int64
	}
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("COALESCE(category, '') AS category, COUNT(*) AS count").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count products by category: %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] += row.Count
	}
	return counts, nil
}

// Summarize aggregates the live catalog in a single query.
func (r *GORMProductRepository) Summarize(ctx context.Context, lowStockBelow int) (Summary, error) {
	var summary Summary
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS active,
			COALESCE(SUM(CASE WHEN stock < ? THEN 1 ELSE 0 END), 0) AS low_stock,
			COALESCE(SUM(CASE WHEN is_featured = ? THEN 1 ELSE 0 END), 0) AS featured,
			COALESCE(SUM(price), 0) AS total_value`,
			models.StatusActive, lowStockBelow, true).
		Scan(&summary).Error
	if err != nil {
		return Summary{}, fmt.Errorf("failed to summarize products: %w", err)
	}
	summary.TotalValue = summary.TotalValue.Round(2)
	return summary, nil
}

// CountByCreator counts live products per referenced user.
func (r *GORMProductRepository) CountByCreator(ctx context.Context) ([]CreatorCount, error) {
	counts := []CreatorCount{}
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("user_id, COUNT(*) AS count").
		Group("user_id").
		Order("count DESC").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count products by creator: %w", err)
	}
	return counts, nil
}

// StartOfDay truncates t to midnight UTC of its calendar date.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func withScope(db *gorm.DB, scope TrashedScope) *gorm.DB {
	switch scope {
	case ScopeWithTrashed:
		return db.Unscoped()
	case ScopeOnlyTrashed:
		return db.Unscoped().Where("deleted_at IS NOT NULL")
	}
	return db
}

func findProduct(db *gorm.DB, id string, scope TrashedScope) (*models.Product, error) {
	var product models.Product
	if err := withScope(db, scope).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Resource: productResource, ID: id}
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// ensureUnique rejects a slug or sku already used by another live product.
func ensureUnique(tx *gorm.DB, product *models.Product) error {
	checks := []struct{ column, value string }{
		{"slug", product.Slug},
		{"sku", product.SKU},
	}
	for _, c := range checks {
		var count int64
		err := tx.Model(&models.Product{}).
			Where(c.column+" = ? AND id <> ?", c.value, product.ID).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check %s uniqueness: %w", c.column, err)
		}
		if count > 0 {
			return &apperrors.ConflictError{Field: c.column, Value: c.value}
		}
	}
	return nil
}

func translateWriteError(product *models.Product, op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost a race with a concurrent writer after ensureUnique
		return &apperrors.ConflictError{Field: "slug/sku", Value: product.Slug + "/" + product.SKU}
	}
	return fmt.Errorf("failed to %s product: %w", op, err)
}
