package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tokoadmin/internal/apperrors"
	"tokoadmin/internal/models"
	"tokoadmin/internal/repositories"
)

// Suffixes appended by Duplicate.
const (
	CopyNameSuffix = " (Copy)"
	CopySlugInfix  = "-copy-"
	CopySKUSuffix  = "-COPY"
)

// ProductInput is the authoring form's payload for create and update.
// Nil pointers mean "not provided": defaults apply on create and the
// stored value is kept on update.
type ProductInput struct {
	Name           string
	Slug           string
	SKU            string
	Description    string
	Price          *decimal.Decimal
	Cost           *decimal.Decimal
	Stock          *int
	Status         models.Status
	IsFeatured     *bool
	IsVisible      *bool
	Brand          string
	Category       string
	Images         []string
	Tags           []string
	Specifications map[string]string
	PublishedAt    *time.Time
	UserID         *string
}

// BulkFailure records why one id of a bulk action failed.
type BulkFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// BulkResult reports the outcome of a best-effort bulk action.
type BulkResult struct {
	Succeeded    int           `json:"succeeded"`
	Failed       []BulkFailure `json:"failed"`
	SucceededIDs []string      `json:"succeeded_ids"`
}

// ProductService handles the write side of the catalog.
type ProductService struct {
	repo     repositories.ProductRepository
	notify   notifier
	newToken func() string
}

// NewProductService creates a new ProductService. publisher and reports
// may be nil.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher, reports ReportInvalidator) *ProductService {
	return &ProductService{
		repo:     repo,
		notify:   notifier{publisher: publisher, invalidator: reports},
		newToken: duplicateToken,
	}
}

// duplicateToken returns 8 random hex characters.
func duplicateToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// Create stores a new product. The slug is derived from the name unless
// the input carries one explicitly.
func (s *ProductService) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	product := &models.Product{
		Status:    models.StatusDraft,
		IsVisible: true,
	}
	verr := &apperrors.ValidationError{}

	if input.Price == nil {
		verr.Add("price", "is required")
	}
	input.Slug = strings.TrimSpace(input.Slug)
	if input.Slug != "" {
		if !IsSlug(input.Slug) {
			verr.Add("slug", "must contain only lowercase letters, digits and single hyphens")
		}
		product.Slug = input.Slug
	} else {
		product.Slug = Slugify(input.Name)
		if product.Slug == "" && strings.TrimSpace(input.Name) != "" {
			verr.Add("slug", "could not be derived from name")
		}
	}

	applyInput(product, input)
	if err := collect(verr, product); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("product_id", product.ID).Str("sku", product.SKU).Msg("product created")
	s.notify.changed(ctx, ProductEvent{Event: EventProductCreated, ProductID: product.ID, Name: product.Name, SKU: product.SKU})
	return s.repo.GetByID(ctx, product.ID, repositories.ScopeLive)
}

// Update rewrites a live product from the form input. The slug is never
// re-derived from the name; a non-empty Slug is an explicit override.
func (s *ProductService) Update(ctx context.Context, id string, input ProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id, repositories.ScopeLive)
	if err != nil {
		return nil, err
	}
	verr := &apperrors.ValidationError{}

	if slug := strings.TrimSpace(input.Slug); slug != "" && slug != product.Slug {
		if !IsSlug(slug) {
			verr.Add("slug", "must contain only lowercase letters, digits and single hyphens")
		}
		product.Slug = slug
	}

	applyInput(product, input)
	if err := collect(verr, product); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	s.notify.changed(ctx, ProductEvent{Event: EventProductUpdated, ProductID: product.ID, Name: product.Name, SKU: product.SKU})
	return s.repo.GetByID(ctx, id, repositories.ScopeLive)
}

// applyInput copies the provided form fields onto product.
func applyInput(product *models.Product, input ProductInput) {
	product.Name = strings.TrimSpace(input.Name)
	product.SKU = strings.TrimSpace(input.SKU)
	product.Description = input.Description
	product.Brand = strings.TrimSpace(input.Brand)
	product.Category = strings.TrimSpace(input.Category)
	product.Images = input.Images
	product.Tags = normalizeTags(input.Tags)
	product.Specifications = input.Specifications
	if input.UserID != nil {
		userID := *input.UserID
		product.UserID = &userID
	}

	if input.Price != nil {
		product.Price = input.Price.Round(2)
	}
	if input.Cost != nil {
		cost := input.Cost.Round(2)
		product.Cost = &cost
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Status != "" {
		product.Status = input.Status
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}
	if input.IsVisible != nil {
		product.IsVisible = *input.IsVisible
	}
	if input.PublishedAt != nil {
		day := repositories.StartOfDay(*input.PublishedAt)
		product.PublishedAt = &day
	}
}

// normalizeTags trims tags, drops blanks and keeps the first occurrence of
// each tag.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// collect merges the record's field violations into verr.
func collect(verr *apperrors.ValidationError, product *models.Product) error {
	if err := product.Validate(); err != nil {
		var ve *apperrors.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		verr.Fields = append(verr.Fields, ve.Fields...)
	}
	return verr.OrNil()
}

// ToggleFeatured flips is_featured and returns the updated product.
func (s *ProductService) ToggleFeatured(ctx context.Context, id string) (*models.Product, error) {
	if err := s.repo.Toggle(ctx, id, "is_featured"); err != nil {
		return nil, err
	}
	product, err := s.repo.GetByID(ctx, id, repositories.ScopeLive)
	if err != nil {
		return nil, err
	}
	event := EventProductUnfeatured
	if product.IsFeatured {
		event = EventProductFeatured
	}
	s.notify.changed(ctx, ProductEvent{Event: event, ProductID: id, Name: product.Name})
	return product, nil
}

// ToggleVisibility flips is_visible and returns the updated product.
func (s *ProductService) ToggleVisibility(ctx context.Context, id string) (*models.Product, error) {
	if err := s.repo.Toggle(ctx, id, "is_visible"); err != nil {
		return nil, err
	}
	product, err := s.repo.GetByID(ctx, id, repositories.ScopeLive)
	if err != nil {
		return nil, err
	}
	event := EventProductHidden
	if product.IsVisible {
		event = EventProductVisible
	}
	s.notify.changed(ctx, ProductEvent{Event: event, ProductID: id, Name: product.Name})
	return product, nil
}

// Duplicate copies a live product under a new id. The copy's name gets
// " (Copy)", its slug "-copy-<token>" and its sku "-COPY". A ConflictError
// means the copy collided with a live product; retrying draws a new token.
// The suffixes count toward the length limits, so a source whose name or
// sku is within 7 or 5 characters of its limit yields a ValidationError.
func (s *ProductService) Duplicate(ctx context.Context, id string) (*models.Product, error) {
	source, err := s.repo.GetByID(ctx, id, repositories.ScopeLive)
	if err != nil {
		return nil, err
	}

	dup := *source
	dup.ID = ""
	dup.CreatedAt = time.Time{}
	dup.UpdatedAt = time.Time{}
	dup.DeletedAt = gorm.DeletedAt{}
	dup.Name = source.Name + CopyNameSuffix
	dup.Slug = source.Slug + CopySlugInfix + s.newToken()
	dup.SKU = source.SKU + CopySKUSuffix
	dup.Images = append([]string(nil), source.Images...)
	dup.Tags = append([]string(nil), source.Tags...)
	if source.Specifications != nil {
		dup.Specifications = make(map[string]string, len(source.Specifications))
		for k, v := range source.Specifications {
			dup.Specifications[k] = v
		}
	}
	if source.Cost != nil {
		cost := *source.Cost
		dup.Cost = &cost
	}
	if source.PublishedAt != nil {
		published := *source.PublishedAt
		dup.PublishedAt = &published
	}
	if source.UserID != nil {
		userID := *source.UserID
		dup.UserID = &userID
	}

	if err := s.repo.Create(ctx, &dup); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("source_id", id).Str("product_id", dup.ID).Msg("product duplicated")
	s.notify.changed(ctx, ProductEvent{Event: EventProductDuplicated, ProductID: dup.ID, SourceID: id, Name: dup.Name, SKU: dup.SKU})
	return s.repo.GetByID(ctx, dup.ID, repositories.ScopeLive)
}

// SoftDelete moves a live product to the trash.
func (s *ProductService) SoftDelete(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.notify.changed(ctx, ProductEvent{Event: EventProductDeleted, ProductID: id})
	return nil
}

// Restore brings a trashed product back.
func (s *ProductService) Restore(ctx context.Context, id string) error {
	if err := s.repo.Restore(ctx, id); err != nil {
		return err
	}
	s.notify.changed(ctx, ProductEvent{Event: EventProductRestored, ProductID: id})
	return nil
}

// ForceDelete permanently removes a trashed product. Live products must be
// soft-deleted first.
func (s *ProductService) ForceDelete(ctx context.Context, id string) error {
	if err := s.repo.ForceDelete(ctx, id); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("product_id", id).Msg("product permanently deleted")
	s.notify.changed(ctx, ProductEvent{Event: EventProductForceDeleted, ProductID: id})
	return nil
}

// BulkFeature features every given live product.
func (s *ProductService) BulkFeature(ctx context.Context, ids []string) BulkResult {
	result := s.bulk(ctx, ids, func(id string) error {
		return s.repo.SetFlag(ctx, id, "is_featured", true)
	})
	s.notifyBulk(ctx, EventProductsFeatured, result)
	return result
}

// BulkHide hides every given live product.
func (s *ProductService) BulkHide(ctx context.Context, ids []string) BulkResult {
	result := s.bulk(ctx, ids, func(id string) error {
		return s.repo.SetFlag(ctx, id, "is_visible", false)
	})
	s.notifyBulk(ctx, EventProductsHidden, result)
	return result
}

// BulkSoftDelete trashes every given live product.
func (s *ProductService) BulkSoftDelete(ctx context.Context, ids []string) BulkResult {
	result := s.bulk(ctx, ids, func(id string) error {
		return s.repo.SoftDelete(ctx, id)
	})
	s.notifyBulk(ctx, EventProductsDeleted, result)
	return result
}

// BulkRestore restores every given trashed product.
func (s *ProductService) BulkRestore(ctx context.Context, ids []string) BulkResult {
	result := s.bulk(ctx, ids, func(id string) error {
		return s.repo.Restore(ctx, id)
	})
	s.notifyBulk(ctx, EventProductsRestored, result)
	return result
}

// BulkForceDelete permanently removes every given trashed product.
func (s *ProductService) BulkForceDelete(ctx context.Context, ids []string) BulkResult {
	result := s.bulk(ctx, ids, func(id string) error {
		return s.repo.ForceDelete(ctx, id)
	})
	s.notifyBulk(ctx, EventProductsPurged, result)
	return result
}

// bulk applies fn to each distinct id. A failure is recorded and the
// remaining ids are still processed.
func (s *ProductService) bulk(ctx context.Context, ids []string, fn func(id string) error) BulkResult {
	result := BulkResult{Failed: []BulkFailure{}, SucceededIDs: []string{}}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if err := fn(id); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("product_id", id).Msg("bulk action failed for product")
			result.Failed = append(result.Failed, BulkFailure{ID: id, Reason: err.Error(), Err: err})
			continue
		}
		result.Succeeded++
		result.SucceededIDs = append(result.SucceededIDs, id)
	}
	return result
}

func (s *ProductService) notifyBulk(ctx context.Context, event string, result BulkResult) {
	if result.Succeeded == 0 {
		return
	}
	s.notify.changed(ctx, ProductEvent{Event: event, ProductIDs: result.SucceededIDs})
}
