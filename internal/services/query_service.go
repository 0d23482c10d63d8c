package services

import (
	"context"

	"tokoadmin/internal/apperrors"
	"tokoadmin/internal/models"
	"tokoadmin/internal/repositories"
)

// Page is one page of a product listing.
type Page struct {
	Items    []models.Product `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PerPage  int              `json:"per_page"`
	LastPage int              `json:"last_page"`
}

// QueryService serves the read side of the catalog.
type QueryService struct {
	repo  repositories.ProductRepository
	users repositories.UserRepository
}

// NewQueryService creates a new QueryService. users may be nil, in which
// case creator names resolve to "".
func NewQueryService(repo repositories.ProductRepository, users repositories.UserRepository) *QueryService {
	return &QueryService{
		repo:  repo,
		users: users,
	}
}

// List returns one page of products matching the filters.
func (s *QueryService) List(ctx context.Context, query repositories.ListQuery) (*Page, error) {
	query = query.Normalize()
	items, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}
	lastPage := int((total + int64(query.PerPage) - 1) / int64(query.PerPage))
	if lastPage < 1 {
		lastPage = 1
	}
	return &Page{
		Items:    items,
		Total:    total,
		Page:     query.Page,
		PerPage:  query.PerPage,
		LastPage: lastPage,
	}, nil
}

// Get retrieves a single product in the given trashed scope.
func (s *QueryService) Get(ctx context.Context, id string, scope repositories.TrashedScope) (*models.Product, error) {
	return s.repo.GetByID(ctx, id, scope)
}

// CreatorName resolves the display name of the user who created p.
func (s *QueryService) CreatorName(ctx context.Context, p *models.Product) (string, error) {
	if s.users == nil || p.UserID == nil || *p.UserID == "" {
		return "", nil
	}
	user, err := s.users.GetByID(ctx, *p.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return user.Name, nil
}
