package repositories

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tokoadmin/internal/models"
)

// MockProductRepository is a testify mock of ProductRepository for tests
// that need to inject store failures.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string, scope TrashedScope) (*models.Product, error) {
	args := m.Called(ctx, id, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, query ListQuery) ([]models.Product, int64, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Toggle(ctx context.Context, id string, column string) error {
	args := m.Called(ctx, id, column)
	return args.Error(0)
}

func (m *MockProductRepository) SetFlag(ctx context.Context, id string, column string, value bool) error {
	args := m.Called(ctx, id, column, value)
	return args.Error(0)
}

func (m *MockProductRepository) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Restore(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) ForceDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockProductRepository) Summarize(ctx context.Context, lowStockBelow int) (Summary, error) {
	args := m.Called(ctx, lowStockBelow)
	return args.Get(0).(Summary), args.Error(1)
}

func (m *MockProductRepository) CountByCreator(ctx context.Context) ([]CreatorCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]CreatorCount), args.Error(1)
}
