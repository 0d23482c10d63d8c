package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tokoadmin/internal/database"
	"tokoadmin/internal/repositories"
	"tokoadmin/internal/services"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(routingKey string, body []byte) error {
	args := m.Called(routingKey, body)
	return args.Error(0)
}

type testStore struct {
	products *repositories.GORMProductRepository
	users    *repositories.GORMUserRepository
}

func newTestStore(t *testing.T) testStore {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return testStore{
		products: repositories.NewGORMProductRepository(db),
		users:    repositories.NewGORMUserRepository(db),
	}
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(i int) *int { return &i }

func boolPtr(b bool) *bool { return &b }

func input(name, sku, amount string) services.ProductInput {
	return services.ProductInput{
		Name:  name,
		SKU:   sku,
		Price: price(amount),
	}
}
