package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"tokoadmin/internal/apperrors"
	"tokoadmin/internal/models"
	"tokoadmin/internal/repositories"
	"tokoadmin/internal/services"
)

type seedProduct struct {
	name, sku, category, brand string
	price                      string
	stock                      int
	status                     models.Status
	featured                   bool
	tags                       []string
}

var demoProducts = []seedProduct{
	{"Mechanical Keyboard", "SKU-KB-001", "Peripherals", "Keychron", "89.00", 34, models.StatusActive, true, []string{"keyboard", "office"}},
	{"Wireless Mouse", "SKU-MS-002", "Peripherals", "Logitech", "24.90", 8, models.StatusActive, false, []string{"mouse"}},
	{"27\" Monitor", "SKU-MN-003", "Displays", "Dell", "279.99", 0, models.StatusActive, true, []string{"monitor", "4k"}},
	{"USB-C Hub", "SKU-HB-004", "Accessories", "Anker", "39.50", 120, models.StatusDraft, false, []string{"usb"}},
	{"Laptop Stand", "SKU-ST-005", "Accessories", "Rain Design", "49.00", 15, models.StatusArchived, false, nil},
	{"Noise Cancelling Headphones", "SKU-HP-006", "Audio", "Sony", "349.00", 5, models.StatusActive, true, []string{"audio", "travel"}},
	{"Desk Mat", "SKU-DM-007", "", "", "19.00", 60, models.StatusDraft, false, nil},
}

// Seed adds a demo operator and a small demo catalog. It does nothing when
// the catalog already has products.
func (a *App) Seed(ctx context.Context) error {
	existing, err := a.Query.List(ctx, repositories.ListQuery{Trashed: repositories.ScopeWithTrashed, PerPage: 1})
	if err != nil {
		return err
	}
	if existing.Total > 0 {
		log.Ctx(ctx).Info().Int64("products", existing.Total).Msg("catalog already seeded")
		return nil
	}

	operator, err := a.Users.GetByEmail(ctx, "admin@tokoadmin.local")
	if apperrors.IsNotFound(err) {
		operator = &models.User{Name: "Catalog Admin", Email: "admin@tokoadmin.local"}
		err = a.Users.Create(ctx, operator)
	}
	if err != nil {
		return fmt.Errorf("failed to seed operator: %w", err)
	}

	published := time.Now().UTC().AddDate(0, -1, 0)
	for _, p := range demoProducts {
		price := decimal.RequireFromString(p.price)
		cost := price.Mul(decimal.NewFromFloat(0.6)).Round(2)
		stock := p.stock
		featured := p.featured
		visible := services.SuggestVisibility(stock)
		in := services.ProductInput{
			Name:       p.name,
			SKU:        p.sku,
			Price:      &price,
			Cost:       &cost,
			Stock:      &stock,
			Status:     p.status,
			IsFeatured: &featured,
			IsVisible:  &visible,
			Brand:      p.brand,
			Category:   p.category,
			Tags:       p.tags,
			UserID:     &operator.ID,
		}
		if p.status == models.StatusActive {
			in.PublishedAt = &published
		}
		if _, err := a.Products.Create(ctx, in); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.sku, err)
		}
	}
	log.Ctx(ctx).Info().Int("products", len(demoProducts)).Msg("seeded demo catalog")
	return nil
}
