package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Status is the publication state of a product.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusDraft, StatusActive, StatusArchived}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusArchived:
		return true
	}
	return false
}

// Product represents a catalog entry managed from the back office.
//
// Slug and SKU are unique among live rows only: the partial indexes skip
// trashed rows so a duplicate or re-created product may reuse them.
type Product struct {
	ID             string            `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name           string            `json:"name" gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Slug           string            `json:"slug" gorm:"type:varchar(255);not null;uniqueIndex:idx_products_slug_live,where:deleted_at IS NULL" validate:"required,max=255"`
	SKU            string            `json:"sku" gorm:"column:sku;type:varchar(50);not null;uniqueIndex:idx_products_sku_live,where:deleted_at IS NULL" validate:"required,max=50"`
	Description    string            `json:"description" gorm:"type:text"`
	Price          decimal.Decimal   `json:"price" gorm:"type:decimal(12,2);not null" validate:"gte=0"`
	Cost           *decimal.Decimal  `json:"cost" gorm:"type:decimal(12,2)" validate:"omitempty,gte=0"`
	Stock          int               `json:"stock" gorm:"not null;index" validate:"gte=0"`
	Status         Status            `json:"status" gorm:"type:varchar(20);not null;index" validate:"required,oneof=draft active archived"`
	IsFeatured     bool              `json:"is_featured" gorm:"not null"`
	IsVisible      bool              `json:"is_visible" gorm:"not null"`
	Brand          string            `json:"brand" gorm:"type:varchar(100)" validate:"max=100"`
	Category       string            `json:"category" gorm:"type:varchar(100);index" validate:"max=100"`
	Images         []string          `json:"images" gorm:"type:text;serializer:json" validate:"max=5,dive,required"`
	Tags           []string          `json:"tags" gorm:"type:text;serializer:json" validate:"dive,required"`
	Specifications map[string]string `json:"specifications" gorm:"type:text;serializer:json" validate:"dive,keys,required,endkeys"`
	PublishedAt    *time.Time        `json:"published_at" gorm:"index"`
	UserID         *string           `json:"user_id" gorm:"type:varchar(36);index"`
	CreatedAt      time.Time         `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time         `json:"updated_at"`
	DeletedAt      gorm.DeletedAt    `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName returns the table name for Product model.
func (Product) TableName() string {
	return "products"
}

// Trashed reports whether the product is soft-deleted.
func (p *Product) Trashed() bool {
	return p.DeletedAt.Valid
}

// Validate checks the field constraints of the record.
func (p *Product) Validate() error {
	return validateStruct(p)
}

// AfterFind normalizes decimal columns to two places. SQLite hands them
// back as integers or floats.
func (p *Product) AfterFind(_ *gorm.DB) error {
	p.Price = p.Price.Round(2)
	if p.Cost != nil {
		c := p.Cost.Round(2)
		p.Cost = &c
	}
	return nil
}
