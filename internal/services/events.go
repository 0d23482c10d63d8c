package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

// Routing keys of the catalog notifications.
const (
	EventProductCreated      = "product.created"
	EventProductUpdated      = "product.updated"
	EventProductFeatured     = "product.featured"
	EventProductUnfeatured   = "product.unfeatured"
	EventProductVisible      = "product.visible"
	EventProductHidden       = "product.hidden"
	EventProductDuplicated   = "product.duplicated"
	EventProductDeleted      = "product.deleted"
	EventProductRestored     = "product.restored"
	EventProductForceDeleted = "product.force_deleted"
	EventProductsFeatured    = "products.featured"
	EventProductsHidden      = "products.hidden"
	EventProductsDeleted     = "products.deleted"
	EventProductsRestored    = "products.restored"
	EventProductsPurged      = "products.force_deleted"
)

// EventPublisher is the notification sink. Delivery is fire-and-forget.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// ReportInvalidator drops derived report data after the catalog changes.
type ReportInvalidator interface {
	Invalidate(ctx context.Context)
}

// ProductEvent is the JSON body of a catalog notification.
type ProductEvent struct {
	Event      string    `json:"event"`
	ProductID  string    `json:"product_id,omitempty"`
	ProductIDs []string  `json:"product_ids,omitempty"`
	SourceID   string    `json:"source_id,omitempty"`
	Name       string    `json:"name,omitempty"`
	SKU        string    `json:"sku,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// notifier fans a committed change out to the event sink and the report
// cache. Neither failure reaches the caller.
type notifier struct {
	publisher   EventPublisher
	invalidator ReportInvalidator
}

func (n notifier) changed(ctx context.Context, event ProductEvent) {
	if n.invalidator != nil {
		n.invalidator.Invalidate(ctx)
	}
	if n.publisher == nil {
		log.Ctx(ctx).Debug().Str("event", event.Event).Msg("event publisher not configured, skipping notification")
		return
	}

	event.OccurredAt = time.Now().UTC()
	body, err := json.Marshal(event)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("event", event.Event).Msg("failed to marshal product event")
		return
	}
	if err := n.publisher.Publish(event.Event, body); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("event", event.Event).Str("product_id", event.ProductID).Msg("failed to publish product event")
		return
	}
	log.Ctx(ctx).Debug().Str("event", event.Event).Str("product_id", event.ProductID).Msg("published product event")
}
