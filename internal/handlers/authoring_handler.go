package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tokoadmin/internal/models"
	"tokoadmin/internal/services"
)

// AuthoringHandler exposes the form helpers the edit screen calls while
// the user types.
type AuthoringHandler struct{}

// NewAuthoringHandler creates a new AuthoringHandler.
func NewAuthoringHandler() *AuthoringHandler {
	return &AuthoringHandler{}
}

// RegisterRoutes registers the authoring routes with the Fiber app.
func (h *AuthoringHandler) RegisterRoutes(router fiber.Router) {
	authoringRoutes := router.Group("/authoring")
	authoringRoutes.Post("/slug", h.HandleSlug)
	authoringRoutes.Get("/visibility", h.HandleVisibility)
	authoringRoutes.Get("/statuses", h.HandleStatuses)
}

// HandleSlug derives the slug for a product name.
func (h *AuthoringHandler) HandleSlug(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err, "Invalid request body")
	}
	return c.JSON(fiber.Map{"slug": services.Slugify(req.Name)})
}

// HandleVisibility suggests the visibility toggle for ?stock=N.
func (h *AuthoringHandler) HandleVisibility(c *fiber.Ctx) error {
	stock := c.QueryInt("stock", 0)
	return c.JSON(fiber.Map{
		"stock":      stock,
		"is_visible": services.SuggestVisibility(stock),
		"stock_tone": StockTone(stock),
	})
}

// HandleStatuses lists the status options with their display hints.
func (h *AuthoringHandler) HandleStatuses(c *fiber.Ctx) error {
	options := make([]fiber.Map, 0, len(models.Statuses))
	for _, s := range models.Statuses {
		options = append(options, fiber.Map{
			"value": s,
			"tone":  StatusTone(s),
			"icon":  StatusIcon(s),
		})
	}
	return c.JSON(options)
}
