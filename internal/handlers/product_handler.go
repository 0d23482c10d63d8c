package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"tokoadmin/internal/apperrors"
	"tokoadmin/internal/models"
	"tokoadmin/internal/repositories"
	"tokoadmin/internal/services"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	query    *services.QueryService
	products *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(query *services.QueryService, products *services.ProductService) *ProductHandler {
	return &ProductHandler{
		query:    query,
		products: products,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")

	productRoutes.Post("/bulk/feature", h.HandleBulkFeature)
	productRoutes.Post("/bulk/hide", h.HandleBulkHide)
	productRoutes.Post("/bulk/delete", h.HandleBulkDelete)
	productRoutes.Post("/bulk/restore", h.HandleBulkRestore)
	productRoutes.Post("/bulk/force-delete", h.HandleBulkForceDelete)

	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
	productRoutes.Post("/:id/toggle-featured", h.HandleToggleFeatured)
	productRoutes.Post("/:id/toggle-visibility", h.HandleToggleVisibility)
	productRoutes.Post("/:id/duplicate", h.HandleDuplicateProduct)
	productRoutes.Post("/:id/restore", h.HandleRestoreProduct)
	productRoutes.Delete("/:id/force", h.HandleForceDeleteProduct)
}

// HandleListProducts returns one page of products matching the filters.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return respondError(c, err, "Invalid listing filters")
	}

	page, err := h.query.List(c.UserContext(), q)
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}

	items := make([]productView, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, viewOf(&page.Items[i]))
	}
	return c.JSON(fiber.Map{
		"data":      items,
		"total":     page.Total,
		"page":      page.Page,
		"per_page":  page.PerPage,
		"last_page": page.LastPage,
	})
}

// HandleGetProduct retrieves a single product. ?trashed=with also finds
// trashed products.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	scope, err := parseScope(c.Query("trashed"))
	if err != nil {
		return badRequest(c, err, "Invalid trashed filter")
	}

	product, err := h.query.Get(c.UserContext(), c.Params("id"), scope)
	if err != nil {
		return respondError(c, err, "Could not retrieve product")
	}

	view := viewOf(product)
	if view.CreatedBy, err = h.query.CreatorName(c.UserContext(), product); err != nil {
		log.Ctx(c.UserContext()).Warn().Err(err).Str("product_id", product.ID).Msg("failed to resolve creator name")
	}
	return c.JSON(view)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err, "Invalid request body")
	}
	input, err := req.toInput()
	if err != nil {
		return respondError(c, err, "Invalid request body")
	}

	product, err := h.products.Create(c.UserContext(), input)
	if err != nil {
		return respondError(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(viewOf(product))
}

// HandleUpdateProduct rewrites an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err, "Invalid request body")
	}
	input, err := req.toInput()
	if err != nil {
		return respondError(c, err, "Invalid request body")
	}

	product, err := h.products.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return respondError(c, err, "Could not update product")
	}
	return c.JSON(viewOf(product))
}

// HandleToggleFeatured flips the featured flag.
func (h *ProductHandler) HandleToggleFeatured(c *fiber.Ctx) error {
	return h.toggle(c, h.products.ToggleFeatured)
}

// HandleToggleVisibility flips the visibility flag.
func (h *ProductHandler) HandleToggleVisibility(c *fiber.Ctx) error {
	return h.toggle(c, h.products.ToggleVisibility)
}

func (h *ProductHandler) toggle(c *fiber.Ctx, fn func(ctx context.Context, id string) (*models.Product, error)) error {
	product, err := fn(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not update product")
	}
	return c.JSON(viewOf(product))
}

// HandleDuplicateProduct copies a product.
func (h *ProductHandler) HandleDuplicateProduct(c *fiber.Ctx) error {
	product, err := h.products.Duplicate(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not duplicate product")
	}
	return c.Status(fiber.StatusCreated).JSON(viewOf(product))
}

// HandleDeleteProduct moves a product to the trash.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.products.SoftDelete(c.UserContext(), id); err != nil {
		return respondError(c, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{"message": "Product " + id + " moved to trash"})
}

// HandleRestoreProduct brings a product back from the trash.
func (h *ProductHandler) HandleRestoreProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.products.Restore(c.UserContext(), id); err != nil {
		return respondError(c, err, "Could not restore product")
	}
	product, err := h.query.Get(c.UserContext(), id, repositories.ScopeLive)
	if err != nil {
		return respondError(c, err, "Could not retrieve product")
	}
	return c.JSON(viewOf(product))
}

// HandleForceDeleteProduct permanently removes a trashed product.
func (h *ProductHandler) HandleForceDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.products.ForceDelete(c.UserContext(), id); err != nil {
		return respondError(c, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{"message": "Product " + id + " deleted permanently"})
}

func (h *ProductHandler) HandleBulkFeature(c *fiber.Ctx) error {
	return h.bulk(c, h.products.BulkFeature)
}

func (h *ProductHandler) HandleBulkHide(c *fiber.Ctx) error {
	return h.bulk(c, h.products.BulkHide)
}

func (h *ProductHandler) HandleBulkDelete(c *fiber.Ctx) error {
	return h.bulk(c, h.products.BulkSoftDelete)
}

func (h *ProductHandler) HandleBulkRestore(c *fiber.Ctx) error {
	return h.bulk(c, h.products.BulkRestore)
}

func (h *ProductHandler) HandleBulkForceDelete(c *fiber.Ctx) error {
	return h.bulk(c, h.products.BulkForceDelete)
}

func (h *ProductHandler) bulk(c *fiber.Ctx, fn func(ctx context.Context, ids []string) services.BulkResult) error {
	var req bulkRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err, "Invalid request body")
	}
	if len(req.IDs) == 0 {
		return respondError(c, apperrors.NewValidation("ids", "is required"), "Invalid request body")
	}
	return c.JSON(fn(c.UserContext(), req.IDs))
}
