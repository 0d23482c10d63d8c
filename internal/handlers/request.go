package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"tokoadmin/internal/apperrors"
	"tokoadmin/internal/models"
	"tokoadmin/internal/repositories"
	"tokoadmin/internal/services"
)

const dateLayout = "2006-01-02"

// productRequest is the JSON body of create and update.
type productRequest struct {
	Name           string            `json:"name"`
	Slug           string            `json:"slug"`
	SKU            string            `json:"sku"`
	Description    string            `json:"description"`
	Price          *decimal.Decimal  `json:"price"`
	Cost           *decimal.Decimal  `json:"cost"`
	Stock          *int              `json:"stock"`
	Status         models.Status     `json:"status"`
	IsFeatured     *bool             `json:"is_featured"`
	IsVisible      *bool             `json:"is_visible"`
	Brand          string            `json:"brand"`
	Category       string            `json:"category"`
	Images         []string          `json:"images"`
	Tags           []string          `json:"tags"`
	Specifications map[string]string `json:"specifications"`
	PublishedAt    string            `json:"published_at"`
	UserID         *string           `json:"user_id"`
}

func (r productRequest) toInput() (services.ProductInput, error) {
	in := services.ProductInput{
		Name:           r.Name,
		Slug:           r.Slug,
		SKU:            r.SKU,
		Description:    r.Description,
		Price:          r.Price,
		Cost:           r.Cost,
		Stock:          r.Stock,
		Status:         r.Status,
		IsFeatured:     r.IsFeatured,
		IsVisible:      r.IsVisible,
		Brand:          r.Brand,
		Category:       r.Category,
		Images:         r.Images,
		Tags:           r.Tags,
		Specifications: r.Specifications,
		UserID:         r.UserID,
	}
	if r.UserID != nil && *r.UserID == "" {
		in.UserID = nil
	}
	if r.PublishedAt != "" {
		t, err := parseDate(r.PublishedAt)
		if err != nil {
			return in, apperrors.NewValidation("published_at", "must be a date (YYYY-MM-DD)")
		}
		in.PublishedAt = &t
	}
	return in, nil
}

type bulkRequest struct {
	IDs []string `json:"ids"`
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// parseListQuery reads the listing filters from the query string.
func parseListQuery(c *fiber.Ctx) (repositories.ListQuery, error) {
	q := repositories.ListQuery{
		Search: c.Query("search"),
	}
	verr := &apperrors.ValidationError{}

	for _, s := range splitList(c.Query("status")) {
		status := models.Status(s)
		if !status.Valid() {
			verr.Add("status", fmt.Sprintf("unknown status %q", s))
			continue
		}
		q.Statuses = append(q.Statuses, status)
	}
	q.Categories = splitList(c.Query("category"))

	var err error
	if q.Featured, err = triState(c.Query("featured")); err != nil {
		verr.Add("featured", "must be true or false")
	}
	if q.Visible, err = triState(c.Query("visible")); err != nil {
		verr.Add("visible", "must be true or false")
	}
	q.OutOfStock = c.QueryBool("out_of_stock")
	q.LowStock = c.QueryBool("low_stock")

	if v := c.Query("published_from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			verr.Add("published_from", "must be a date (YYYY-MM-DD)")
		} else {
			q.PublishedFrom = &t
		}
	}
	if v := c.Query("published_until"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			verr.Add("published_until", "must be a date (YYYY-MM-DD)")
		} else {
			q.PublishedUntil = &t
		}
	}

	scope, err := parseScope(c.Query("trashed"))
	if err != nil {
		verr.Add("trashed", err.Error())
	}
	q.Trashed = scope

	if sort := c.Query("sort"); sort != "" {
		q.Sort = repositories.Sort{Column: strings.TrimPrefix(sort, "-"), Desc: strings.HasPrefix(sort, "-")}
	}
	q.Page = c.QueryInt("page", 1)
	q.PerPage = c.QueryInt("per_page", repositories.DefaultPerPage)

	return q, verr.OrNil()
}

// parseScope reads the trashed filter: "" (live), "only" or "with".
func parseScope(v string) (repositories.TrashedScope, error) {
	switch v {
	case "", "without":
		return repositories.ScopeLive, nil
	case "only":
		return repositories.ScopeOnlyTrashed, nil
	case "with":
		return repositories.ScopeWithTrashed, nil
	}
	return repositories.ScopeLive, fmt.Errorf("must be one of: without, only, with")
}

func triState(v string) (*bool, error) {
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
