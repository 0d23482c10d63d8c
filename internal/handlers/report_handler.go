package handlers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"tokoadmin/internal/export"
	"tokoadmin/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves the dashboard reports and the workbook export.
type ReportHandler struct {
	reports  *services.ReportService
	exporter *export.Exporter
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports *services.ReportService, exporter *export.Exporter) *ReportHandler {
	return &ReportHandler{
		reports:  reports,
		exporter: exporter,
	}
}

// RegisterRoutes registers the report routes with the Fiber app.
func (h *ReportHandler) RegisterRoutes(router fiber.Router) {
	reportRoutes := router.Group("/reports")
	reportRoutes.Get("/categories", h.HandleCategoryDistribution)
	reportRoutes.Get("/stats", h.HandleStatsOverview)
	reportRoutes.Get("/creators", h.HandleCreatorBreakdown)
	reportRoutes.Get("/export.xlsx", h.HandleExport)
}

func (h *ReportHandler) HandleCategoryDistribution(c *fiber.Ctx) error {
	distribution, err := h.reports.CategoryDistribution(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not compute category distribution")
	}
	return c.JSON(distribution)
}

func (h *ReportHandler) HandleStatsOverview(c *fiber.Ctx) error {
	stats, err := h.reports.StatsOverview(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not compute stats")
	}
	lowStockTone := ToneSuccess
	if stats.LowStock > 0 {
		lowStockTone = ToneDanger
	}
	return c.JSON(fiber.Map{
		"stats":          stats,
		"low_stock_tone": lowStockTone,
	})
}

func (h *ReportHandler) HandleCreatorBreakdown(c *fiber.Ctx) error {
	shares, err := h.reports.CreatorBreakdown(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not compute creator breakdown")
	}
	return c.JSON(shares)
}

// HandleExport streams the catalog workbook. It accepts the listing filters.
func (h *ReportHandler) HandleExport(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return respondError(c, err, "Invalid listing filters")
	}

	var buf bytes.Buffer
	if err := h.exporter.Write(c.UserContext(), &buf, q); err != nil {
		return respondError(c, err, "Could not export products")
	}

	filename := fmt.Sprintf("products-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Attachment(filename)
	return c.Send(buf.Bytes())
}
