// Package export renders the catalog as an XLSX workbook.
package export

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"tokoadmin/internal/models"
	"tokoadmin/internal/repositories"
	"tokoadmin/internal/services"
)

const (
	ProductsSheet = "Products"
	SummarySheet  = "Summary"
)

var productHeader = []interface{}{
	"ID", "Name", "Slug", "SKU", "Status", "Category", "Brand",
	"Price", "Cost", "Stock", "Featured", "Visible", "Tags", "Published", "Created",
}

// Exporter writes the live listing plus the dashboard reports to a workbook.
type Exporter struct {
	query   *services.QueryService
	reports *services.ReportService
}

// NewExporter creates a new Exporter.
func NewExporter(query *services.QueryService, reports *services.ReportService) *Exporter {
	return &Exporter{
		query:   query,
		reports: reports,
	}
}

// Write renders every product matching filter into the Products sheet and
// the stats overview and category distribution into the Summary sheet.
// Pagination fields of filter are ignored.
func (e *Exporter) Write(ctx context.Context, w io.Writer, filter repositories.ListQuery) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ProductsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := f.SetSheetRow(ProductsSheet, "A1", &productHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	filter.PerPage = repositories.MaxPerPage
	row := 2
	for page := 1; ; page++ {
		filter.Page = page
		result, err := e.query.List(ctx, filter)
		if err != nil {
			return err
		}
		for i := range result.Items {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			values := productRow(&result.Items[i])
			if err := f.SetSheetRow(ProductsSheet, cell, &values); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
			row++
		}
		if page >= result.LastPage {
			break
		}
	}

	if err := e.writeSummary(ctx, f); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func productRow(p *models.Product) []interface{} {
	price, _ := p.Price.Float64()
	var cost interface{}
	if p.Cost != nil {
		cost, _ = p.Cost.Float64()
	}
	var published interface{}
	if p.PublishedAt != nil {
		published = p.PublishedAt.Format("2006-01-02")
	}
	return []interface{}{
		p.ID, p.Name, p.Slug, p.SKU, string(p.Status), p.Category, p.Brand,
		price, cost, p.Stock, p.IsFeatured, p.IsVisible,
		strings.Join(p.Tags, ", "), published, p.CreatedAt.Format("2006-01-02 15:04"),
	}
}

func (e *Exporter) writeSummary(ctx context.Context, f *excelize.File) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	stats, err := e.reports.StatsOverview(ctx)
	if err != nil {
		return err
	}
	distribution, err := e.reports.CategoryDistribution(ctx)
	if err != nil {
		return err
	}

	totalValue, _ := stats.TotalValue.Float64()
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total products", stats.Total},
		{"Active products", stats.Active},
		{"Active %", stats.ActivePercent},
		{"Total value", totalValue},
		{"Low stock", stats.LowStock},
		{"Featured", stats.Featured},
		{},
		{"Category", "Products"},
	}

	categories := make([]string, 0, len(distribution))
	for c := range distribution {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		rows = append(rows, []interface{}{c, distribution[c]})
	}

	for i, values := range rows {
		if len(values) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}
	return nil
}
