package handlers

import "tokoadmin/internal/models"

// Display tones understood by the admin UI.
const (
	ToneGray    = "gray"
	ToneSuccess = "success"
	ToneWarning = "warning"
	ToneDanger  = "danger"
)

// StatusTone maps a status to its badge color.
func StatusTone(s models.Status) string {
	switch s {
	case models.StatusActive:
		return ToneSuccess
	case models.StatusArchived:
		return ToneDanger
	}
	return ToneGray
}

// StatusIcon maps a status to its badge icon.
func StatusIcon(s models.Status) string {
	switch s {
	case models.StatusActive:
		return "check-circle"
	case models.StatusArchived:
		return "archive-box"
	}
	return "pencil"
}

// StockTone colors the stock badge: empty, running low, or fine.
func StockTone(stock int) string {
	switch {
	case stock == 0:
		return ToneDanger
	case stock < 10:
		return ToneWarning
	}
	return ToneSuccess
}

// FeaturedTone colors the featured star.
func FeaturedTone(featured bool) string {
	if featured {
		return ToneWarning
	}
	return ToneGray
}

// DisplayHints are the cosmetic cues rendered next to a product.
type DisplayHints struct {
	StatusTone   string `json:"status_tone"`
	StatusIcon   string `json:"status_icon"`
	StockTone    string `json:"stock_tone"`
	FeaturedTone string `json:"featured_tone"`
}

func hintsFor(p *models.Product) DisplayHints {
	return DisplayHints{
		StatusTone:   StatusTone(p.Status),
		StatusIcon:   StatusIcon(p.Status),
		StockTone:    StockTone(p.Stock),
		FeaturedTone: FeaturedTone(p.IsFeatured),
	}
}

// productView is the API representation of a product.
type productView struct {
	models.Product
	CreatedBy string       `json:"created_by,omitempty"`
	Display   DisplayHints `json:"display"`
}

func viewOf(p *models.Product) productView {
	return productView{Product: *p, Display: hintsFor(p)}
}
