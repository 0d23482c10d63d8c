package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is a dependency the health check probes.
type Pinger func(ctx context.Context) error

// StatsReporter returns a JSON-encodable snapshot of a dependency's counters.
type StatsReporter func() interface{}

// HealthHandler reports whether the service and its dependencies respond.
type HealthHandler struct {
	checks map[string]Pinger
	stats  map[string]StatsReporter
}

// NewHealthHandler creates a new HealthHandler. checks maps a dependency
// name to its probe; stats, which may be nil, adds counters to the report.
func NewHealthHandler(checks map[string]Pinger, stats map[string]StatsReporter) *HealthHandler {
	return &HealthHandler{checks: checks, stats: stats}
}

// RegisterRoutes registers /health on router.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	deps := fiber.Map{}
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			deps[name] = err.Error()
			status = fiber.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	overall := "healthy"
	if status != fiber.StatusOK {
		overall = "degraded"
	}
	body := fiber.Map{
		"status":       overall,
		"time":         time.Now().Format(time.RFC3339),
		"dependencies": deps,
	}
	if len(h.stats) > 0 {
		stats := fiber.Map{}
		for name, report := range h.stats {
			stats[name] = report()
		}
		body["stats"] = stats
	}
	return c.Status(status).JSON(body)
}
