// Package app wires the catalog store, services and HTTP admin API together.
package app

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"tokoadmin/internal/export"
	"tokoadmin/internal/handlers"
	"tokoadmin/internal/middleware"
	"tokoadmin/internal/repositories"
	"tokoadmin/internal/services"
)

// Options are the collaborators of an App. Only DB is required.
type Options struct {
	DB        *gorm.DB
	Publisher services.EventPublisher
	Cache     services.ReportCache
	// Checks are probed by /health in addition to the database.
	Checks map[string]handlers.Pinger
	// Stats are counters reported by /health, such as the report cache's.
	Stats map[string]handlers.StatsReporter
}

// App is the assembled back office.
type App struct {
	DB       *gorm.DB
	Users    repositories.UserRepository
	Repo     repositories.ProductRepository
	Query    *services.QueryService
	Products *services.ProductService
	Reports  *services.ReportService
	Exporter *export.Exporter
	Fiber    *fiber.App
}

// NewApp builds the services over db and registers every route.
func NewApp(opts Options) *App {
	a := &App{DB: opts.DB}
	productRepo := repositories.NewGORMProductRepository(opts.DB)
	a.Repo = productRepo
	a.Users = repositories.NewGORMUserRepository(opts.DB)

	a.Reports = services.NewReportService(productRepo, a.Users, opts.Cache)
	a.Query = services.NewQueryService(productRepo, a.Users)
	a.Products = services.NewProductService(productRepo, opts.Publisher, a.Reports)
	a.Exporter = export.NewExporter(a.Query, a.Reports)

	a.Fiber = fiber.New(fiber.Config{
		AppName:               "tokoadmin",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	a.Fiber.Use(middleware.RequestLogger())
	a.Fiber.Use(recover.New())

	checks := map[string]handlers.Pinger{"database": a.pingDB}
	for name, check := range opts.Checks {
		checks[name] = check
	}
	handlers.NewHealthHandler(checks, opts.Stats).RegisterRoutes(a.Fiber)

	apiV1 := a.Fiber.Group("/api/v1")
	handlers.NewProductHandler(a.Query, a.Products).RegisterRoutes(apiV1)
	handlers.NewReportHandler(a.Reports, a.Exporter).RegisterRoutes(apiV1)
	handlers.NewAuthoringHandler().RegisterRoutes(apiV1)

	return a
}

func (a *App) pingDB(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// errorHandler renders errors that escaped the handlers, such as unknown
// routes and recovered panics.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Ctx(c.UserContext()).Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}
	return c.Status(code).JSON(fiber.Map{
		"message": err.Error(),
	})
}
