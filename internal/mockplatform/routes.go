package mockplatform

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/birbparty/commerce-sdk/internal/telemetry"
	"github.com/birbparty/commerce-sdk/sdk/codec"
)

// NewApp builds the fiber application serving h. Metrics are registered
// with reg when it is not nil.
func NewApp(h *Handler, reg *prometheus.Registry) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "mockplatform",
		ErrorHandler:          ErrorHandler,
		JSONEncoder:           codec.JSON.Marshal,
		JSONDecoder:           codec.JSON.Unmarshal,
		ReadTimeout:           h.cfg.RequestTimeout,
		WriteTimeout:          h.cfg.RequestTimeout,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	if h.cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path} ${error}\n",
			TimeFormat: "2006-01-02 15:04:05",
			TimeZone:   "UTC",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,DELETE,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + CorrelationIDHeader,
		ExposeHeaders: CorrelationIDHeader,
	}))
	app.Use(correlationID())

	var metrics *telemetry.ServerMetrics
	if reg != nil {
		metrics = telemetry.NewServerMetrics(reg)
		app.Get(h.cfg.MetricsPath, adaptor.HTTPHandler(telemetry.PrometheusHandler(reg)))
	}
	app.Use(telemetry.FiberMiddleware(metrics))

	SetupRoutes(app, h)
	return app
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, h *Handler) {
	app.Get("/health", h.Health)
	app.Post("/oauth/token", h.IssueToken)

	api := app.Group("/:project", h.authenticate)
	if h.cfg.Latency > 0 {
		api.Use(latency(h.cfg.Latency))
	}

	api.Get("/", h.GetProject)

	cats := api.Group("/categories")
	cats.Get("/", queryHandler(h, categories))
	cats.Post("/", h.CreateCategory)
	cats.Get("/:ref", getHandler(h, categories))
	cats.Post("/:ref", updateHandler(h, categories, (*Project).CategoryChanges))
	cats.Delete("/:ref", deleteHandler(h, categories))

	cartGroup := api.Group("/carts")
	cartGroup.Get("/", queryHandler(h, carts))
	cartGroup.Post("/", h.CreateCart)
	cartGroup.Get("/:ref", getHandler(h, carts))
	cartGroup.Post("/:ref", updateHandler(h, carts, (*Project).CartChanges))
	cartGroup.Delete("/:ref", deleteHandler(h, carts))

	prods := api.Group("/product-projections")
	prods.Get("/", queryHandler(h, products))
	prods.Get("/search", h.SearchProducts)
	prods.Get("/:ref", getHandler(h, products))

	objs := api.Group("/custom-objects")
	objs.Get("/", queryHandler(h, objects))
	objs.Post("/", h.UpsertCustomObject)
	objs.Get("/:container/:key", h.GetCustomObject)
	objs.Delete("/:container/:key", h.DeleteCustomObject)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "The endpoint '"+c.Path()+"' was not found.")
	})
}
