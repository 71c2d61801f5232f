package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/empathia/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/empathia/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/empathia/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/empathia/internal/database"
	"github.com/saturnino-fabrica-de-software/empathia/internal/metrics"
	"github.com/saturnino-fabrica-de-software/empathia/internal/ws"
)

// EmployeeService is what the employee and history routes need
type EmployeeService interface {
	handler.EmployeeService
	handler.RecentLogsService
}

type Dependencies struct {
	Employees    EmployeeService
	Checkin      handler.CheckinService
	DB           database.Pinger
	Metrics      *metrics.Metrics
	Hub          *ws.Hub
	MaxImageSize int64
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	maxImageSize := int64(handler.DefaultMaxImageSize)
	if deps != nil && deps.MaxImageSize > 0 {
		maxImageSize = deps.MaxImageSize
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Empathia API",
		// room for the multipart envelope around the image
		BodyLimit: int(maxImageSize) + 1024*1024,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	var db database.Pinger
	if r.deps != nil {
		db = r.deps.DB
	}

	// Health check endpoints
	healthHandler := handler.NewHealthHandler(db, r.logger)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil {
		return
	}

	if r.deps.Metrics != nil {
		r.app.Get("/metrics", adaptor.HTTPHandler(r.deps.Metrics.Handler()))
	}

	v1 := r.app.Group("/v1")

	if r.deps.Employees != nil {
		employeeHandler := handler.NewEmployeeHandler(r.deps.Employees, r.deps.MaxImageSize, r.logger)

		v1.Post("/employees", employeeHandler.Enroll)
		v1.Get("/employees", employeeHandler.List)
		v1.Get("/employees/:id", employeeHandler.Get)
		v1.Put("/employees/:id", employeeHandler.UpdateProfile)
		v1.Put("/employees/:id/photo", employeeHandler.UpdatePhoto)
		v1.Get("/employees/:id/photo", employeeHandler.Photo)
		v1.Delete("/employees/:id", employeeHandler.Delete)
		v1.Get("/employees/:id/emotions", employeeHandler.History)
		v1.Get("/employees/:id/stats", employeeHandler.Stats)
	}

	if r.deps.Checkin != nil && r.deps.Employees != nil {
		checkinHandler := handler.NewCheckinHandler(r.deps.Checkin, r.deps.Employees, r.deps.MaxImageSize, r.logger)

		v1.Post("/identify", checkinHandler.Identify)
		v1.Post("/employees/:id/analysis", checkinHandler.Analyze)
		v1.Post("/checkin", checkinHandler.CheckIn)
		v1.Get("/emotions/recent", checkinHandler.RecentLogs)
	}

	// Live check-in feed
	if r.deps.Hub != nil {
		v1.Use("/ws", ws.UpgradeMiddleware())
		v1.Get("/ws", ws.Handler(r.deps.Hub))
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

// Shutdown waits for in-flight requests, including running emotion analyses,
// until ctx expires.
func (r *Router) Shutdown(ctx context.Context) error {
	return r.app.ShutdownWithContext(ctx)
}
