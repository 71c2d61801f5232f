package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/empathia/internal/database"
)

// Version is reported by /health
const Version = "0.1.0"

type HealthHandler struct {
	db     database.Pinger
	logger *slog.Logger
}

// NewHealthHandler creates the handler; db may be nil, in which case /ready
// only reports that the process is up.
func NewHealthHandler(db database.Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Database string `json:"database,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.db == nil {
		return c.JSON(HealthResponse{Status: "ready"})
	}

	if err := database.HealthCheck(c.Context(), h.db); err != nil {
		h.logger.Warn("readiness check failed", slog.Any("error", err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status:   "unavailable",
			Database: "down",
		})
	}

	return c.JSON(HealthResponse{
		Status:   "ready",
		Database: "up",
	})
}
