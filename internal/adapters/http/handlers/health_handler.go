package handlers

import (
	"barangaylink/internal/config"
	"barangaylink/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	cfg *config.Config
	db  *gorm.DB
	ai  *services.AIService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(cfg *config.Config, db *gorm.DB, ai *services.AIService) *HealthHandler {
	return &HealthHandler{cfg: cfg, db: db, ai: ai}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns API status
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "🚀 BarangayLink API is running",
		"mode":    h.cfg.AppMode,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck handles health check
// @Summary Health check
// @Description Check API and database health and which AI services are configured
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	status, dbStatus := "ok", "healthy"
	if err := h.ping(); err != nil {
		status, dbStatus = "degraded", "unhealthy"
		c.Status(fiber.StatusServiceUnavailable)
	}

	return c.JSON(fiber.Map{
		"status": status,
		"checks": fiber.Map{
			"api":         "healthy",
			"database":    dbStatus,
			"ai_priority": configured(h.ai.PriorityEnabled()),
			"ai_chat":     configured(h.ai.ChatEnabled()),
		},
	})
}

func (h *HealthHandler) ping() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "disabled"
}
