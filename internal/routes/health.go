package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RegisterHealthRoutes exposes liveness probes.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status": "ok",
			"app":    d.Cfg.AppName,
			"mode":   d.Cfg.StorageMode,
		})
	})
}
