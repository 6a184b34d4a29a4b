package controller

import (
	"time"

	"udla-mentor-be/internal/dto"
	"udla-mentor-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
}

type healthController struct {
	version     string
	environment string
}

func NewHealthController(version, environment string) IHealthController {
	return &healthController{version: version, environment: environment}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/", c.Root)
	r.Get("/health", c.Health)
}

func (c *healthController) Root(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"status": "OK"})
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Service healthy", dto.HealthResponse{
		Status:      "OK",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Version:     c.version,
		Environment: c.environment,
	}))
}
