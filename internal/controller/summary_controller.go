package controller

import (
	"udla-mentor-be/internal/dto"
	"udla-mentor-be/internal/pkg/serverutils"
	"udla-mentor-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISummaryController interface {
	RegisterRoutes(r fiber.Router)
	Summary(ctx *fiber.Ctx) error
}

type summaryController struct {
	summaryService service.ISummaryService
}

func NewSummaryController(summaryService service.ISummaryService) ISummaryController {
	return &summaryController{summaryService: summaryService}
}

func (c *summaryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/summary")
	h.Post("/summary/", c.Summary)
}

func (c *summaryController) Summary(ctx *fiber.Ctx) error {
	var req dto.SummaryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body", err)
	}

	res, err := c.summaryService.Summarize(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
}
