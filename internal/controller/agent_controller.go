package controller

import (
	"udla-mentor-be/internal/dto"
	"udla-mentor-be/internal/pkg/serverutils"
	"udla-mentor-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAgentController interface {
	RegisterRoutes(r fiber.Router)
	Agent(ctx *fiber.Ctx) error
}

type agentController struct {
	chatService service.IChatService
}

func NewAgentController(chatService service.IChatService) IAgentController {
	return &agentController{chatService: chatService}
}

func (c *agentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/agents")
	h.Post("/agent/", c.Agent)
}

// Agent answers one student turn. A prompt of "--reiniciar--" clears the session.
func (c *agentController) Agent(ctx *fiber.Ctx) error {
	var req dto.AgentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body", err)
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Chat(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
}
