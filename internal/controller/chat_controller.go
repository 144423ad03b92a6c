package controller

import (
	"fashion-recommender-be/internal/dto"
	"fashion-recommender-be/internal/pkg/serverutils"
	"fashion-recommender-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const maxSessionIDLength = 128

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendTurn(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Get("/stats", c.Stats)
	h.Post("/:sessionId/turns", c.SendTurn)
	h.Post("/:sessionId/reset", c.Reset)
}

func sessionIDParam(ctx *fiber.Ctx) (string, error) {
	id := ctx.Params("sessionId")
	if id == "" || len(id) > maxSessionIDLength {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}
	return id, nil
}

func (c *chatController) SendTurn(ctx *fiber.Ctx) error {
	sessionID, err := sessionIDParam(ctx)
	if err != nil {
		return err
	}

	var req dto.SendTurnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendTurn(ctx.UserContext(), sessionID, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success handle turn", res))
}

func (c *chatController) Reset(ctx *fiber.Ctx) error {
	sessionID, err := sessionIDParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Reset(ctx.UserContext(), sessionID)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reset session", res))
}

func (c *chatController) Stats(ctx *fiber.Ctx) error {
	res, err := c.service.Stats(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat stats", res))
}
