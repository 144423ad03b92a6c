package controller

import (
	"fashion-recommender-be/internal/pkg/serverutils"
	"fashion-recommender-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	IndexStatus(ctx *fiber.Ctx) error
	RebuildIndex(ctx *fiber.Ctx) error
}

type adminController struct {
	indexService service.IIndexService
}

func NewAdminController(indexService service.IIndexService) IAdminController {
	return &adminController{indexService: indexService}
}

func (c *adminController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/admin")
	h.Use(auth)
	h.Get("/index", c.IndexStatus)
	h.Post("/index/rebuild", c.RebuildIndex)
}

func (c *adminController) IndexStatus(ctx *fiber.Ctx) error {
	res, err := c.indexService.Status(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get index status", res))
}

func (c *adminController) RebuildIndex(ctx *fiber.Ctx) error {
	res, err := c.indexService.Rebuild(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusServiceUnavailable).
			JSON(serverutils.ErrorResponseWithData(fiber.StatusServiceUnavailable, "Index rebuild failed, previous index kept", res))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success rebuild index", res))
}
