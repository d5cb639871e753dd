package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"fun-writing-be/internal/dto"
	"fun-writing-be/internal/pkg/serverutils"
	"fun-writing-be/internal/service"
)

type IMediaController interface {
	RegisterRoutes(r fiber.Router)
	GenerateImage(ctx *fiber.Ctx) error
	GenerateVideo(ctx *fiber.Ctx) error
	ListBySubmission(ctx *fiber.Ctx) error
	Gallery(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type mediaController struct {
	mediaService service.IMediaService
}

func NewMediaController(mediaService service.IMediaService) IMediaController {
	return &mediaController{
		mediaService: mediaService,
	}
}

func (c *mediaController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/media/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("image", c.GenerateImage)
	h.Post("video", c.GenerateVideo)
	h.Get("gallery", c.Gallery)
	h.Get("submission/:submissionId", c.ListBySubmission)
	h.Delete(":id", c.Delete)
}

func (c *mediaController) GenerateImage(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.GenerateImageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.mediaService.RequestImage(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate image", res))
}

func (c *mediaController) GenerateVideo(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.GenerateVideoRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.mediaService.RequestVideo(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate video", res))
}

func (c *mediaController) ListBySubmission(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	submissionId, _ := uuid.Parse(ctx.Params("submissionId"))

	res, err := c.mediaService.ListBySubmission(ctx.Context(), userId, submissionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list media", res))
}

func (c *mediaController) Gallery(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	mediaType := ctx.Query("type")
	page := ctx.QueryInt("page", 1)
	limit := ctx.QueryInt("limit", 20)

	res, err := c.mediaService.Gallery(ctx.Context(), userId, mediaType, page, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show gallery", res))
}

func (c *mediaController) Delete(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	if err := c.mediaService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete media", nil))
}
