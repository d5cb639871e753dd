package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"fun-writing-be/internal/dto"
	"fun-writing-be/internal/pkg/serverutils"
	"fun-writing-be/internal/service"
)

type ISubmissionController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Reanalyze(ctx *fiber.Ctx) error
	ListPrompts(ctx *fiber.Ctx) error
}

type submissionController struct {
	submissionService service.ISubmissionService
}

func NewSubmissionController(submissionService service.ISubmissionService) ISubmissionController {
	return &submissionController{
		submissionService: submissionService,
	}
}

func (c *submissionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/submission/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("prompts", c.ListPrompts)
	h.Post("", c.Submit)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Post(":id/reanalyze", c.Reanalyze)
}

func (c *submissionController) Submit(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SubmitWritingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.submissionService.Submit(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit writing", res))
}

func (c *submissionController) Show(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.submissionService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show submission", res))
}

func (c *submissionController) List(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	page := ctx.QueryInt("page", 1)
	limit := ctx.QueryInt("limit", 20)

	res, err := c.submissionService.List(ctx.Context(), userId, page, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list submissions", res))
}

func (c *submissionController) Reanalyze(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.submissionService.Reanalyze(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reanalyze submission", res))
}

func (c *submissionController) ListPrompts(ctx *fiber.Ctx) error {
	res, err := c.submissionService.ListPrompts(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list prompts", res))
}
