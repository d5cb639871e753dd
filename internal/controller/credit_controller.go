package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"fun-writing-be/internal/dto"
	"fun-writing-be/internal/pkg/serverutils"
	"fun-writing-be/internal/service"
)

type ICreditController interface {
	RegisterRoutes(r fiber.Router)
	Balance(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Packages(ctx *fiber.Ctx) error
	TopUp(ctx *fiber.Ctx) error
	HandleNotification(ctx *fiber.Ctx) error
}

type creditController struct {
	creditService service.ICreditService
}

func NewCreditController(creditService service.ICreditService) ICreditController {
	return &creditController{
		creditService: creditService,
	}
}

func (c *creditController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/credits/v1")

	// Midtrans calls this server-to-server; auth is the payload signature.
	h.Post("topup/notification", c.HandleNotification)

	h.Use(serverutils.JwtMiddleware)
	h.Get("balance", c.Balance)
	h.Get("history", c.History)
	h.Get("packages", c.Packages)
	h.Post("topup", c.TopUp)
}

func (c *creditController) Balance(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.creditService.Balance(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show balance", res))
}

func (c *creditController) History(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	page := ctx.QueryInt("page", 1)
	limit := ctx.QueryInt("limit", 20)

	res, err := c.creditService.History(ctx.Context(), userId, page, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list credit history", res))
}

func (c *creditController) Packages(ctx *fiber.Ctx) error {
	res := c.creditService.Packages(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Success list packages", res))
}

func (c *creditController) TopUp(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.TopUpRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.creditService.TopUp(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create top-up order", res))
}

func (c *creditController) HandleNotification(ctx *fiber.Ctx) error {
	var req dto.MidtransWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.creditService.HandleNotification(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"status": "ok"})
}
