package router

import (
	"shop_manager/handler"
	"shop_manager/helper"
	"shop_manager/middleware"
	"shop_manager/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App) {
	store := helper.Orders()
	gateway := handler.QPayService()

	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1", logger.New())

	auth := v1.Group("/auth")
	auth.Post("/login", handler.Login)
	auth.Post("/refresh-token", handler.RefreshToken)

	// shoppers (registered + guests)
	khariltsagch := v1.Group("/khariltsagch")
	khariltsagch.Post("/register", validate.RegisterCustomer(), handler.RegisterCustomer)
	khariltsagch.Post("/login", handler.CustomerLogin)
	khariltsagch.Post("/guest", handler.CreateGuest)
	khariltsagch.Get("/me", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.GetCurrentCustomer)

	// orders + payment
	zakhialga := v1.Group("/zakhialga", logger.New())
	zakhialga.Post("/", middleware.OptionalJWT(), middleware.OptionalAuth(), validate.CreateOrder(), handler.CreateOrder)
	zakhialga.Get("/", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.GetMyOrders)
	zakhialga.Post("/invoice", middleware.OptionalJWT(), middleware.OptionalAuth(), validate.OrderId(), handler.CreateInvoice(store, gateway))
	zakhialga.Post("/check", middleware.OptionalJWT(), middleware.OptionalAuth(), validate.OrderId(), handler.CheckPayment(store, gateway))
	zakhialga.Get("/:reference", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.GetOrderByReference)

	// QPay hits this with qpay_payment_id (webhook) or reference (redirect)
	app.Get("/qpay/callback", handler.QPayCallback(store, gateway))

	// staff console
	admin := v1.Group("/admin", logger.New(), middleware.Protected(), middleware.AdminOnly())
	admin.Get("/orders", handler.GetOrders)
	admin.Get("/orders/trash", handler.GetTrashedOrders)
	admin.Post("/orders/trash/clean", handler.CleanTrash)
	admin.Patch("/orders/:orderId/paid", handler.MarkOrderPaid)
	admin.Delete("/orders/:orderId/trash", handler.MoveOrderToTrash)
	admin.Patch("/orders/:orderId/restore", handler.RestoreOrderFromTrash)
	admin.Delete("/orders/:orderId", handler.DeleteOrderPermanently)
	admin.Get("/orders/live", websocket.New(handler.OrderFeedWebsocket))
}
