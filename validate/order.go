package validate

import (
	"fmt"

	"shop_manager/model"

	"github.com/gofiber/fiber/v2"
)

func CreateOrder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.CreateOrderInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Хүсэлтийг уншиж чадсангүй: %s", err.Error()),
			})
		}

		if err := validate.Struct(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals("CreateOrderInput", input)
		return c.Next()
	}
}

// OrderId validates { orderId } bodies (poll + invoice endpoints).
func OrderId() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.OrderIdInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Хүсэлтийг уншиж чадсангүй: %s", err.Error()),
			})
		}

		if err := validate.Struct(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals("OrderIdInput", input)
		return c.Next()
	}
}
