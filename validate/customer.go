package validate

import (
	"fmt"

	"shop_manager/model"

	"github.com/gofiber/fiber/v2"
)

func RegisterCustomer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.RegisterCustomerInput
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

		c.Locals("RegisterCustomer", input)
		return c.Next()
	}
}
