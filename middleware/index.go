package middleware

import (
	"errors"
	"os"
	"strings"

	"shop_manager/constants"
	"shop_manager/helper"
	"shop_manager/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies("access_token")

		if token == "" {
			auth := c.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if token == "" {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Missing token", errors.New("no token"))
		}

		jwtToken, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil || !jwtToken.Valid {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid token", err)
		}

		c.Locals("user", jwtToken)
		return c.Next()
	}
}

// AdminOnly gates the staff console routes. Must run after Protected.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claim, isAdmin, isManager := helper.GetInfoAccountFromToken(c)
		if claim.AccountId == 0 {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.LOGIN_REQUIRED, errors.New("no staff account"))
		}
		if !isAdmin && !isManager {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ADMIN_ONLY, errors.New("insufficient role"))
		}
		c.Locals("account", claim)
		return c.Next()
	}
}

func OptionalJWT() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")

		if authHeader == "" {
			c.Locals("user", nil)
			return c.Next()
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})

		if err != nil || !token.Valid {
			c.Locals("user", nil)
			return c.Next()
		}

		c.Locals("user", token)
		return c.Next()
	}
}

func OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claim, customer := helper.GetInfoCustomerFromToken(c)

		if claim.CustomerId == 0 {
			c.Locals("customerId", uint(0))
			return c.Next()
		}

		c.Locals("customerId", claim.CustomerId)

		if customer.ID > 0 {
			c.Locals("customer", &customer)
		}

		return c.Next()
	}
}
