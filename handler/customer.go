package handler

import (
	"errors"
	"fmt"
	"strings"

	"shop_manager/constants"
	"shop_manager/database"
	"shop_manager/helper"
	"shop_manager/model"
	"shop_manager/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

func RegisterCustomer(c *fiber.Ctx) error {
	db := database.DB

	customerInput, ok := c.Locals("RegisterCustomer").(model.RegisterCustomerInput)
	if !ok {
		return utils.ErrorResponseHaveKey(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, nil, "general")
	}

	var existingUser model.Customer
	if err := db.Where("user_name = ?", customerInput.UserName).First(&existingUser).Error; err == nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusConflict, "Хэрэглэгчийн нэр бүртгэлтэй байна", nil, "username")
	}

	hash, err := helper.HashPassword(customerInput.Password)
	if err != nil {
		return utils.ErrorResponseHaveKey(c, fiber.StatusInternalServerError, constants.CAN_NOT_HASH_PASSWORD, err, "password")
	}

	newCustomer := new(model.Customer)
	copier.Copy(&newCustomer, &customerInput)
	newCustomer.Email = &customerInput.Email
	newCustomer.Password = hash
	newCustomer.IsActive = true

	if err := db.Create(&newCustomer).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			if strings.Contains(err.Error(), "email") {
				return utils.ErrorResponseHaveKey(c, fiber.StatusConflict, "Имэйл бүртгэлтэй байна", nil, "email")
			}
			return utils.ErrorResponseHaveKey(c, fiber.StatusConflict, "Хэрэглэгчийн нэр бүртгэлтэй байна", nil, "username")
		}
		return utils.ErrorResponseHaveKey(c, fiber.StatusInternalServerError, constants.ERROR_CREATE, err, "general")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, newCustomer)
}

func CustomerLogin(c *fiber.Ctx) error {
	type LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	loginRequest := new(LoginRequest)

	if err := c.BodyParser(loginRequest); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.MISSING_LOGIN_INPUT, err)
	}

	if loginRequest.Email == "" || loginRequest.Password == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.MISSING_LOGIN_INPUT, errors.New("email and password are required"))
	}

	customer, err := helper.GetCustomerByEmail(loginRequest.Email)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	if customer == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, constants.INVALID_EMAIL, errors.New("customer not exists"))
	}

	if !helper.CheckPasswordHash(loginRequest.Password, customer.Password) {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.INVALID_PASSWORD, errors.New("password does not match"))
	}

	if !customer.IsActive {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ACCOUNT_NOT_ACTIVE, errors.New("active false"))
	}

	tokenClaim := model.TokenClaim{
		CustomerId: customer.ID,
		Username:   customer.UserName,
	}

	token, err := helper.GenerateAccessToken(tokenClaim)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	refreshToken, err := helper.GenerateRefreshToken(tokenClaim)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"tokens": model.TokenData{
			AccessToken:  token,
			RefreshToken: refreshToken,
		},
		"customer": customer,
	})
}

// CreateGuest provisions an anonymous identity so an unauthenticated
// shopper can check out. Guests get a sequential display number unique
// among guests (Зочин#1, Зочин#2, ...), assigned inside the creation
// transaction.
func CreateGuest(c *fiber.Ctx) error {
	var guest model.Customer

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var maxNumber uint
		row := tx.Model(&model.Customer{}).
			Where("is_guest = ?", true).
			Select("COALESCE(MAX(guest_number), 0)").
			Row()
		if err := row.Scan(&maxNumber); err != nil {
			return err
		}

		number := maxNumber + 1
		guest = model.Customer{
			UserName:    fmt.Sprintf("%s%d", constants.GUEST_NAME_PREFIX, number),
			IsGuest:     true,
			GuestNumber: &number,
			IsActive:    true,
		}
		return tx.Create(&guest).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_CREATE, err)
	}

	tokenClaim := model.TokenClaim{
		CustomerId: guest.ID,
		Username:   guest.UserName,
	}

	token, err := helper.GenerateAccessToken(tokenClaim)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	refreshToken, err := helper.GenerateRefreshToken(tokenClaim)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"tokens": model.TokenData{
			AccessToken:  token,
			RefreshToken: refreshToken,
		},
		"customer": guest,
	})
}

func GetCurrentCustomer(c *fiber.Ctx) error {
	customer, ok := c.Locals("customer").(*model.Customer)
	if !ok || customer == nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.LOGIN_REQUIRED, nil)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, customer)
}
