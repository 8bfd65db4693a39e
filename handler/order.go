package handler

import (
	"encoding/base64"
	"errors"
	"log"

	"shop_manager/constants"
	"shop_manager/database"
	"shop_manager/helper"
	"shop_manager/model"
	"shop_manager/utils"

	"github.com/gofiber/fiber/v2"
)

// CreateOrder handles checkout submission. The total is computed from
// the submitted item snapshots and fixed on the order; catalog price
// changes after this point never touch it.
func CreateOrder(c *fiber.Ctx) error {
	input, ok := c.Locals("CreateOrderInput").(model.CreateOrderInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ORDER_INVALID_INPUT, nil)
	}

	claim, _ := helper.GetInfoCustomerFromToken(c)
	var customerID *uint
	if claim.CustomerId != 0 {
		customerID = utils.Ptr(claim.CustomerId)
	}

	order, err := helper.CreateOrder(helper.Orders(), input, customerID)
	if err != nil {
		if errors.Is(err, helper.ErrInvalidOrderInput) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ORDER_INVALID_INPUT, err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_CREATE, err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, fiber.Map{
		"orderId":          order.ID,
		"paymentReference": order.PaymentReference,
	})
}

func GetMyOrders(c *fiber.Ctx) error {
	customer, ok := c.Locals("customer").(*model.Customer)
	if !ok || customer == nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.LOGIN_REQUIRED, nil)
	}

	var orders []model.Order
	if err := database.DB.
		Preload("Items").
		Where("customer_id = ? AND deleted_at IS NULL", customer.ID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, orders)
}

// GetOrderByReference is the checkout success / order detail lookup.
func GetOrderByReference(c *fiber.Ctx) error {
	reference := c.Params("reference")

	var order model.Order
	if err := database.DB.
		Preload("Items").
		Where("payment_reference = ? AND deleted_at IS NULL", reference).
		First(&order).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ORDER_NOT_FOUND, err)
	}

	qrBase64 := ""
	if order.QPayQRText != nil {
		qrBytes, err := utils.GenerateQRCode(*order.QPayQRText, 300)
		if err != nil {
			log.Printf("QR render failed for order %s: %v", order.PaymentReference, err)
		} else {
			qrBase64 = "data:image/png;base64," + base64.StdEncoding.EncodeToString(qrBytes)
		}
	}

	response := fiber.Map{
		"orderId":          order.ID,
		"paymentReference": order.PaymentReference,
		"customerName":     order.CustomerName,
		"phoneNumber":      order.PhoneNumber,
		"address":          order.Address,
		"totalAmount":      order.TotalAmount,
		"status":           order.Status,
		"paidAt":           order.PaidAt,
		"items":            order.Items,
		"qrCode":           qrBase64,
	}

	return utils.SuccessResponse(c, fiber.StatusOK, response)
}
