package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log"

	"shop_manager/config"
	"shop_manager/constants"
	"shop_manager/helper"
	"shop_manager/model"
	"shop_manager/utils"

	"github.com/gofiber/fiber/v2"
)

// PaymentGateway is everything the payment endpoints need from QPay.
type PaymentGateway interface {
	helper.InvoiceCreator
	helper.PaymentChecker
}

// afterOrderPaid runs the side effects of a successful transition:
// admin live feed broadcast and the confirmation email. Only the caller
// that actually flipped the status invokes this, so redundant triggers
// produce no duplicate effects.
func afterOrderPaid(order *model.Order) {
	if order == nil {
		return
	}
	BroadcastOrderPaid(order.ID, order.PaymentReference)
	if order.Email != "" {
		utils.SendOrderPaidEmail(order.Email, utils.OrderPaidEmailData{
			PaymentReference: order.PaymentReference,
			CustomerName:     order.CustomerName,
			TotalAmount:      order.TotalAmount,
		})
	}
}

// CreateInvoice handles POST /zakhialga/invoice: asks QPay for a fresh
// invoice on the caller's order. Gateway failures come back as 502 with
// a retry message; the order itself stays valid and unpaid.
func CreateInvoice(store helper.OrderStore, gw PaymentGateway) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, ok := c.Locals("OrderIdInput").(model.OrderIdInput)
		if !ok {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ORDER_INVALID_INPUT, nil)
		}

		order, err := store.GetOrderByID(input.OrderId)
		if err != nil {
			if errors.Is(err, helper.ErrOrderNotFound) {
				return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ORDER_NOT_FOUND, err)
			}
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
		}

		if order.CustomerID != nil {
			claim, _ := helper.GetInfoCustomerFromToken(c)
			if claim.CustomerId != *order.CustomerID {
				return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ORDER_NOT_YOURS, nil)
			}
		}

		invoice, _, err := helper.IssueInvoice(store, gw, order.ID)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadGateway, constants.INVOICE_CREATE_ERROR, err)
		}

		// render the QR payload server-side so the frontend can show it directly
		qrBase64 := ""
		if qrBytes, err := utils.GenerateQRCode(invoice.QRText, 300); err != nil {
			log.Printf("QR render failed for order %s: %v", order.PaymentReference, err)
		} else {
			qrBase64 = "data:image/png;base64," + base64.StdEncoding.EncodeToString(qrBytes)
		}

		return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
			"invoiceId": invoice.InvoiceID,
			"qrText":    invoice.QRText,
			"qrImage":   invoice.QRImage,
			"qrCode":    qrBase64,
			"urls":      invoice.Urls,
		})
	}
}

// CheckPayment handles the client poll: POST { orderId } every few
// seconds from the checkout page. Gateway hiccups are absorbed - the
// response simply reports the current status and a later poll retries.
func CheckPayment(store helper.OrderStore, gw PaymentGateway) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, ok := c.Locals("OrderIdInput").(model.OrderIdInput)
		if !ok {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ORDER_INVALID_INPUT, nil)
		}

		order, err := store.GetOrderByID(input.OrderId)
		if err != nil {
			if errors.Is(err, helper.ErrOrderNotFound) {
				return utils.ErrorResponse(c, fiber.StatusNotFound, constants.ORDER_NOT_FOUND, err)
			}
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
		}

		if order.CustomerID != nil {
			claim, _ := helper.GetInfoCustomerFromToken(c)
			if claim.CustomerId != *order.CustomerID {
				return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ORDER_NOT_YOURS, nil)
			}
		}

		reconciled, changed, err := helper.ReconcileByInvoice(store, gw, order.ID)
		if err != nil {
			log.Printf("poll reconcile failed for order %d: %v", input.OrderId, err)
		}
		if reconciled != nil {
			order = reconciled
		}
		if changed {
			afterOrderPaid(order)
		}

		return c.JSON(fiber.Map{
			"status": order.Status,
		})
	}
}

// QPayCallback serves both traffic shapes QPay sends at the same URL:
// server-to-server webhooks carry qpay_payment_id, browser returns from
// the hosted flow carry the payment reference.
func QPayCallback(store helper.OrderStore, gw PaymentGateway) fiber.Handler {
	return func(c *fiber.Ctx) error {
		paymentId := c.Query("qpay_payment_id")
		if paymentId != "" {
			// Webhook: the acknowledgment must be 200/SUCCESS on every
			// path, or the provider keeps retrying an event we already
			// took delivery of. Processing failures are logged only.
			order, changed, err := helper.ReconcileByPayment(store, gw, paymentId)
			if err != nil {
				log.Printf("webhook reconcile failed for payment %s: %v", paymentId, err)
			}
			if changed {
				afterOrderPaid(order)
			}
			c.Set(fiber.HeaderContentType, fiber.MIMETextPlain)
			return c.Status(fiber.StatusOK).SendString("SUCCESS")
		}

		reference := c.Query("reference")
		successURL := fmt.Sprintf("%s/checkout/success?reference=%s", config.Config("FRONTEND_URL"), reference)

		if reference == "" {
			return c.Redirect(config.Config("FRONTEND_URL") + "/checkout/success")
		}

		// Browser redirect: safety net in case the webhook was delayed
		// or dropped. Failures are absorbed the same way - the poll loop
		// or a later webhook still converges the order.
		order, err := store.GetOrderByReference(reference)
		if err != nil {
			log.Printf("redirect lookup failed for reference %s: %v", reference, err)
			return c.Redirect(successURL)
		}

		order, changed, err := helper.ReconcileByInvoice(store, gw, order.ID)
		if err != nil {
			log.Printf("redirect reconcile failed for order %s: %v", reference, err)
		}
		if changed {
			afterOrderPaid(order)
		}

		return c.Redirect(successURL)
	}
}
