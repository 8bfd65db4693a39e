package helper

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"shop_manager/constants"
	"shop_manager/model"

	"github.com/jinzhu/copier"
)

// OrderStore is the persistence surface the order state machine needs.
// Implemented by GormOrderStore; mocked in tests.
type OrderStore interface {
	ReferenceChecker
	CreateOrder(order *model.Order) error
	GetOrderByID(id uint) (*model.Order, error)
	GetOrderByReference(reference string) (*model.Order, error)
	GetOrderByInvoiceID(invoiceID string) (*model.Order, error)
	SaveInvoice(orderID uint, invoiceID, qrText string) error
	// MarkPaid flips PENDING_PAYMENT -> PAID. Returns false without error
	// when the order was already paid (or gone), so racing triggers are no-ops.
	MarkPaid(orderID uint) (bool, error)
}

// InvoiceCreator is the gateway surface for invoice issuance.
type InvoiceCreator interface {
	CreateInvoice(reference string, amount float64, description string) (*model.QPayInvoice, error)
}

// PaymentChecker is the gateway surface for reconciliation.
type PaymentChecker interface {
	CheckInvoice(invoiceID string) (*model.QPayPaymentCheck, error)
	GetPayment(paymentID string) (*model.QPayPayment, error)
}

// CreateOrder validates the input, snapshots the line items, mints a
// payment reference and persists everything atomically. On a reference
// collision at insert time it simply regenerates and retries.
func CreateOrder(store OrderStore, input model.CreateOrderInput, customerID *uint) (*model.Order, error) {
	if input.CustomerName == "" || len(input.PhoneNumber) < 8 || len(input.Items) == 0 {
		return nil, ErrInvalidOrderInput
	}

	total := float64(0)
	items := make([]model.OrderItem, 0, len(input.Items))
	for _, itemInput := range input.Items {
		if itemInput.Quantity < 1 || itemInput.Price < 0 {
			return nil, ErrInvalidOrderInput
		}
		var item model.OrderItem
		copier.Copy(&item, &itemInput)
		items = append(items, item)
		total += itemInput.Price * float64(itemInput.Quantity)
	}

	for {
		reference, err := GenerateOrderReference(store)
		if err != nil {
			return nil, err
		}

		order := &model.Order{
			PaymentReference: reference,
			CustomerID:       customerID,
			CustomerName:     input.CustomerName,
			PhoneNumber:      input.PhoneNumber,
			Email:            input.Email,
			Address:          input.Address,
			TotalAmount:      total,
			Status:           constants.ORDER_STATUS_PENDING_PAYMENT,
			Items:            items,
		}

		if err := store.CreateOrder(order); err != nil {
			if errors.Is(err, ErrDuplicateReference) {
				log.Printf("reference %s lost the insert race, retrying", reference)
				continue
			}
			return nil, err
		}
		return order, nil
	}
}

// IssueInvoice asks the gateway for a fresh invoice and stores its id and
// QR payload on the order. Safe to call again after a transient failure:
// the newest invoice simply overwrites the previous one.
func IssueInvoice(store OrderStore, gw InvoiceCreator, orderID uint) (*model.QPayInvoice, *model.Order, error) {
	order, err := store.GetOrderByID(orderID)
	if err != nil {
		return nil, nil, err
	}

	description := fmt.Sprintf("SC Store захиалга %s", order.PaymentReference)
	invoice, err := gw.CreateInvoice(order.PaymentReference, order.TotalAmount, description)
	if err != nil {
		return nil, order, err
	}

	if err := store.SaveInvoice(order.ID, invoice.InvoiceID, invoice.QRText); err != nil {
		return nil, order, err
	}
	order.QPayInvoiceID = &invoice.InvoiceID
	order.QPayQRText = &invoice.QRText
	return invoice, order, nil
}

// MarkOrderPaid is the single idempotent transition primitive. Every
// trigger (webhook, poll, redirect, admin override) lands here.
func MarkOrderPaid(store OrderStore, orderID uint) (bool, error) {
	return store.MarkPaid(orderID)
}

// ReconcileByPayment handles the webhook path: fetch the payment by id,
// and if the gateway reports it settled, mark the owning order paid.
func ReconcileByPayment(store OrderStore, gw PaymentChecker, paymentID string) (*model.Order, bool, error) {
	payment, err := gw.GetPayment(paymentID)
	if err != nil {
		return nil, false, err
	}
	if payment.PaymentStatus != constants.QPAY_PAYMENT_PAID {
		return nil, false, nil
	}

	order, err := store.GetOrderByInvoiceID(payment.ObjectID)
	if err != nil {
		return nil, false, err
	}

	logAmountMismatch(order, payment.PaymentAmount)

	changed, err := store.MarkPaid(order.ID)
	if changed {
		order.Status = constants.ORDER_STATUS_PAID
	}
	return order, changed, err
}

// ReconcileByInvoice handles the poll and redirect paths: check the
// stored invoice and mark the order paid if any payment row settled.
func ReconcileByInvoice(store OrderStore, gw PaymentChecker, orderID uint) (*model.Order, bool, error) {
	order, err := store.GetOrderByID(orderID)
	if err != nil {
		return nil, false, err
	}
	if order.Status == constants.ORDER_STATUS_PAID {
		return order, false, nil
	}
	if order.QPayInvoiceID == nil {
		return order, false, nil
	}

	check, err := gw.CheckInvoice(*order.QPayInvoiceID)
	if err != nil {
		return order, false, err
	}

	for _, row := range check.Rows {
		if row.PaymentStatus != constants.QPAY_PAYMENT_PAID {
			continue
		}
		logAmountMismatch(order, row.PaymentAmount)
		changed, err := store.MarkPaid(order.ID)
		if changed {
			order.Status = constants.ORDER_STATUS_PAID
			now := time.Now()
			order.PaidAt = &now
		}
		return order, changed, err
	}
	return order, false, nil
}

// Amount mismatches are not modeled as a state; they are logged for
// operator follow-up and the order is still marked paid.
func logAmountMismatch(order *model.Order, paidAmount string) {
	amount, err := strconv.ParseFloat(paidAmount, 64)
	if err != nil {
		return
	}
	if amount != order.TotalAmount {
		log.Printf("order %s: paid amount %.2f differs from invoice amount %.2f", order.PaymentReference, amount, order.TotalAmount)
	}
}
