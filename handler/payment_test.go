package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"shop_manager/constants"
	"shop_manager/helper"
	"shop_manager/model"
	"shop_manager/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrderStore struct {
	mu          sync.Mutex
	orders      map[uint]*model.Order
	transitions int
}

func newStubOrderStore(orders ...*model.Order) *stubOrderStore {
	store := &stubOrderStore{orders: make(map[uint]*model.Order)}
	for _, o := range orders {
		store.orders[o.ID] = o
	}
	return store
}

func (s *stubOrderStore) ReferenceExists(reference string) (bool, error) {
	return false, nil
}

func (s *stubOrderStore) CreateOrder(order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order.ID = uint(len(s.orders) + 1)
	s.orders[order.ID] = order
	return nil
}

func (s *stubOrderStore) GetOrderByID(id uint) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, helper.ErrOrderNotFound
	}
	clone := *o
	return &clone, nil
}

func (s *stubOrderStore) GetOrderByReference(reference string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.PaymentReference == reference {
			clone := *o
			return &clone, nil
		}
	}
	return nil, helper.ErrOrderNotFound
}

func (s *stubOrderStore) GetOrderByInvoiceID(invoiceID string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.QPayInvoiceID != nil && *o.QPayInvoiceID == invoiceID {
			clone := *o
			return &clone, nil
		}
	}
	return nil, helper.ErrOrderNotFound
}

func (s *stubOrderStore) SaveInvoice(orderID uint, invoiceID, qrText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return helper.ErrOrderNotFound
	}
	o.QPayInvoiceID = &invoiceID
	o.QPayQRText = &qrText
	return nil
}

func (s *stubOrderStore) MarkPaid(orderID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.Status != constants.ORDER_STATUS_PENDING_PAYMENT {
		return false, nil
	}
	now := time.Now()
	o.Status = constants.ORDER_STATUS_PAID
	o.PaidAt = &now
	s.transitions++
	return true, nil
}

type stubGateway struct {
	createInvoiceFunc func(reference string, amount float64, description string) (*model.QPayInvoice, error)
	checkInvoiceFunc  func(invoiceID string) (*model.QPayPaymentCheck, error)
	getPaymentFunc    func(paymentID string) (*model.QPayPayment, error)
	checkCalls        int
}

func (g *stubGateway) CreateInvoice(reference string, amount float64, description string) (*model.QPayInvoice, error) {
	return g.createInvoiceFunc(reference, amount, description)
}

func (g *stubGateway) CheckInvoice(invoiceID string) (*model.QPayPaymentCheck, error) {
	g.checkCalls++
	return g.checkInvoiceFunc(invoiceID)
}

func (g *stubGateway) GetPayment(paymentID string) (*model.QPayPayment, error) {
	return g.getPaymentFunc(paymentID)
}

func pendingOrderWithInvoice(id uint, reference, invoiceID string) *model.Order {
	order := &model.Order{
		PaymentReference: reference,
		CustomerName:     "Батболд",
		PhoneNumber:      "99112233",
		TotalAmount:      25000,
		Status:           constants.ORDER_STATUS_PENDING_PAYMENT,
	}
	order.ID = id
	order.QPayInvoiceID = &invoiceID
	qr := "qr-data"
	order.QPayQRText = &qr
	return order
}

func settledPaymentGateway(invoiceID string) *stubGateway {
	return &stubGateway{
		getPaymentFunc: func(paymentID string) (*model.QPayPayment, error) {
			return &model.QPayPayment{
				PaymentID: paymentID, PaymentStatus: constants.QPAY_PAYMENT_PAID,
				PaymentAmount: "25000", ObjectType: "INVOICE", ObjectID: invoiceID,
			}, nil
		},
		checkInvoiceFunc: func(id string) (*model.QPayPaymentCheck, error) {
			return &model.QPayPaymentCheck{
				Count: 1,
				Rows: []model.QPayPayment{
					{PaymentID: "pay-1", PaymentStatus: constants.QPAY_PAYMENT_PAID, PaymentAmount: "25000", ObjectID: id},
				},
			}, nil
		},
	}
}

func callbackApp(store *stubOrderStore, gw *stubGateway) *fiber.App {
	app := fiber.New()
	app.Get("/qpay/callback", QPayCallback(store, gw))
	return app
}

func assertWebhookAck(t *testing.T, resp *http.Response) {
	t.Helper()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), fiber.MIMETextPlain)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", string(body))
}

func webhookRequest() *http.Request {
	return httptest.NewRequest(http.MethodGet, "/qpay/callback?qpay_payment_id=pay-1", nil)
}

func TestQPayCallbackWebhook(t *testing.T) {
	t.Run("settled_payment_marks_order_paid", func(t *testing.T) {
		store := newStubOrderStore(pendingOrderWithInvoice(1, "SC-ABCD-EFGH", "inv-1"))
		app := callbackApp(store, settledPaymentGateway("inv-1"))

		resp, err := app.Test(webhookRequest(), -1)
		require.NoError(t, err)
		assertWebhookAck(t, resp)

		order, err := store.GetOrderByID(1)
		require.NoError(t, err)
		assert.Equal(t, constants.ORDER_STATUS_PAID, order.Status)
		assert.Equal(t, 1, store.transitions)
	})

	t.Run("gateway_error_still_acknowledged", func(t *testing.T) {
		store := newStubOrderStore(pendingOrderWithInvoice(1, "SC-ABCD-EFGH", "inv-1"))
		gateway := &stubGateway{
			getPaymentFunc: func(paymentID string) (*model.QPayPayment, error) {
				return nil, assert.AnError
			},
		}
		app := callbackApp(store, gateway)

		resp, err := app.Test(webhookRequest(), -1)
		require.NoError(t, err)
		assertWebhookAck(t, resp)
		assert.Zero(t, store.transitions)
	})

	t.Run("already_paid_order_acknowledged_without_second_transition", func(t *testing.T) {
		order := pendingOrderWithInvoice(1, "SC-ABCD-EFGH", "inv-1")
		order.Status = constants.ORDER_STATUS_PAID
		store := newStubOrderStore(order)
		app := callbackApp(store, settledPaymentGateway("inv-1"))

		resp, err := app.Test(webhookRequest(), -1)
		require.NoError(t, err)
		assertWebhookAck(t, resp)
		assert.Zero(t, store.transitions)
	})

	t.Run("unknown_invoice_still_acknowledged", func(t *testing.T) {
		store := newStubOrderStore()
		app := callbackApp(store, settledPaymentGateway("inv-unknown"))

		resp, err := app.Test(webhookRequest(), -1)
		require.NoError(t, err)
		assertWebhookAck(t, resp)
	})
}

func TestQPayCallbackRedirect(t *testing.T) {
	t.Run("reference_settles_and_redirects", func(t *testing.T) {
		store := newStubOrderStore(pendingOrderWithInvoice(1, "SC-ABCD-EFGH", "inv-1"))
		app := callbackApp(store, settledPaymentGateway("inv-1"))

		req := httptest.NewRequest(http.MethodGet, "/qpay/callback?reference=SC-ABCD-EFGH", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Contains(t, resp.Header.Get(fiber.HeaderLocation), "checkout/success?reference=SC-ABCD-EFGH")

		order, err := store.GetOrderByID(1)
		require.NoError(t, err)
		assert.Equal(t, constants.ORDER_STATUS_PAID, order.Status)
	})

	t.Run("unknown_reference_still_redirects", func(t *testing.T) {
		store := newStubOrderStore()
		app := callbackApp(store, settledPaymentGateway("inv-1"))

		req := httptest.NewRequest(http.MethodGet, "/qpay/callback?reference=SC-ZZZZ-ZZZZ", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Contains(t, resp.Header.Get(fiber.HeaderLocation), "checkout/success")
	})
}

func pollApp(store *stubOrderStore, gw *stubGateway) *fiber.App {
	app := fiber.New()
	app.Post("/check", validate.OrderId(), CheckPayment(store, gw))
	return app
}

func pollStatus(t *testing.T, app *fiber.App, orderID uint) (int, string) {
	t.Helper()
	payload, err := json.Marshal(fiber.Map{"orderId": orderID})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/check", bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	if resp.StatusCode != fiber.StatusOK {
		return resp.StatusCode, ""
	}

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body.Status
}

func TestCheckPaymentPoll(t *testing.T) {
	t.Run("pending_without_invoice", func(t *testing.T) {
		order := pendingOrderWithInvoice(1, "SC-ABCD-EFGH", "inv-1")
		order.QPayInvoiceID = nil
		store := newStubOrderStore(order)
		gateway := settledPaymentGateway("inv-1")
		app := pollApp(store, gateway)

		code, status := pollStatus(t, app, 1)
		assert.Equal(t, fiber.StatusOK, code)
		assert.Equal(t, constants.ORDER_STATUS_PENDING_PAYMENT, status)
		assert.Zero(t, gateway.checkCalls, "no invoice means nothing to ask the gateway about")
	})

	t.Run("settled_invoice_flips_to_paid", func(t *testing.T) {
		store := newStubOrderStore(pendingOrderWithInvoice(1, "SC-ABCD-EFGH", "inv-1"))
		gateway := settledPaymentGateway("inv-1")
		app := pollApp(store, gateway)

		code, status := pollStatus(t, app, 1)
		assert.Equal(t, fiber.StatusOK, code)
		assert.Equal(t, constants.ORDER_STATUS_PAID, status)
		assert.Equal(t, 1, store.transitions)

		// a later poll reports PAID without touching the gateway again
		callsAfterFirst := gateway.checkCalls
		code, status = pollStatus(t, app, 1)
		assert.Equal(t, fiber.StatusOK, code)
		assert.Equal(t, constants.ORDER_STATUS_PAID, status)
		assert.Equal(t, 1, store.transitions)
		assert.Equal(t, callsAfterFirst, gateway.checkCalls)
	})

	t.Run("gateway_error_reports_current_status", func(t *testing.T) {
		store := newStubOrderStore(pendingOrderWithInvoice(1, "SC-ABCD-EFGH", "inv-1"))
		gateway := &stubGateway{
			checkInvoiceFunc: func(invoiceID string) (*model.QPayPaymentCheck, error) {
				return nil, assert.AnError
			},
		}
		app := pollApp(store, gateway)

		code, status := pollStatus(t, app, 1)
		assert.Equal(t, fiber.StatusOK, code)
		assert.Equal(t, constants.ORDER_STATUS_PENDING_PAYMENT, status)
	})

	t.Run("unknown_order", func(t *testing.T) {
		store := newStubOrderStore()
		app := pollApp(store, settledPaymentGateway("inv-1"))

		code, _ := pollStatus(t, app, 42)
		assert.Equal(t, fiber.StatusNotFound, code)
	})
}
