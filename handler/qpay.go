package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"shop_manager/config"
	"shop_manager/model"

	"github.com/google/uuid"
)

// QPay Service: thin client over the QPay v2 merchant API. The bearer
// token is cached on the instance and refreshed before expiry; the
// refresh runs under the mutex so concurrent callers trigger a single
// token request.
type QPay struct {
	Config model.QPayConfig

	client *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewQPay() *QPay {
	return &QPay{
		Config: model.QPayConfig{
			BaseURL:     config.Config("QPAY_URL"),
			Username:    config.Config("QPAY_USERNAME"),
			Password:    config.Config("QPAY_PASSWORD"),
			InvoiceCode: config.Config("QPAY_INVOICE_CODE"),
			CallbackURL: config.Config("APP_URL") + "/qpay/callback",
		},
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

var (
	qpayOnce    sync.Once
	qpayService *QPay
)

// QPayService returns the shared client so every caller sees the same
// token cache.
func QPayService() *QPay {
	qpayOnce.Do(func() {
		qpayService = NewQPay()
	})
	return qpayService
}

// Token returns a cached bearer token, refreshing it when stale.
func (q *QPay) Token() (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.accessToken != "" && time.Now().Before(q.tokenExpiry) {
		return q.accessToken, nil
	}

	req, err := http.NewRequest(http.MethodPost, q.Config.BaseURL+"/v2/auth/token", nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(q.Config.Username, q.Config.Password)

	resp, err := q.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("qpay auth returned %d: %s", resp.StatusCode, string(body))
	}

	var tokenResponse model.QPayTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return "", err
	}

	q.accessToken = tokenResponse.AccessToken
	// renew a minute early so in-flight calls never carry an expired token
	q.tokenExpiry = time.Now().Add(time.Duration(tokenResponse.ExpiresIn)*time.Second - time.Minute)

	return q.accessToken, nil
}

func (q *QPay) doRequest(method, path string, payload any, out any) error {
	token, err := q.Token()
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, q.Config.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qpay %s %s returned %d: %s", method, path, resp.StatusCode, string(respBody))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// CreateInvoice issues a new gateway invoice for the given reference.
// sender_invoice_no gets a fresh suffix each call, so a retried request
// yields a distinct invoice rather than a provider-side duplicate error.
func (q *QPay) CreateInvoice(reference string, amount float64, description string) (*model.QPayInvoice, error) {
	payload := map[string]any{
		"invoice_code":          q.Config.InvoiceCode,
		"sender_invoice_no":     reference + "-" + uuid.New().String()[:8],
		"invoice_receiver_code": "terminal",
		"invoice_description":   description,
		"amount":                amount,
		"callback_url":          q.Config.CallbackURL + "?reference=" + reference,
	}

	var invoice model.QPayInvoice
	if err := q.doRequest(http.MethodPost, "/v2/invoice", payload, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// CheckInvoice lists the payment rows the gateway recorded against an invoice.
func (q *QPay) CheckInvoice(invoiceID string) (*model.QPayPaymentCheck, error) {
	payload := map[string]any{
		"object_type": "INVOICE",
		"object_id":   invoiceID,
		"offset": map[string]any{
			"page_number": 1,
			"page_limit":  100,
		},
	}

	var check model.QPayPaymentCheck
	if err := q.doRequest(http.MethodPost, "/v2/payment/check", payload, &check); err != nil {
		return nil, err
	}
	return &check, nil
}

// GetPayment fetches a single payment row by the id the webhook carries.
func (q *QPay) GetPayment(paymentID string) (*model.QPayPayment, error) {
	var payment model.QPayPayment
	if err := q.doRequest(http.MethodGet, "/v2/payment/"+paymentID, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// Administrative primitives. Not exercised by the checkout flow; staff
// tooling calls them when a stale invoice or payment needs manual cleanup.

func (q *QPay) CancelInvoice(invoiceID string) error {
	return q.doRequest(http.MethodDelete, "/v2/invoice/"+invoiceID, nil, nil)
}

func (q *QPay) CancelPayment(paymentID string) error {
	return q.doRequest(http.MethodDelete, "/v2/payment/cancel/"+paymentID, nil, nil)
}

func (q *QPay) RefundPayment(paymentID string) error {
	return q.doRequest(http.MethodDelete, "/v2/payment/refund/"+paymentID, nil, nil)
}
