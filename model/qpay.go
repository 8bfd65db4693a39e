package model

type QPayConfig struct {
	BaseURL     string
	Username    string
	Password    string
	InvoiceCode string
	CallbackURL string
}

type QPayTokenResponse struct {
	TokenType        string `json:"token_type"`
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshToken     string `json:"refresh_token"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}

type QPayBankURL struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
	Link        string `json:"link"`
}

type QPayInvoice struct {
	InvoiceID string        `json:"invoice_id"`
	QRText    string        `json:"qr_text"`
	QRImage   string        `json:"qr_image"`
	ShortURL  string        `json:"qPay_shortUrl"`
	Urls      []QPayBankURL `json:"urls"`
}

type QPayPayment struct {
	PaymentID       string `json:"payment_id"`
	PaymentStatus   string `json:"payment_status"` // NEW, PAID, FAILED, REFUNDED
	PaymentAmount   string `json:"payment_amount"`
	PaymentDate     string `json:"payment_date"`
	PaymentCurrency string `json:"payment_currency"`
	PaymentWallet   string `json:"payment_wallet"`
	ObjectType      string `json:"object_type"`
	ObjectID        string `json:"object_id"`
}

type QPayPaymentCheck struct {
	Count      int           `json:"count"`
	PaidAmount float64       `json:"paid_amount"`
	Rows       []QPayPayment `json:"rows"`
}
