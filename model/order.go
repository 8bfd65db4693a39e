package model

import "time"

type Order struct {
	DTO
	PaymentReference string      `gorm:"uniqueIndex;size:20" json:"paymentReference"` // SC-XXXX-XXXX
	CustomerID       *uint       `json:"customerId,omitempty"`                        // nullable: guest checkout
	Customer         *Customer   `json:"customer,omitempty"`
	CustomerName     string      `gorm:"not null" json:"customerName"`
	PhoneNumber      string      `gorm:"not null" json:"phoneNumber"`
	Email            string      `json:"email"`
	Address          string      `json:"address"`
	TotalAmount      float64     `gorm:"not null" json:"totalAmount"` // fixed at creation, never recomputed
	Status           string      `gorm:"default:PENDING_PAYMENT" json:"status"`
	QPayInvoiceID    *string     `gorm:"column:qpay_invoice_id;index" json:"qpayInvoiceId,omitempty"`
	QPayQRText       *string     `gorm:"column:qpay_qr_text" json:"qpayQrText,omitempty"`
	PaidAt           *time.Time  `json:"paidAt,omitempty"`
	DeletedAt        *time.Time  `gorm:"index" json:"deletedAt,omitempty"` // non-null = in trash
	Items            []OrderItem `gorm:"foreignKey:OrderId" json:"items"`
}

// OrderItem is a point-in-time snapshot; catalog changes must not touch it
type OrderItem struct {
	DTO
	OrderId     uint    `gorm:"not null;index" json:"orderId"`
	ProductID   uint    `gorm:"not null" json:"productId"`
	ProductName string  `gorm:"not null" json:"productName"`
	Price       float64 `gorm:"not null" json:"price"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	Image       string  `json:"image"`
}

type CreateOrderItemInput struct {
	ProductID   uint    `json:"productId" validate:"required,gt=0"`
	ProductName string  `json:"productName" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"required,gte=1"`
	Image       string  `json:"image"`
}

type CreateOrderInput struct {
	CustomerName string                 `json:"customerName" validate:"required"`
	PhoneNumber  string                 `json:"phoneNumber" validate:"required,min=8"`
	Email        string                 `json:"email" validate:"omitempty,email"`
	Address      string                 `json:"address" validate:"required"`
	Items        []CreateOrderItemInput `json:"items" validate:"required,min=1,dive"`
}

type OrderIdInput struct {
	OrderId uint `json:"orderId" validate:"required,gt=0"`
}

type FilterOrder struct {
	Pagination
	SearchKey string  `json:"searchKey"`
	Status    *string `json:"status"`
}
