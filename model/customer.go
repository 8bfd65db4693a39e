package model

type Customer struct {
	DTO
	Email       *string `gorm:"uniqueIndex" json:"email"` // null for guests
	PhoneNumber string  `json:"phoneNumber"`
	Password    string  `json:"-"`
	UserName    string  `json:"username"`

	IsGuest     bool  `gorm:"not null;default:false" json:"isGuest"`
	GuestNumber *uint `gorm:"uniqueIndex" json:"guestNumber,omitempty"` // Зочин#N, sequential among guests

	IsActive bool `gorm:"default:true" json:"isActive"`
}

type Customers []Customer

type RegisterCustomerInput struct {
	UserName    string `json:"username" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,min=8"`
	Password    string `json:"password" validate:"required,min=6"`
}
