package models

import "time"

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ServiceID uint    `gorm:"not null" json:"serviceId"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	CustomerID uint `gorm:"not null" json:"customerId"`
	Customer   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	// Snapshotted from the service at creation time. A provider changing
	// a service's price or owner later does not touch existing bookings.
	ProviderID  uint    `gorm:"not null" json:"providerId"`
	Provider    User    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	TotalAmount float64 `gorm:"not null" json:"totalAmount"`

	BookingDate time.Time `gorm:"not null" json:"bookingDate"`
	BookingTime string    `gorm:"size:10;not null" json:"bookingTime"`

	Status        string `gorm:"size:50;not null;default:'pending'" json:"status"`
	PaymentStatus string `gorm:"size:50;not null;default:'pending'" json:"paymentStatus"`

	CustomerAddress     string `gorm:"size:500;not null" json:"customerAddress"`
	SpecialInstructions string `gorm:"size:1000" json:"specialInstructions"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
