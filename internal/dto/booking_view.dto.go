package dto

import (
	"time"

	"github.com/gearbook/car-service-api/internal/models"
)

// BookingView is the denormalized projection served by the booking
// endpoints: names and contact info joined in, date formatted.
type BookingView struct {
	ID                  uint      `json:"id"`
	ServiceID           uint      `json:"serviceId"`
	ServiceName         string    `json:"serviceName"`
	CustomerID          uint      `json:"customerId"`
	CustomerName        string    `json:"customerName"`
	CustomerEmail       string    `json:"customerEmail"`
	CustomerPhone       string    `json:"customerPhone"`
	ProviderID          uint      `json:"providerId"`
	ProviderName        string    `json:"providerName"`
	BookingDate         string    `json:"bookingDate"`
	BookingTime         string    `json:"bookingTime"`
	Status              string    `json:"status"`
	TotalAmount         float64   `json:"totalAmount"`
	PaymentStatus       string    `json:"paymentStatus"`
	CustomerAddress     string    `json:"customerAddress"`
	SpecialInstructions string    `json:"specialInstructions"`
	CreatedAt           time.Time `json:"createdAt"`
}

// NewBookingView expects b.Service, b.Customer and b.Provider to be
// preloaded.
func NewBookingView(b models.Booking) BookingView {
	return BookingView{
		ID:                  b.ID,
		ServiceID:           b.ServiceID,
		ServiceName:         b.Service.Name,
		CustomerID:          b.CustomerID,
		CustomerName:        b.Customer.Name,
		CustomerEmail:       b.Customer.Email,
		CustomerPhone:       b.Customer.Phone,
		ProviderID:          b.ProviderID,
		ProviderName:        b.Provider.Name,
		BookingDate:         b.BookingDate.Format("2006-01-02"),
		BookingTime:         b.BookingTime,
		Status:              b.Status,
		TotalAmount:         b.TotalAmount,
		PaymentStatus:       b.PaymentStatus,
		CustomerAddress:     b.CustomerAddress,
		SpecialInstructions: b.SpecialInstructions,
		CreatedAt:           b.CreatedAt,
	}
}

// RecentBookingView is the trimmed projection embedded in dashboard
// stats.
type RecentBookingView struct {
	ID           uint    `json:"id"`
	ServiceName  string  `json:"serviceName"`
	CustomerName string  `json:"customerName"`
	ProviderName string  `json:"providerName"`
	BookingDate  string  `json:"bookingDate"`
	Status       string  `json:"status"`
	TotalAmount  float64 `json:"totalAmount"`
}

func NewRecentBookingView(b models.Booking) RecentBookingView {
	return RecentBookingView{
		ID:           b.ID,
		ServiceName:  b.Service.Name,
		CustomerName: b.Customer.Name,
		ProviderName: b.Provider.Name,
		BookingDate:  b.BookingDate.Format("2006-01-02"),
		Status:       b.Status,
		TotalAmount:  b.TotalAmount,
	}
}
