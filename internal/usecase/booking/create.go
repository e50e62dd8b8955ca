package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/gearbook/car-service-api/internal/audit"
	domain "github.com/gearbook/car-service-api/internal/domain/booking"
	"github.com/gearbook/car-service-api/internal/httperr"
	"github.com/gearbook/car-service-api/internal/models"
	"github.com/gearbook/car-service-api/internal/payment"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	CustomerID    uint
	CustomerEmail string

	ServiceID uint

	BookingDate time.Time
	BookingTime string

	CustomerAddress     string
	SpecialInstructions string
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo     domain.Repository
	capturer payment.Capturer
	audit    *audit.Dispatcher
}

func NewCreateBooking(
	repo domain.Repository,
	capturer payment.Capturer,
	audit *audit.Dispatcher,
) *CreateBooking {
	return &CreateBooking{
		repo:     repo,
		capturer: capturer,
		audit:    audit,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Booking, error) {

	svc, err := uc.repo.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}

	if !svc.IsActive {
		return nil, httperr.ErrBusiness(httperr.CodeServiceInactive)
	}

	// Price and provider are snapshotted here. Later catalog edits
	// never reach existing bookings.
	b := &models.Booking{
		ServiceID:           svc.ID,
		CustomerID:          in.CustomerID,
		ProviderID:          svc.ProviderID,
		TotalAmount:         svc.Price,
		BookingDate:         in.BookingDate,
		BookingTime:         in.BookingTime,
		Status:              string(domain.InitialStatus()),
		PaymentStatus:       string(domain.InitialPaymentStatus()),
		CustomerAddress:     in.CustomerAddress,
		SpecialInstructions: in.SpecialInstructions,
	}

	if err := uc.repo.CreateBooking(ctx, b); err != nil {
		return nil, err
	}

	receipt, err := uc.capturer.Capture(ctx, payment.CaptureRequest{
		Amount:      b.TotalAmount,
		Description: fmt.Sprintf("Booking #%d - %s", b.ID, svc.Name),
		PayerEmail:  in.CustomerEmail,
	})
	if err != nil {
		// The booking stays pending/pending; the client can retry
		// payment out of band.
		return nil, httperr.ErrBusiness(httperr.CodePaymentFailed)
	}

	domain.MarkPaid(b)
	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.CustomerID,
		Action:   "booking_created",
		Entity:   "booking",
		EntityID: &b.ID,
		Metadata: map[string]any{
			"service_id":        svc.ID,
			"total_amount":      b.TotalAmount,
			"payment_reference": receipt.Reference,
		},
	})

	return b, nil
}
