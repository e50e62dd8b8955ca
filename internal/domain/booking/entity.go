package booking

import "github.com/gearbook/car-service-api/internal/models"

// ===============================
// Domain Actions
// ===============================

func Cancel(b *models.Booking) error {
	if err := CanCancel(Status(b.Status)); err != nil {
		return err
	}

	// Payment status is untouched; refunds are a separate concern.
	b.Status = string(StatusCancelled)
	return nil
}

func Transition(b *models.Booking, to Status) error {
	if err := CanTransition(Status(b.Status), to); err != nil {
		return err
	}

	b.Status = string(to)
	return nil
}

func MarkPaid(b *models.Booking) {
	b.PaymentStatus = string(PaymentPaid)
	b.Status = string(StatusConfirmed)
}
