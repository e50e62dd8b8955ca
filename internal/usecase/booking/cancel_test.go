package booking

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/gearbook/car-service-api/internal/audit"
	domain "github.com/gearbook/car-service-api/internal/domain/booking"
	"github.com/gearbook/car-service-api/internal/httperr"
	infraRepo "github.com/gearbook/car-service-api/internal/infra/repository"
	"github.com/gearbook/car-service-api/internal/models"
)

func seedBooking(t *testing.T, db *gorm.DB, customerID, providerID, serviceID uint, status string) *models.Booking {
	t.Helper()

	b := &models.Booking{
		ServiceID:       serviceID,
		CustomerID:      customerID,
		ProviderID:      providerID,
		TotalAmount:     50,
		BookingDate:     time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		BookingTime:     "10:00",
		Status:          status,
		PaymentStatus:   string(domain.PaymentPaid),
		CustomerAddress: "12 Gasket Lane",
	}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func TestCancelBooking_StateGuard(t *testing.T) {
	cases := []struct {
		status  string
		wantErr bool
	}{
		{string(domain.StatusPending), false},
		{string(domain.StatusConfirmed), false},
		{string(domain.StatusInProgress), true},
		{string(domain.StatusCompleted), true},
		{string(domain.StatusCancelled), true},
	}

	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			db := newTestDB(t)
			provider, svc := seedProviderAndService(t, db, 50, true)
			customer := seedCustomer(t, db, "customer@example.com")
			b := seedBooking(t, db, customer.ID, provider.ID, svc.ID, tc.status)

			uc := NewCancelBooking(
				infraRepo.NewBookingGormRepository(db),
				audit.NewDispatcher(audit.New(db)),
			)

			_, err := uc.Execute(context.Background(), b.ID, customer.ID, models.RoleCustomer)

			var stored models.Booking
			if err := db.First(&stored, b.ID).Error; err != nil {
				t.Fatalf("reload booking: %v", err)
			}

			if tc.wantErr {
				if !httperr.IsBusiness(err, httperr.CodeInvalidState) {
					t.Fatalf("expected invalid_state, got %v", err)
				}
				if stored.Status != tc.status {
					t.Errorf("status changed to %s on rejected cancel", stored.Status)
				}
				return
			}

			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if stored.Status != string(domain.StatusCancelled) {
				t.Errorf("status = %s, want cancelled", stored.Status)
			}
			if stored.PaymentStatus != string(domain.PaymentPaid) {
				t.Errorf("paymentStatus = %s, want paid (untouched)", stored.PaymentStatus)
			}
		})
	}
}

func TestCancelBooking_OnlyOwnerOrAdmin(t *testing.T) {
	db := newTestDB(t)
	provider, svc := seedProviderAndService(t, db, 50, true)
	customer := seedCustomer(t, db, "customer@example.com")
	other := seedCustomer(t, db, "other@example.com")
	b := seedBooking(t, db, customer.ID, provider.ID, svc.ID, string(domain.StatusPending))

	uc := NewCancelBooking(
		infraRepo.NewBookingGormRepository(db),
		audit.NewDispatcher(audit.New(db)),
	)

	if _, err := uc.Execute(context.Background(), b.ID, other.ID, models.RoleCustomer); !httperr.IsBusiness(err, httperr.CodeForbidden) {
		t.Fatalf("expected forbidden for other customer, got %v", err)
	}

	if _, err := uc.Execute(context.Background(), b.ID, 9999, models.RoleAdmin); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
}

func TestCancelBooking_NotFound(t *testing.T) {
	db := newTestDB(t)

	uc := NewCancelBooking(
		infraRepo.NewBookingGormRepository(db),
		audit.NewDispatcher(audit.New(db)),
	)

	_, err := uc.Execute(context.Background(), 42, 1, models.RoleCustomer)
	if !httperr.IsBusiness(err, httperr.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestUpdateBookingStatus_ProviderOwnershipAndTransitions(t *testing.T) {
	db := newTestDB(t)
	provider, svc := seedProviderAndService(t, db, 50, true)
	customer := seedCustomer(t, db, "customer@example.com")
	b := seedBooking(t, db, customer.ID, provider.ID, svc.ID, string(domain.StatusConfirmed))

	uc := NewUpdateBookingStatus(
		infraRepo.NewBookingGormRepository(db),
		audit.NewDispatcher(audit.New(db)),
	)

	// Another provider cannot touch the booking.
	if _, err := uc.Execute(context.Background(), b.ID, provider.ID+100, models.RoleProvider, string(domain.StatusInProgress)); !httperr.IsBusiness(err, httperr.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	// Legal progression.
	updated, err := uc.Execute(context.Background(), b.ID, provider.ID, models.RoleProvider, string(domain.StatusInProgress))
	if err != nil {
		t.Fatalf("confirmed -> in-progress: %v", err)
	}
	if updated.Status != string(domain.StatusInProgress) {
		t.Errorf("status = %s, want in-progress", updated.Status)
	}

	// Backwards move is rejected and nothing is written.
	if _, err := uc.Execute(context.Background(), b.ID, provider.ID, models.RoleProvider, string(domain.StatusPending)); !httperr.IsBusiness(err, httperr.CodeInvalidState) {
		t.Fatalf("expected invalid_state, got %v", err)
	}

	// Garbage status strings are rejected outright.
	if _, err := uc.Execute(context.Background(), b.ID, provider.ID, models.RoleProvider, "torn-down"); !httperr.IsBusiness(err, httperr.CodeInvalidStatus) {
		t.Fatalf("expected invalid_status, got %v", err)
	}

	var stored models.Booking
	if err := db.First(&stored, b.ID).Error; err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	if stored.Status != string(domain.StatusInProgress) {
		t.Errorf("stored status = %s, want in-progress", stored.Status)
	}
}
