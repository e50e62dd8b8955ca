package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gearbook/car-service-api/internal/dto"
	"github.com/gearbook/car-service-api/internal/httperr"
	"github.com/gearbook/car-service-api/internal/httpresp"
	"github.com/gearbook/car-service-api/internal/middleware"
	"github.com/gearbook/car-service-api/internal/models"
	ucBooking "github.com/gearbook/car-service-api/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	db          *gorm.DB
	createUC    *ucBooking.CreateBooking
	cancelUC    *ucBooking.CancelBooking
	setStatusUC *ucBooking.UpdateBookingStatus
}

func NewBookingHandler(
	db *gorm.DB,
	createUC *ucBooking.CreateBooking,
	cancelUC *ucBooking.CancelBooking,
	setStatusUC *ucBooking.UpdateBookingStatus,
) *BookingHandler {
	return &BookingHandler{
		db:          db,
		createUC:    createUC,
		cancelUC:    cancelUC,
		setStatusUC: setStatusUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	ServiceID           uint   `json:"serviceId" binding:"required"`
	BookingDate         string `json:"bookingDate" binding:"required"`
	BookingTime         string `json:"bookingTime" binding:"required"`
	CustomerAddress     string `json:"customerAddress" binding:"required"`
	SpecialInstructions string `json:"specialInstructions"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ======================================================
// LIST / GET
// ======================================================

func (h *BookingHandler) List(c *gin.Context) {
	callerID := c.MustGet(middleware.ContextUserID).(uint)
	callerRole := c.MustGet(middleware.ContextUserRole).(string)

	q := h.db.Model(&models.Booking{}).
		Preload("Service").
		Preload("Customer").
		Preload("Provider")

	switch callerRole {
	case models.RoleCustomer:
		q = q.Where("customer_id = ?", callerID)
	case models.RoleProvider:
		q = q.Where("provider_id = ?", callerID)
	case models.RoleAdmin:
		// sees everything
	default:
		httperr.Forbidden(c, "Unknown role")
		return
	}

	var bookings []models.Booking
	if err := q.Order("created_at DESC").Find(&bookings).Error; err != nil {
		httperr.Internal(c, "Failed to list bookings")
		return
	}

	httpresp.OK(c, bookingViews(bookings))
}

func (h *BookingHandler) Get(c *gin.Context) {
	callerID := c.MustGet(middleware.ContextUserID).(uint)
	callerRole := c.MustGet(middleware.ContextUserRole).(string)

	id := c.Param("id")

	var b models.Booking
	if err := h.db.
		Preload("Service").
		Preload("Customer").
		Preload("Provider").
		First(&b, "id = ?", id).Error; err != nil {

		httperr.NotFound(c, "Booking not found")
		return
	}

	if callerRole != models.RoleAdmin && b.CustomerID != callerID && b.ProviderID != callerID {
		httperr.Forbidden(c, "You do not have access to this booking")
		return
	}

	httpresp.OK(c, dto.NewBookingView(b))
}

// ListByCustomer serves the customer booking history, newest booking
// date first (not creation order).
func (h *BookingHandler) ListByCustomer(c *gin.Context) {
	callerID := c.MustGet(middleware.ContextUserID).(uint)
	callerRole := c.MustGet(middleware.ContextUserRole).(string)

	customerID, err := strconv.ParseUint(c.Param("customerId"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "Invalid customer id")
		return
	}

	if callerRole != models.RoleAdmin && uint(customerID) != callerID {
		httperr.Forbidden(c, "You do not have access to these bookings")
		return
	}

	var bookings []models.Booking
	if err := h.db.
		Preload("Service").
		Preload("Customer").
		Preload("Provider").
		Where("customer_id = ?", uint(customerID)).
		Order("booking_date DESC").
		Find(&bookings).Error; err != nil {

		httperr.Internal(c, "Failed to list bookings")
		return
	}

	httpresp.OK(c, bookingViews(bookings))
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	callerID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	bookingDate, err := time.Parse("2006-01-02", req.BookingDate)
	if err != nil {
		httperr.Validation(c, "Invalid request", map[string]string{
			"bookingDate": "must be formatted YYYY-MM-DD",
		})
		return
	}

	var customer models.User
	if err := h.db.First(&customer, callerID).Error; err != nil {
		httperr.Internal(c, "Failed to load customer profile")
		return
	}

	b, err := h.createUC.Execute(c.Request.Context(), ucBooking.CreateBookingInput{
		CustomerID:          callerID,
		CustomerEmail:       customer.Email,
		ServiceID:           req.ServiceID,
		BookingDate:         bookingDate,
		BookingTime:         req.BookingTime,
		CustomerAddress:     req.CustomerAddress,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		h.writeBookingError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/bookings/%d", b.ID))
	httpresp.Created(c, gin.H{
		"id":                  b.ID,
		"serviceId":           b.ServiceID,
		"customerId":          b.CustomerID,
		"providerId":          b.ProviderID,
		"bookingDate":         b.BookingDate.Format("2006-01-02"),
		"bookingTime":         b.BookingTime,
		"status":              b.Status,
		"totalAmount":         b.TotalAmount,
		"paymentStatus":       b.PaymentStatus,
		"customerAddress":     b.CustomerAddress,
		"specialInstructions": b.SpecialInstructions,
		"createdAt":           b.CreatedAt,
	})
}

// ======================================================
// STATUS / CANCEL
// ======================================================

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	callerID := c.MustGet(middleware.ContextUserID).(uint)
	callerRole := c.MustGet(middleware.ContextUserRole).(string)

	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "Invalid booking id")
		return
	}

	var req UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	b, err := h.setStatusUC.Execute(
		c.Request.Context(),
		uint(bookingID),
		callerID,
		callerRole,
		req.Status,
	)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"message": "Booking status updated",
		"status":  b.Status,
	})
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	callerID := c.MustGet(middleware.ContextUserID).(uint)
	callerRole := c.MustGet(middleware.ContextUserRole).(string)

	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "Invalid booking id")
		return
	}

	if _, err := h.cancelUC.Execute(
		c.Request.Context(),
		uint(bookingID),
		callerID,
		callerRole,
	); err != nil {
		h.writeBookingError(c, err)
		return
	}

	httpresp.OK(c, gin.H{"message": "Booking cancelled successfully"})
}

// ======================================================
// HELPERS
// ======================================================

func bookingViews(bookings []models.Booking) []dto.BookingView {
	views := make([]dto.BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, dto.NewBookingView(b))
	}
	return views
}

func (h *BookingHandler) writeBookingError(c *gin.Context, err error) {
	switch {
	case httperr.IsBusiness(err, httperr.CodeNotFound):
		httperr.NotFound(c, "Booking or service not found")
	case httperr.IsBusiness(err, httperr.CodeForbidden):
		httperr.Forbidden(c, "You do not have access to this booking")
	case httperr.IsBusiness(err, httperr.CodeServiceInactive):
		httperr.BadRequest(c, "Service is not available")
	case httperr.IsBusiness(err, httperr.CodeInvalidStatus):
		httperr.BadRequest(c, "Unknown booking status")
	case httperr.IsBusiness(err, httperr.CodeInvalidState):
		httperr.BadRequest(c, "Operation not allowed in the booking's current status")
	case httperr.IsBusiness(err, httperr.CodePaymentFailed):
		httperr.Write(c, 402, "Payment could not be captured")
	default:
		httperr.Internal(c, "Unexpected error")
	}
}
