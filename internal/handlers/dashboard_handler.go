package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/gearbook/car-service-api/internal/domain/booking"
	"github.com/gearbook/car-service-api/internal/dto"
	"github.com/gearbook/car-service-api/internal/httperr"
	"github.com/gearbook/car-service-api/internal/httpresp"
	"github.com/gearbook/car-service-api/internal/middleware"
	"github.com/gearbook/car-service-api/internal/models"
)

const recentBookingsLimit = 10

type DashboardHandler struct {
	db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// Stats dispatches on the caller's role. Every number is computed on
// demand; there is no materialized rollup to drift out of date.
func (h *DashboardHandler) Stats(c *gin.Context) {
	callerID := c.MustGet(middleware.ContextUserID).(uint)
	callerRole := c.MustGet(middleware.ContextUserRole).(string)

	switch callerRole {
	case models.RoleAdmin:
		h.adminStats(c)
	case models.RoleProvider:
		h.providerStats(c, callerID)
	case models.RoleCustomer:
		h.customerStats(c, callerID)
	default:
		httperr.Forbidden(c, "Unknown role")
	}
}

func (h *DashboardHandler) adminStats(c *gin.Context) {
	totalUsers, err := h.count(h.db.Model(&models.User{}))
	if err != nil {
		httperr.Internal(c, "Failed to compute stats")
		return
	}
	totalServices, err := h.count(h.db.Model(&models.Service{}))
	if err != nil {
		httperr.Internal(c, "Failed to compute stats")
		return
	}
	totalBookings, err := h.count(h.db.Model(&models.Booking{}))
	if err != nil {
		httperr.Internal(c, "Failed to compute stats")
		return
	}

	totalRevenue, err := h.revenue(nil)
	if err != nil {
		httperr.Internal(c, "Failed to compute stats")
		return
	}

	recent, err := h.recentBookings(nil)
	if err != nil {
		httperr.Internal(c, "Failed to compute stats")
		return
	}

	httpresp.OK(c, gin.H{
		"totalUsers":     totalUsers,
		"totalServices":  totalServices,
		"totalBookings":  totalBookings,
		"totalRevenue":   totalRevenue,
		"recentBookings": recent,
	})
}

func (h *DashboardHandler) providerStats(c *gin.Context, providerID uint) {
	totalServices, err := h.count(h.db.Model(&models.Service{}).
		Where("provider_id = ?", providerID))
	if err != nil {
		httperr.Internal(c, "Failed to compute stats")
		return
	}
	activeServices, err := h.count(h.db.Model(&models.Service{}).
		Where("provider_id = ? AND is_active = ?", providerID, true))
	if err != nil {
		httperr.Internal(c, "Failed to compute stats")
		return
	}
	totalBookings, err := h.count(h.db.Model(&models.Booking{}).
		Where("provider_id = ?", providerID))
	if err != nil {
		httperr.Internal(c, "Failed to compute stats")
		return
	}

	totalRevenue, err := h.revenue(func(q *gorm.DB) *gorm.DB {
		return q.Where("provider_id = ?", providerID)
	})
	if err != nil {
		httperr.Internal(c, "Failed to compute stats")
		return
	}

	recent, err := h.recentBookings(func(q *gorm.DB) *gorm.DB {
		return q.Where("provider_id = ?", providerID)
	})
	if err != nil {
		httperr.Internal(c, "Failed to compute stats")
		return
	}

	httpresp.OK(c, gin.H{
		"totalServices":  totalServices,
		"activeServices": activeServices,
		"totalBookings":  totalBookings,
		"totalRevenue":   totalRevenue,
		"recentBookings": recent,
	})
}

func (h *DashboardHandler) customerStats(c *gin.Context, customerID uint) {
	totalBookings, err := h.count(h.db.Model(&models.Booking{}).
		Where("customer_id = ?", customerID))
	if err != nil {
		httperr.Internal(c, "Failed to compute stats")
		return
	}
	upcomingBookings, err := h.count(h.db.Model(&models.Booking{}).
		Where("customer_id = ? AND status IN ?", customerID,
			[]string{string(domain.StatusPending), string(domain.StatusConfirmed)}))
	if err != nil {
		httperr.Internal(c, "Failed to compute stats")
		return
	}
	completedBookings, err := h.count(h.db.Model(&models.Booking{}).
		Where("customer_id = ? AND status = ?", customerID, string(domain.StatusCompleted)))
	if err != nil {
		httperr.Internal(c, "Failed to compute stats")
		return
	}

	totalSpent, err := h.revenue(func(q *gorm.DB) *gorm.DB {
		return q.Where("customer_id = ?", customerID)
	})
	if err != nil {
		httperr.Internal(c, "Failed to compute stats")
		return
	}

	recent, err := h.recentBookings(func(q *gorm.DB) *gorm.DB {
		return q.Where("customer_id = ?", customerID)
	})
	if err != nil {
		httperr.Internal(c, "Failed to compute stats")
		return
	}

	httpresp.OK(c, gin.H{
		"totalBookings":     totalBookings,
		"upcomingBookings":  upcomingBookings,
		"completedBookings": completedBookings,
		"totalSpent":        totalSpent,
		"recentBookings":    recent,
	})
}

// --------- Helpers ---------

func (h *DashboardHandler) count(q *gorm.DB) (int64, error) {
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// revenue sums totalAmount over non-cancelled bookings, optionally
// scoped by the caller.
func (h *DashboardHandler) revenue(scope func(*gorm.DB) *gorm.DB) (float64, error) {
	q := h.db.Model(&models.Booking{}).
		Where("status <> ?", string(domain.StatusCancelled))
	if scope != nil {
		q = scope(q)
	}

	var total float64
	err := q.Select("COALESCE(SUM(total_amount), 0)").Scan(&total).Error
	return total, err
}

func (h *DashboardHandler) recentBookings(scope func(*gorm.DB) *gorm.DB) ([]dto.RecentBookingView, error) {
	q := h.db.Model(&models.Booking{}).
		Preload("Service").
		Preload("Customer").
		Preload("Provider")
	if scope != nil {
		q = scope(q)
	}

	var bookings []models.Booking
	if err := q.
		Order("created_at DESC").
		Limit(recentBookingsLimit).
		Find(&bookings).Error; err != nil {
		return nil, err
	}

	views := make([]dto.RecentBookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, dto.NewRecentBookingView(b))
	}
	return views, nil
}
