package handlers_test

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"

	domain "github.com/gearbook/car-service-api/internal/domain/booking"
	"github.com/gearbook/car-service-api/internal/models"
)

func TestBookings_EndToEnd(t *testing.T) {
	r, db := newTestServer(t)

	provider := registerUser(t, r, "provider@example.com", models.RoleProvider)
	customer := registerUser(t, r, "customer@example.com", models.RoleCustomer)
	stranger := registerUser(t, r, "stranger@example.com", models.RoleCustomer)
	admin := seedAdmin(t, r, db)

	serviceID := createService(t, r, provider, 49.99)

	w := doJSON(t, r, http.MethodPost, "/bookings", customer, gin.H{
		"serviceId":       serviceID,
		"bookingDate":     "2026-09-15",
		"bookingTime":     "10:00",
		"customerAddress": "12 Gasket Lane",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create booking: status %d, body %s", w.Code, w.Body.String())
	}

	created := decodeBody(t, w)
	if created["totalAmount"] != 49.99 {
		t.Errorf("totalAmount = %v, want 49.99", created["totalAmount"])
	}
	if created["status"] != string(domain.StatusConfirmed) {
		t.Errorf("status = %v, want confirmed", created["status"])
	}
	if created["paymentStatus"] != string(domain.PaymentPaid) {
		t.Errorf("paymentStatus = %v, want paid", created["paymentStatus"])
	}

	bookingID := uint(created["id"].(float64))

	// Visibility: owner and admin yes, unrelated customer no.
	if w := doJSON(t, r, http.MethodGet, bookingPath(bookingID), customer, nil); w.Code != http.StatusOK {
		t.Errorf("owner get status = %d, want 200", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, bookingPath(bookingID), stranger, nil); w.Code != http.StatusForbidden {
		t.Errorf("stranger get status = %d, want 403", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, bookingPath(bookingID), admin, nil); w.Code != http.StatusOK {
		t.Errorf("admin get status = %d, want 200", w.Code)
	}

	// The denormalized view joins the names in.
	view := decodeBody(t, doJSON(t, r, http.MethodGet, bookingPath(bookingID), customer, nil))
	if view["serviceName"] != "Full Detail" {
		t.Errorf("serviceName = %v", view["serviceName"])
	}
	if view["providerName"] != "Test provider" {
		t.Errorf("providerName = %v", view["providerName"])
	}
	if view["bookingDate"] != "2026-09-15" {
		t.Errorf("bookingDate = %v", view["bookingDate"])
	}
}

func TestBookings_InactiveServiceRejected(t *testing.T) {
	r, _ := newTestServer(t)

	provider := registerUser(t, r, "provider@example.com", models.RoleProvider)
	customer := registerUser(t, r, "customer@example.com", models.RoleCustomer)
	serviceID := createService(t, r, provider, 49.99)

	if w := doJSON(t, r, http.MethodPatch, servicePath(serviceID)+"/toggle-status", provider, nil); w.Code != http.StatusOK {
		t.Fatalf("toggle: status %d", w.Code)
	}

	w := doJSON(t, r, http.MethodPost, "/bookings", customer, gin.H{
		"serviceId":       serviceID,
		"bookingDate":     "2026-09-15",
		"bookingTime":     "10:00",
		"customerAddress": "12 Gasket Lane",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", w.Code, w.Body.String())
	}
}

func TestBookings_ProviderCannotCreate(t *testing.T) {
	r, _ := newTestServer(t)

	provider := registerUser(t, r, "provider@example.com", models.RoleProvider)
	serviceID := createService(t, r, provider, 49.99)

	w := doJSON(t, r, http.MethodPost, "/bookings", provider, gin.H{
		"serviceId":       serviceID,
		"bookingDate":     "2026-09-15",
		"bookingTime":     "10:00",
		"customerAddress": "12 Gasket Lane",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestBookings_RoleScopedList(t *testing.T) {
	r, db := newTestServer(t)

	providerA := registerUser(t, r, "a@example.com", models.RoleProvider)
	providerB := registerUser(t, r, "b@example.com", models.RoleProvider)
	customerX := registerUser(t, r, "x@example.com", models.RoleCustomer)
	customerY := registerUser(t, r, "y@example.com", models.RoleCustomer)
	admin := seedAdmin(t, r, db)

	svcA := createService(t, r, providerA, 40)
	svcB := createService(t, r, providerB, 60)

	// X books A twice and B once; Y books B once.
	createBooking(t, r, customerX, svcA)
	createBooking(t, r, customerX, svcA)
	createBooking(t, r, customerX, svcB)
	createBooking(t, r, customerY, svcB)

	counts := []struct {
		name  string
		token string
		want  int
	}{
		{"customer X", customerX, 3},
		{"customer Y", customerY, 1},
		{"provider A", providerA, 2},
		{"provider B", providerB, 2},
		{"admin", admin, 4},
	}

	for _, tc := range counts {
		w := doJSON(t, r, http.MethodGet, "/bookings", tc.token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s list: status %d", tc.name, w.Code)
		}

		var list []map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
			t.Fatalf("%s list: decode: %v", tc.name, err)
		}
		if len(list) != tc.want {
			t.Errorf("%s sees %d bookings, want %d", tc.name, len(list), tc.want)
		}
	}
}

func TestBookings_CancelStateGuardOverHTTP(t *testing.T) {
	r, db := newTestServer(t)

	provider := registerUser(t, r, "provider@example.com", models.RoleProvider)
	customer := registerUser(t, r, "customer@example.com", models.RoleCustomer)
	serviceID := createService(t, r, provider, 49.99)
	bookingID := createBooking(t, r, customer, serviceID)

	// Bookings confirm on creation, so cancellation is still allowed.
	if w := doJSON(t, r, http.MethodDelete, bookingPath(bookingID), customer, nil); w.Code != http.StatusOK {
		t.Fatalf("cancel confirmed booking: status %d, body %s", w.Code, w.Body.String())
	}

	// A second cancel hits the cancelled state and is rejected.
	if w := doJSON(t, r, http.MethodDelete, bookingPath(bookingID), customer, nil); w.Code != http.StatusBadRequest {
		t.Errorf("double cancel: status %d, want 400", w.Code)
	}

	// Completed bookings cannot be cancelled either.
	completedID := createBooking(t, r, customer, serviceID)
	if err := db.Model(&models.Booking{}).
		Where("id = ?", completedID).
		Update("status", string(domain.StatusCompleted)).Error; err != nil {
		t.Fatalf("force complete: %v", err)
	}
	if w := doJSON(t, r, http.MethodDelete, bookingPath(completedID), customer, nil); w.Code != http.StatusBadRequest {
		t.Errorf("cancel completed: status %d, want 400", w.Code)
	}
}

func TestBookings_StatusUpdateOverHTTP(t *testing.T) {
	r, _ := newTestServer(t)

	provider := registerUser(t, r, "provider@example.com", models.RoleProvider)
	customer := registerUser(t, r, "customer@example.com", models.RoleCustomer)
	serviceID := createService(t, r, provider, 49.99)
	bookingID := createBooking(t, r, customer, serviceID)

	// Customers cannot drive the status machine.
	if w := doJSON(t, r, http.MethodPut, bookingPath(bookingID)+"/status", customer, gin.H{"status": "in-progress"}); w.Code != http.StatusForbidden {
		t.Errorf("customer status update: %d, want 403", w.Code)
	}

	if w := doJSON(t, r, http.MethodPut, bookingPath(bookingID)+"/status", provider, gin.H{"status": "in-progress"}); w.Code != http.StatusOK {
		t.Errorf("confirmed -> in-progress: %d, body %s", w.Code, w.Body.String())
	}

	if w := doJSON(t, r, http.MethodPut, bookingPath(bookingID)+"/status", provider, gin.H{"status": "pending"}); w.Code != http.StatusBadRequest {
		t.Errorf("backwards transition: %d, want 400", w.Code)
	}

	if w := doJSON(t, r, http.MethodPut, bookingPath(bookingID)+"/status", provider, gin.H{"status": "exploded"}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown status: %d, want 400", w.Code)
	}
}

func TestBookings_ListByCustomer(t *testing.T) {
	r, db := newTestServer(t)

	provider := registerUser(t, r, "provider@example.com", models.RoleProvider)
	customer := registerUser(t, r, "customer@example.com", models.RoleCustomer)
	other := registerUser(t, r, "other@example.com", models.RoleCustomer)
	admin := seedAdmin(t, r, db)

	serviceID := createService(t, r, provider, 49.99)
	createBooking(t, r, customer, serviceID)

	var customerRow models.User
	if err := db.Where("email = ?", "customer@example.com").First(&customerRow).Error; err != nil {
		t.Fatalf("load customer: %v", err)
	}
	path := "/bookings/customer/" + itoa(customerRow.ID)

	if w := doJSON(t, r, http.MethodGet, path, customer, nil); w.Code != http.StatusOK {
		t.Errorf("self: status %d, want 200", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, path, other, nil); w.Code != http.StatusForbidden {
		t.Errorf("other customer: status %d, want 403", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, path, admin, nil); w.Code != http.StatusOK {
		t.Errorf("admin: status %d, want 200", w.Code)
	}
}

func TestDashboard_CustomerTotalSpentExcludesCancelled(t *testing.T) {
	r, _ := newTestServer(t)

	provider := registerUser(t, r, "provider@example.com", models.RoleProvider)
	customer := registerUser(t, r, "customer@example.com", models.RoleCustomer)

	svc50 := createService(t, r, provider, 50)
	svc30 := createService(t, r, provider, 30)

	createBooking(t, r, customer, svc50)
	cancelled := createBooking(t, r, customer, svc30)

	if w := doJSON(t, r, http.MethodDelete, bookingPath(cancelled), customer, nil); w.Code != http.StatusOK {
		t.Fatalf("cancel: status %d", w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/dashboard/stats", customer, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: status %d, body %s", w.Code, w.Body.String())
	}

	stats := decodeBody(t, w)
	if stats["totalSpent"] != 50.0 {
		t.Errorf("totalSpent = %v, want 50", stats["totalSpent"])
	}
	if stats["totalBookings"] != 2.0 {
		t.Errorf("totalBookings = %v, want 2", stats["totalBookings"])
	}
	if stats["upcomingBookings"] != 1.0 {
		t.Errorf("upcomingBookings = %v, want 1", stats["upcomingBookings"])
	}
}

func TestDashboard_RoleShapes(t *testing.T) {
	r, db := newTestServer(t)

	provider := registerUser(t, r, "provider@example.com", models.RoleProvider)
	customer := registerUser(t, r, "customer@example.com", models.RoleCustomer)
	admin := seedAdmin(t, r, db)

	serviceID := createService(t, r, provider, 49.99)
	createBooking(t, r, customer, serviceID)

	adminStats := decodeBody(t, doJSON(t, r, http.MethodGet, "/dashboard/stats", admin, nil))
	for _, key := range []string{"totalUsers", "totalServices", "totalBookings", "totalRevenue", "recentBookings"} {
		if _, ok := adminStats[key]; !ok {
			t.Errorf("admin stats missing %q", key)
		}
	}
	if adminStats["totalUsers"] != 3.0 {
		t.Errorf("totalUsers = %v, want 3", adminStats["totalUsers"])
	}

	providerStats := decodeBody(t, doJSON(t, r, http.MethodGet, "/dashboard/stats", provider, nil))
	for _, key := range []string{"totalServices", "activeServices", "totalBookings", "totalRevenue", "recentBookings"} {
		if _, ok := providerStats[key]; !ok {
			t.Errorf("provider stats missing %q", key)
		}
	}
	if providerStats["totalRevenue"] != 49.99 {
		t.Errorf("provider totalRevenue = %v, want 49.99", providerStats["totalRevenue"])
	}
}

func TestDashboard_StoreFailureSurfaces(t *testing.T) {
	r, db := newTestServer(t)

	customer := registerUser(t, r, "customer@example.com", models.RoleCustomer)

	if err := db.Migrator().DropTable(&models.Booking{}); err != nil {
		t.Fatalf("drop bookings table: %v", err)
	}

	w := doJSON(t, r, http.MethodGet, "/dashboard/stats", customer, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500; body %s", w.Code, w.Body.String())
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
