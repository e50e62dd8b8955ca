package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gearbook/car-service-api/internal/config"
	dbpkg "github.com/gearbook/car-service-api/internal/db"
	"github.com/gearbook/car-service-api/internal/models"
	"github.com/gearbook/car-service-api/internal/routes"
)

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// One connection only: every pooled connection to ":memory:" would
	// otherwise get its own empty database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := dbpkg.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:   "test-secret",
		JWTIssuer:   "car-service-api",
		JWTAudience: "car-service-clients",
		JWTTTL:      time.Hour,
	}

	r := gin.New()
	routes.RegisterRoutes(r, db, cfg)

	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

// registerUser goes through the real endpoint and returns the issued
// token.
func registerUser(t *testing.T, r *gin.Engine, email, role string) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"email":    email,
		"name":     "Test " + role,
		"role":     role,
		"phone":    "555-0100",
		"address":  "1 Main St",
		"password": "hunter22",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", email, w.Code, w.Body.String())
	}

	token, _ := decodeBody(t, w)["token"].(string)
	if token == "" {
		t.Fatalf("register %s: no token in response", email)
	}
	return token
}

// seedAdmin inserts an admin directly (admins cannot self-register) and
// logs in through the API.
func seedAdmin(t *testing.T, r *gin.Engine, db *gorm.DB) string {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	admin := models.User{
		Email:        "admin@example.com",
		Name:         "Root Admin",
		Role:         models.RoleAdmin,
		PasswordHash: string(hashed),
	}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "admin@example.com",
		"password": "admin-pass",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("admin login: status %d, body %s", w.Code, w.Body.String())
	}

	token, _ := decodeBody(t, w)["token"].(string)
	return token
}

func createService(t *testing.T, r *gin.Engine, token string, price float64) uint {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/services", token, gin.H{
		"name":        "Full Detail",
		"description": "Interior and exterior detail",
		"price":       price,
		"duration":    90,
		"category":    "detailing",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create service: status %d, body %s", w.Code, w.Body.String())
	}

	id, _ := decodeBody(t, w)["id"].(float64)
	return uint(id)
}

func createBooking(t *testing.T, r *gin.Engine, token string, serviceID uint) uint {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/bookings", token, gin.H{
		"serviceId":       serviceID,
		"bookingDate":     "2026-09-15",
		"bookingTime":     "10:00",
		"customerAddress": "12 Gasket Lane",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create booking: status %d, body %s", w.Code, w.Body.String())
	}

	id, _ := decodeBody(t, w)["id"].(float64)
	return uint(id)
}

func servicePath(id uint) string {
	return fmt.Sprintf("/services/%d", id)
}

func bookingPath(id uint) string {
	return fmt.Sprintf("/bookings/%d", id)
}
