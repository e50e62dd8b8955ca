package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gearbook/car-service-api/internal/audit"
	"github.com/gearbook/car-service-api/internal/config"
	dbpkg "github.com/gearbook/car-service-api/internal/db"
	"github.com/gearbook/car-service-api/internal/httperr"
	"github.com/gearbook/car-service-api/internal/httpresp"
	"github.com/gearbook/car-service-api/internal/middleware"
	"github.com/gearbook/car-service-api/internal/models"
	"github.com/gearbook/car-service-api/internal/validators"
)

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config
	audit  *audit.Dispatcher
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, auditDispatcher *audit.Dispatcher) *AuthHandler {
	return &AuthHandler{db: db, config: cfg, audit: auditDispatcher}
}

// --------- Requests ---------

// dummyPasswordHash is compared against on the unknown-email login
// path. It never matches a submitted password.
var dummyPasswordHash, _ = bcrypt.GenerateFromPassword([]byte("login-timing-pad"), bcrypt.DefaultCost)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	// Admins are provisioned via cmd/seed, never through self-service
	// registration.
	if req.Role != models.RoleProvider && req.Role != models.RoleCustomer {
		httperr.Validation(c, "Invalid request", map[string]string{
			"role": "must be provider or customer",
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if h.config.EmailDomainCheck && !validators.IsEmailDomainValid(email) {
		httperr.Validation(c, "Invalid request", map[string]string{
			"email": "domain does not accept mail",
		})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "Failed to process registration")
		return
	}

	user := models.User{
		Email:        email,
		Name:         req.Name,
		Role:         req.Role,
		Phone:        req.Phone,
		Address:      req.Address,
		PasswordHash: string(hashed),
	}

	// Uniqueness is enforced by the database; concurrent registrations
	// with the same email lose here, not in a pre-check.
	if err := h.db.Create(&user).Error; err != nil {
		if dbpkg.IsUniqueViolation(err) {
			httperr.Conflict(c, "User with this email already exists")
			return
		}
		httperr.Internal(c, "Failed to create user")
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		httperr.Internal(c, "Failed to generate token")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &user.ID,
		Action:   "user_registered",
		Entity:   "user",
		EntityID: &user.ID,
		Metadata: map[string]any{"role": user.Role},
	})

	httpresp.Created(c, gin.H{
		"message": "Registration successful",
		"token":   token,
		"user":    userProfile(&user),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Missing user and wrong password take the same path so the
	// response never reveals which one happened.
	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// Burn a hash comparison so this branch costs the same as
			// a wrong password and timing stays uninformative.
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(req.Password))
			httperr.Unauthorized(c, "Invalid email or password")
			return
		}
		httperr.Internal(c, "Failed to sign in")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "Invalid email or password")
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		httperr.Internal(c, "Failed to generate token")
		return
	}

	httpresp.OK(c, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    userProfile(&user),
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		httperr.NotFound(c, "User not found")
		return
	}

	httpresp.OK(c, gin.H{"user": userProfile(&user)})
}

func userProfile(user *models.User) gin.H {
	return gin.H{
		"id":      user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"role":    user.Role,
		"phone":   user.Phone,
		"address": user.Address,
	}
}

// --------- JWT ---------

func (h *AuthHandler) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   float64(user.ID),
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
		"iss":   h.config.JWTIssuer,
		"aud":   h.config.JWTAudience,
		"exp":   now.Add(h.config.JWTTTL).Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}
