package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gearbook/car-service-api/internal/audit"
	"github.com/gearbook/car-service-api/internal/cache"
	dbpkg "github.com/gearbook/car-service-api/internal/db"
	"github.com/gearbook/car-service-api/internal/dto"
	"github.com/gearbook/car-service-api/internal/httperr"
	"github.com/gearbook/car-service-api/internal/httpresp"
	"github.com/gearbook/car-service-api/internal/images"
	"github.com/gearbook/car-service-api/internal/middleware"
	"github.com/gearbook/car-service-api/internal/models"
	"github.com/gearbook/car-service-api/internal/storage"
)

const (
	catalogGenKey   = "services:gen"
	catalogCacheTTL = 60 * time.Second
	maxImageUpload  = 5 << 20 // 5 MiB
)

type ServiceHandler struct {
	db       *gorm.DB
	cache    cache.Cache
	uploader storage.Uploader
	audit    *audit.Dispatcher
}

func NewServiceHandler(
	db *gorm.DB,
	c cache.Cache,
	uploader storage.Uploader,
	auditDispatcher *audit.Dispatcher,
) *ServiceHandler {
	return &ServiceHandler{
		db:       db,
		cache:    c,
		uploader: uploader,
		audit:    auditDispatcher,
	}
}

// --------- Requests ---------

type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0,lte=100000"`
	Duration    int     `json:"duration" binding:"required,min=1,max=1440"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl"`
}

type UpdateServiceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0,lte=100000"`
	Duration    int     `json:"duration" binding:"required,min=1,max=1440"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl"`
}

// --------- Handlers ---------

func (h *ServiceHandler) List(c *gin.Context) {
	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	minPriceStr := strings.TrimSpace(c.Query("minPrice"))
	maxPriceStr := strings.TrimSpace(c.Query("maxPrice"))

	cacheKey := h.listCacheKey(c, category, minPriceStr, maxPriceStr)
	if cached, ok, err := h.cache.Get(c.Request.Context(), cacheKey); err == nil && ok {
		c.Data(200, "application/json; charset=utf-8", cached)
		return
	}

	q := h.db.Model(&models.Service{}).Preload("Provider")

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	if minPriceStr != "" {
		if minPrice, err := strconv.ParseFloat(minPriceStr, 64); err == nil {
			q = q.Where("price >= ?", minPrice)
		}
	}

	if maxPriceStr != "" {
		if maxPrice, err := strconv.ParseFloat(maxPriceStr, 64); err == nil {
			q = q.Where("price <= ?", maxPrice)
		}
	}

	var services []models.Service
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "Failed to list services")
		return
	}

	views := make([]dto.ServiceView, 0, len(services))
	for _, s := range services {
		views = append(views, dto.NewServiceView(s))
	}

	if body, err := json.Marshal(views); err == nil {
		_ = h.cache.Set(c.Request.Context(), cacheKey, body, catalogCacheTTL)
	}

	httpresp.OK(c, views)
}

func (h *ServiceHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var svc models.Service
	if err := h.db.Preload("Provider").First(&svc, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "Service not found")
		return
	}

	httpresp.OK(c, dto.NewServiceView(svc))
}

func (h *ServiceHandler) Create(c *gin.Context) {
	callerID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	// An admin creating a service is attributed to themselves as
	// provider; there is no delegation field.
	svc := models.Service{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Duration:    req.Duration,
		Category:    req.Category,
		ProviderID:  callerID,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}

	if err := h.db.Create(&svc).Error; err != nil {
		httperr.Internal(c, "Failed to create service")
		return
	}

	h.invalidateCatalog(c)
	h.dispatch(callerID, "service_created", svc.ID, nil)

	c.Header("Location", fmt.Sprintf("/services/%d", svc.ID))
	httpresp.Created(c, svc)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	svc, ok := h.ownedService(c)
	if !ok {
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	// Active flag and ownership are not touched here.
	svc.Name = req.Name
	svc.Description = req.Description
	svc.Price = req.Price
	svc.Duration = req.Duration
	svc.Category = req.Category
	svc.ImageURL = req.ImageURL

	if err := h.db.Save(svc).Error; err != nil {
		httperr.Internal(c, "Failed to update service")
		return
	}

	callerID := c.MustGet(middleware.ContextUserID).(uint)
	h.invalidateCatalog(c)
	h.dispatch(callerID, "service_updated", svc.ID, nil)

	httpresp.OK(c, svc)
}

func (h *ServiceHandler) ToggleStatus(c *gin.Context) {
	svc, ok := h.ownedService(c)
	if !ok {
		return
	}

	svc.IsActive = !svc.IsActive

	if err := h.db.Save(svc).Error; err != nil {
		httperr.Internal(c, "Failed to update service")
		return
	}

	callerID := c.MustGet(middleware.ContextUserID).(uint)
	h.invalidateCatalog(c)
	h.dispatch(callerID, "service_toggled", svc.ID, map[string]any{"isActive": svc.IsActive})

	httpresp.OK(c, gin.H{
		"message":  "Service status updated",
		"isActive": svc.IsActive,
	})
}

func (h *ServiceHandler) Delete(c *gin.Context) {
	svc, ok := h.ownedService(c)
	if !ok {
		return
	}

	if err := h.db.Delete(svc).Error; err != nil {
		if dbpkg.IsForeignKeyViolation(err) {
			httperr.Conflict(c, "Service has bookings and cannot be deleted")
			return
		}
		httperr.Internal(c, "Failed to delete service")
		return
	}

	callerID := c.MustGet(middleware.ContextUserID).(uint)
	h.invalidateCatalog(c)
	h.dispatch(callerID, "service_deleted", svc.ID, nil)

	httpresp.OK(c, gin.H{"message": "Service deleted successfully"})
}

func (h *ServiceHandler) UploadImage(c *gin.Context) {
	if h.uploader == nil {
		httperr.Write(c, 503, "Image storage is not configured")
		return
	}

	svc, ok := h.ownedService(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		httperr.BadRequest(c, "Missing image file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageUpload+1))
	if err != nil {
		httperr.Internal(c, "Failed to read image")
		return
	}
	if len(data) > maxImageUpload {
		httperr.BadRequest(c, "Image exceeds the 5MB limit")
		return
	}

	converted, err := images.ToWebP(data)
	if err != nil {
		httperr.BadRequest(c, "Unsupported image format")
		return
	}

	key := fmt.Sprintf("services/%d/%s.webp", svc.ID, uuid.NewString())
	url, err := h.uploader.Upload(c.Request.Context(), key, converted, "image/webp")
	if err != nil {
		httperr.Internal(c, "Failed to store image")
		return
	}

	svc.ImageURL = url
	if err := h.db.Save(svc).Error; err != nil {
		httperr.Internal(c, "Failed to update service")
		return
	}

	callerID := c.MustGet(middleware.ContextUserID).(uint)
	h.invalidateCatalog(c)
	h.dispatch(callerID, "service_image_uploaded", svc.ID, nil)

	httpresp.OK(c, gin.H{"imageUrl": url})
}

// --------- Helpers ---------

// ownedService loads the target service and enforces the owner-or-admin
// rule shared by all catalog mutations. It writes the error response
// itself when the check fails.
func (h *ServiceHandler) ownedService(c *gin.Context) (*models.Service, bool) {
	callerID := c.MustGet(middleware.ContextUserID).(uint)
	callerRole := c.MustGet(middleware.ContextUserRole).(string)

	id := c.Param("id")

	var svc models.Service
	if err := h.db.First(&svc, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "Service not found")
		return nil, false
	}

	if callerRole != models.RoleAdmin && svc.ProviderID != callerID {
		httperr.Forbidden(c, "You do not own this service")
		return nil, false
	}

	return &svc, true
}

func (h *ServiceHandler) listCacheKey(c *gin.Context, category, minPrice, maxPrice string) string {
	gen := "0"
	if raw, ok, err := h.cache.Get(c.Request.Context(), catalogGenKey); err == nil && ok {
		gen = string(raw)
	}
	return fmt.Sprintf("services:list:%s:%s:%s:%s", gen, category, minPrice, maxPrice)
}

// invalidateCatalog bumps the catalog generation so every cached list
// key becomes unreachable.
func (h *ServiceHandler) invalidateCatalog(c *gin.Context) {
	_, _ = h.cache.Incr(c.Request.Context(), catalogGenKey)
}

func (h *ServiceHandler) dispatch(userID uint, action string, serviceID uint, metadata map[string]any) {
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   action,
		Entity:   "service",
		EntityID: &serviceID,
		Metadata: metadata,
	})
}
