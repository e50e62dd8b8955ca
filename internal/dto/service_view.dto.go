package dto

import (
	"time"

	"github.com/gearbook/car-service-api/internal/models"
)

type ServiceView struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	Duration     int       `json:"duration"`
	Category     string    `json:"category"`
	ProviderID   uint      `json:"providerId"`
	ProviderName string    `json:"providerName"`
	ImageURL     string    `json:"imageUrl"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewServiceView expects s.Provider to be preloaded.
func NewServiceView(s models.Service) ServiceView {
	return ServiceView{
		ID:           s.ID,
		Name:         s.Name,
		Description:  s.Description,
		Price:        s.Price,
		Duration:     s.Duration,
		Category:     s.Category,
		ProviderID:   s.ProviderID,
		ProviderName: s.Provider.Name,
		ImageURL:     s.ImageURL,
		IsActive:     s.IsActive,
		CreatedAt:    s.CreatedAt,
	}
}
