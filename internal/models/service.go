package models

import "time"

type Service struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string  `gorm:"size:200;not null" json:"name"`
	Description string  `gorm:"size:1000" json:"description"`
	Price       float64 `gorm:"not null" json:"price"`
	Duration    int     `gorm:"not null" json:"duration"`
	Category    string  `gorm:"size:100" json:"category"`

	ProviderID uint `gorm:"not null" json:"providerId"`
	Provider   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	ImageURL string `gorm:"size:500" json:"imageUrl"`

	// No column default on purpose: a default:true tag would make gorm
	// omit an explicit false on Create and the database would flip it.
	// Callers set the flag; the create handler starts services active.
	IsActive bool `json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
