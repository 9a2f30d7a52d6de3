package model

import (
	"time"

	"github.com/google/uuid"
)

// DiscountType enumerates how a campaign discount is applied.
type DiscountType string

const (
	DiscountPercentage  DiscountType = "percentage"
	DiscountFixedAmount DiscountType = "fixed_amount"
)

// Campaign is a marketing promotion managed by principals.
type Campaign struct {
	ID              uuid.UUID    `json:"id"`
	PreschoolID     uuid.UUID    `json:"preschool_id"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	DiscountType    DiscountType `json:"discount_type"`
	DiscountValue   float64      `json:"discount_value"`
	StartsAt        *time.Time   `json:"starts_at,omitempty"`
	EndsAt          *time.Time   `json:"ends_at,omitempty"`
	MaxRedemptions  *int         `json:"max_redemptions,omitempty"`
	RedemptionCount int          `json:"redemption_count"`
	IsActive        bool         `json:"is_active"`
	IsFeatured      bool         `json:"is_featured"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// CreateCampaignRequest is the payload for creating a campaign.
type CreateCampaignRequest struct {
	Name           string       `json:"name" binding:"required,min=3,max=255"`
	Description    string       `json:"description" binding:"omitempty,max=2000"`
	DiscountType   DiscountType `json:"discount_type" binding:"required,oneof=percentage fixed_amount"`
	DiscountValue  float64      `json:"discount_value" binding:"required,gt=0"`
	StartsAt       *time.Time   `json:"starts_at" binding:"omitempty"`
	EndsAt         *time.Time   `json:"ends_at" binding:"omitempty,gtfield=StartsAt"`
	MaxRedemptions *int         `json:"max_redemptions" binding:"omitempty,min=1"`
	IsActive       bool         `json:"is_active"`
	IsFeatured     bool         `json:"is_featured"`
}

// UpdateCampaignRequest is the payload for partial campaign updates.
type UpdateCampaignRequest struct {
	Name           string        `json:"name" binding:"omitempty,min=3,max=255"`
	Description    *string       `json:"description" binding:"omitempty,max=2000"`
	DiscountType   *DiscountType `json:"discount_type" binding:"omitempty,oneof=percentage fixed_amount"`
	DiscountValue  *float64      `json:"discount_value" binding:"omitempty,gt=0"`
	StartsAt       *time.Time    `json:"starts_at" binding:"omitempty"`
	EndsAt         *time.Time    `json:"ends_at" binding:"omitempty"`
	MaxRedemptions *int          `json:"max_redemptions" binding:"omitempty,min=1"`
	IsActive       *bool         `json:"is_active" binding:"omitempty"`
	IsFeatured     *bool         `json:"is_featured" binding:"omitempty"`
}
