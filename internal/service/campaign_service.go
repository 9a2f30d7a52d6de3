package service

import (
	"context"
	"errors"
	"time"

	"github.com/edudash/edudash-backend/internal/config"
	"github.com/edudash/edudash-backend/internal/model"
	"github.com/edudash/edudash-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain Errors
var (
	ErrCampaignInactive  = errors.New("campaign is not active")
	ErrCampaignExhausted = errors.New("campaign has no redemptions left")
)

// CampaignService handles marketing campaign CRUD and redemption counting.
// Redemptions are counted in Redis for contention-free increments and
// persisted to Postgres in batches by the redemption worker.
type CampaignService struct {
	campaignRepo *repository.CampaignRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewCampaignService creates a new CampaignService.
func NewCampaignService(campaignRepo *repository.CampaignRepository, rdb *redis.Client, log zerolog.Logger) *CampaignService {
	return &CampaignService{
		campaignRepo: campaignRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "campaign_service").Logger(),
	}
}

// GetByID retrieves a campaign.
func (s *CampaignService) GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	return s.campaignRepo.GetByID(ctx, id)
}

// List returns all of a preschool's campaigns for the management screen.
func (s *CampaignService) List(ctx context.Context, preschoolID uuid.UUID) ([]model.Campaign, error) {
	campaigns, err := s.campaignRepo.List(ctx, preschoolID)
	if err != nil {
		return nil, err
	}
	if campaigns == nil {
		campaigns = []model.Campaign{}
	}
	return campaigns, nil
}

// ListPublic returns the campaigns currently visible to guardians: active,
// inside their date window, featured first.
func (s *CampaignService) ListPublic(ctx context.Context, preschoolID uuid.UUID) ([]model.Campaign, error) {
	campaigns, err := s.campaignRepo.ListPublic(ctx, preschoolID)
	if err != nil {
		return nil, err
	}
	if campaigns == nil {
		campaigns = []model.Campaign{}
	}
	return campaigns, nil
}

// Create adds a new campaign.
func (s *CampaignService) Create(ctx context.Context, preschoolID uuid.UUID, req *model.CreateCampaignRequest) (*model.Campaign, error) {
	c := &model.Campaign{
		ID:             uuid.New(),
		PreschoolID:    preschoolID,
		Name:           req.Name,
		Description:    req.Description,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		MaxRedemptions: req.MaxRedemptions,
		IsActive:       req.IsActive,
		IsFeatured:     req.IsFeatured,
	}
	if err := s.campaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies a partial update to a campaign.
func (s *CampaignService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateCampaignRequest) (*model.Campaign, error) {
	c, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		c.Name = req.Name
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.DiscountType != nil {
		c.DiscountType = *req.DiscountType
	}
	if req.DiscountValue != nil {
		c.DiscountValue = *req.DiscountValue
	}
	if req.StartsAt != nil {
		c.StartsAt = req.StartsAt
	}
	if req.EndsAt != nil {
		c.EndsAt = req.EndsAt
	}
	if req.MaxRedemptions != nil {
		c.MaxRedemptions = req.MaxRedemptions
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		c.IsFeatured = *req.IsFeatured
	}

	if err := s.campaignRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a campaign and its live Redis counter.
func (s *CampaignService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.campaignRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, config.CacheKey.CampaignRedemptionsKey(id.String())).Err(); err != nil {
		s.log.Warn().Err(err).Str("campaign_id", id.String()).Msg("Failed to clear redemption counter")
	}
	return nil
}

// Redeem records one redemption. The live count lives in Redis: INCR first,
// then check the cap, DECR back on overflow. The increment is queued for the
// redemption worker to fold into Postgres.
func (s *CampaignService) Redeem(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	c, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.isRedeemable(c) {
		return nil, ErrCampaignInactive
	}

	key := config.CacheKey.CampaignRedemptionsKey(id.String())
	count, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	if c.MaxRedemptions != nil && c.RedemptionCount+int(count) > *c.MaxRedemptions {
		if err := s.rdb.Decr(ctx, key).Err(); err != nil {
			s.log.Error().Err(err).Str("campaign_id", id.String()).Msg("Failed to roll back redemption counter")
		}
		return nil, ErrCampaignExhausted
	}

	// Queue the increment for batch persistence.
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistRedemptionQueue, id.String()).Err(); err != nil {
		s.log.Error().Err(err).Str("campaign_id", id.String()).Msg("Failed to enqueue redemption persist")
	}

	c.RedemptionCount += int(count)
	return c, nil
}

// CountActive returns the active campaign count for dashboards.
func (s *CampaignService) CountActive(ctx context.Context, preschoolID uuid.UUID) (int, error) {
	return s.campaignRepo.CountActive(ctx, preschoolID)
}

func (s *CampaignService) isRedeemable(c *model.Campaign) bool {
	if !c.IsActive {
		return false
	}
	now := time.Now()
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return false
	}
	if c.EndsAt != nil && now.After(*c.EndsAt) {
		return false
	}
	return true
}
