package repository

import (
	"context"

	"github.com/edudash/edudash-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CampaignRepository handles marketing campaign data access.
type CampaignRepository struct {
	pool *pgxpool.Pool
}

// NewCampaignRepository creates a new CampaignRepository.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

const campaignColumns = `id, preschool_id, name, description, discount_type, discount_value,
	starts_at, ends_at, max_redemptions, redemption_count, is_active, is_featured, created_at, updated_at`

func scanCampaign(row interface{ Scan(...interface{}) error }) (*model.Campaign, error) {
	c := &model.Campaign{}
	err := row.Scan(&c.ID, &c.PreschoolID, &c.Name, &c.Description, &c.DiscountType, &c.DiscountValue,
		&c.StartsAt, &c.EndsAt, &c.MaxRedemptions, &c.RedemptionCount, &c.IsActive, &c.IsFeatured,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID retrieves a campaign by its ID.
func (r *CampaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	return scanCampaign(r.pool.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM marketing_campaigns WHERE id = $1`, id))
}

// List retrieves all campaigns of a preschool, newest first.
func (r *CampaignRepository) List(ctx context.Context, preschoolID uuid.UUID) ([]model.Campaign, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+campaignColumns+` FROM marketing_campaigns WHERE preschool_id = $1 ORDER BY created_at DESC`,
		preschoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []model.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// ListPublic retrieves active campaigns visible on public surfaces. Featured
// campaigns sort first.
func (r *CampaignRepository) ListPublic(ctx context.Context, preschoolID uuid.UUID) ([]model.Campaign, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+campaignColumns+` FROM marketing_campaigns
		 WHERE preschool_id = $1 AND is_active = TRUE
		   AND (starts_at IS NULL OR starts_at <= NOW())
		   AND (ends_at IS NULL OR ends_at >= NOW())
		 ORDER BY is_featured DESC, created_at DESC`, preschoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []model.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// Create inserts a new campaign.
func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO marketing_campaigns
		   (preschool_id, name, description, discount_type, discount_value, starts_at, ends_at, max_redemptions, is_active, is_featured)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, redemption_count, created_at, updated_at`,
		c.PreschoolID, c.Name, c.Description, c.DiscountType, c.DiscountValue,
		c.StartsAt, c.EndsAt, c.MaxRedemptions, c.IsActive, c.IsFeatured,
	).Scan(&c.ID, &c.RedemptionCount, &c.CreatedAt, &c.UpdatedAt)
}

// Update modifies an existing campaign.
func (r *CampaignRepository) Update(ctx context.Context, c *model.Campaign) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE marketing_campaigns
		 SET name = $1, description = $2, discount_type = $3, discount_value = $4,
		     starts_at = $5, ends_at = $6, max_redemptions = $7, is_active = $8, is_featured = $9,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $10`,
		c.Name, c.Description, c.DiscountType, c.DiscountValue,
		c.StartsAt, c.EndsAt, c.MaxRedemptions, c.IsActive, c.IsFeatured, c.ID,
	)
	return err
}

// Delete removes a campaign by its ID.
func (r *CampaignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM marketing_campaigns WHERE id = $1`, id)
	return err
}

// AddRedemptions applies a batch of redemption counts accumulated in Redis.
func (r *CampaignRepository) AddRedemptions(ctx context.Context, id uuid.UUID, delta int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE marketing_campaigns
		 SET redemption_count = redemption_count + $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2`,
		delta, id,
	)
	return err
}

// CountActive returns the live campaign count for dashboards.
func (r *CampaignRepository) CountActive(ctx context.Context, preschoolID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM marketing_campaigns WHERE preschool_id = $1 AND is_active = TRUE`,
		preschoolID,
	).Scan(&n)
	return n, err
}
