package repository

import (
	"context"
	"time"

	"github.com/edudash/edudash-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuotaRepository handles AI usage tier and counter data access.
type QuotaRepository struct {
	pool *pgxpool.Pool
}

// NewQuotaRepository creates a new QuotaRepository.
func NewQuotaRepository(pool *pgxpool.Pool) *QuotaRepository {
	return &QuotaRepository{pool: pool}
}

// GetTier retrieves a tier by its code.
func (r *QuotaRepository) GetTier(ctx context.Context, code string) (*model.AIUsageTier, error) {
	t := &model.AIUsageTier{}
	err := r.pool.QueryRow(ctx,
		`SELECT code, name, daily_limit, monthly_price_cents, blurb, created_at
		 FROM ai_usage_tiers WHERE code = $1`, code,
	).Scan(&t.Code, &t.Name, &t.DailyLimit, &t.MonthlyPriceCents, &t.Blurb, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTiers retrieves all tiers ordered by price (pricing page source).
func (r *QuotaRepository) ListTiers(ctx context.Context) ([]model.AIUsageTier, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT code, name, daily_limit, monthly_price_cents, blurb, created_at
		 FROM ai_usage_tiers ORDER BY monthly_price_cents`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []model.AIUsageTier
	for rows.Next() {
		var t model.AIUsageTier
		if err := rows.Scan(&t.Code, &t.Name, &t.DailyLimit, &t.MonthlyPriceCents, &t.Blurb, &t.CreatedAt); err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

// GetUsed returns the persisted usage for a user on a given day.
func (r *QuotaRepository) GetUsed(ctx context.Context, userID uuid.UUID, day time.Time) (int, error) {
	var used int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(used), 0) FROM user_ai_usage WHERE user_id = $1 AND usage_date = $2`,
		userID, day.UTC().Truncate(24*time.Hour),
	).Scan(&used)
	return used, err
}

// AddUsage upserts a batch of usage increments accumulated in Redis.
func (r *QuotaRepository) AddUsage(ctx context.Context, userID uuid.UUID, day time.Time, delta int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_ai_usage (user_id, usage_date, used)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, usage_date)
		 DO UPDATE SET used = user_ai_usage.used + EXCLUDED.used`,
		userID, day.UTC().Truncate(24*time.Hour), delta,
	)
	return err
}
