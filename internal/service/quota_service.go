package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/edudash/edudash-backend/internal/config"
	"github.com/edudash/edudash-backend/internal/model"
	"github.com/edudash/edudash-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrQuotaExceeded is returned when a consume request would push usage past
// the tier's daily limit.
var ErrQuotaExceeded = errors.New("daily AI usage limit reached")

// QuotaService enforces per-tier daily AI usage limits. The live counter is
// a Redis key expiring at the next UTC midnight; increments are queued for
// the usage worker to fold into Postgres for reporting.
type QuotaService struct {
	quotaRepo   *repository.QuotaRepository
	profileRepo *repository.ProfileRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewQuotaService creates a new QuotaService.
func NewQuotaService(
	quotaRepo *repository.QuotaRepository,
	profileRepo *repository.ProfileRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *QuotaService {
	return &QuotaService{
		quotaRepo:   quotaRepo,
		profileRepo: profileRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "quota_service").Logger(),
	}
}

// ListTiers returns all tiers ordered by price, for the pricing page.
func (s *QuotaService) ListTiers(ctx context.Context) ([]model.AIUsageTier, error) {
	tiers, err := s.quotaRepo.ListTiers(ctx)
	if err != nil {
		return nil, err
	}
	if tiers == nil {
		tiers = []model.AIUsageTier{}
	}
	return tiers, nil
}

// Status returns the caller's quota view: tier limit, usage so far today and
// the UTC midnight reset time.
func (s *QuotaService) Status(ctx context.Context, userID uuid.UUID, tierCode string) (*model.QuotaStatus, error) {
	tier, err := s.quotaRepo.GetTier(ctx, tierCode)
	if err != nil {
		return nil, err
	}

	used, err := s.usedToday(ctx, userID)
	if err != nil {
		return nil, err
	}

	remaining := tier.DailyLimit - used
	if remaining < 0 {
		remaining = 0
	}

	return &model.QuotaStatus{
		TierCode:  tier.Code,
		TierName:  tier.Name,
		Limit:     tier.DailyLimit,
		Used:      used,
		Remaining: remaining,
		ResetsAt:  nextUTCMidnight(time.Now()),
	}, nil
}

// Consume spends one unit of the caller's daily quota. The check and the
// increment both run against the Redis counter: INCR first, then roll back
// when the new value overshoots the limit so concurrent consumers cannot
// slip past the cap.
func (s *QuotaService) Consume(ctx context.Context, userID uuid.UUID, tierCode string) (*model.QuotaStatus, error) {
	tier, err := s.quotaRepo.GetTier(ctx, tierCode)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	key := config.CacheKey.AIUsageKey(userID.String(), now.Format("2006-01-02"))

	count, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if count == 1 {
		// First hit of the day sets the expiry at the reset boundary.
		if err := s.rdb.ExpireAt(ctx, key, nextUTCMidnight(now)).Err(); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Failed to set usage key expiry")
		}
	}

	if int(count) > tier.DailyLimit {
		if err := s.rdb.Decr(ctx, key).Err(); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("Failed to roll back usage counter")
		}
		return nil, ErrQuotaExceeded
	}

	// Queue the increment for batch persistence.
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistUsageQueue, userID.String()).Err(); err != nil {
		s.log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to enqueue usage persist")
	}

	return &model.QuotaStatus{
		TierCode:  tier.Code,
		TierName:  tier.Name,
		Limit:     tier.DailyLimit,
		Used:      int(count),
		Remaining: tier.DailyLimit - int(count),
		ResetsAt:  nextUTCMidnight(now),
	}, nil
}

// UpgradeTier moves a user onto a different tier after validating it exists.
func (s *QuotaService) UpgradeTier(ctx context.Context, userID uuid.UUID, tierCode string) (*model.AIUsageTier, error) {
	tier, err := s.quotaRepo.GetTier(ctx, tierCode)
	if err != nil {
		return nil, err
	}
	if err := s.profileRepo.UpdateTier(ctx, userID, tier.Code); err != nil {
		return nil, err
	}
	return tier, nil
}

// TierCodeFor resolves a user's current tier code, defaulting to free when
// the profile has none assigned.
func (s *QuotaService) TierCodeFor(ctx context.Context, userID uuid.UUID) (string, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if profile.TierCode == "" {
		return "free", nil
	}
	return profile.TierCode, nil
}

// usedToday reads the live Redis counter, falling back to the persisted
// Postgres count when the key is missing (cold cache after a Redis restart).
func (s *QuotaService) usedToday(ctx context.Context, userID uuid.UUID) (int, error) {
	now := time.Now().UTC()
	key := config.CacheKey.AIUsageKey(userID.String(), now.Format("2006-01-02"))

	raw, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		used, convErr := strconv.Atoi(raw)
		if convErr == nil {
			return used, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return 0, err
	}

	return s.quotaRepo.GetUsed(ctx, userID, now)
}

func nextUTCMidnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}
