package worker

import (
	"context"
	"time"

	"github.com/edudash/edudash-backend/internal/config"
	"github.com/edudash/edudash-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	RedemptionBatchSize    = 100
	RedemptionBatchTimeout = 2 * time.Second
	RedemptionPollTimeout  = 1 * time.Second
)

// RedemptionWorker consumes persist_redemptions_queue and folds redemption
// increments into the marketing_campaigns table. Queue entries are campaign
// UUID strings, one per redemption. After a successful flush the live Redis
// counters are decremented by the persisted amounts so counter plus column
// always totals the real count.
type RedemptionWorker struct {
	pool         *pgxpool.Pool
	rdb          *redis.Client
	campaignRepo *repository.CampaignRepository
	log          zerolog.Logger
}

// NewRedemptionWorker creates a new RedemptionWorker.
func NewRedemptionWorker(pool *pgxpool.Pool, rdb *redis.Client, campaignRepo *repository.CampaignRepository, log zerolog.Logger) *RedemptionWorker {
	return &RedemptionWorker{
		pool:         pool,
		rdb:          rdb,
		campaignRepo: campaignRepo,
		log:          log.With().Str("component", "redemption_worker").Logger(),
	}
}

// Start begins the worker loop with batching. Call in a goroutine.
func (w *RedemptionWorker) Start(ctx context.Context) {
	w.log.Info().Msg("RedemptionWorker started")

	batch := make([]uuid.UUID, 0, RedemptionBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= RedemptionBatchSize || time.Since(lastFlush) >= RedemptionBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, RedemptionPollTimeout, config.WorkerKey.PersistRedemptionQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			campaignID, err := uuid.Parse(item[1])
			if err != nil {
				w.log.Error().Err(err).Str("raw", item[1]).Msg("Invalid campaign ID in queue")
				continue
			}

			batch = append(batch, campaignID)
		}
	}
}

func (w *RedemptionWorker) flushSafe(ctx context.Context, batch []uuid.UUID) {
	if len(batch) == 0 {
		return
	}

	counts := aggregate(batch)

	if err := w.bulkAddRedemptions(ctx, counts); err != nil {
		w.log.Warn().Err(err).Msg("bulk redemption update failed, using fallback")

		for campaignID, delta := range counts {
			if err := w.campaignRepo.AddRedemptions(ctx, campaignID, delta); err != nil {
				w.log.Error().Err(err).Msg("single redemption update failed, requeueing")
				for i := 0; i < delta; i++ {
					w.rdb.RPush(ctx, config.WorkerKey.PersistRedemptionQueue, campaignID.String())
				}
				delete(counts, campaignID)
			}
		}
	}

	w.bulkDecrementCounters(ctx, counts)
}

func (w *RedemptionWorker) bulkAddRedemptions(ctx context.Context, counts map[uuid.UUID]int) error {
	campaignIDs := make([]uuid.UUID, 0, len(counts))
	deltas := make([]int, 0, len(counts))
	for campaignID, delta := range counts {
		campaignIDs = append(campaignIDs, campaignID)
		deltas = append(deltas, delta)
	}

	query := `
		UPDATE marketing_campaigns AS c
		SET redemption_count = c.redemption_count + t.delta,
		    updated_at = NOW()
		FROM UNNEST($1::uuid[], $2::int[]) AS t (campaign_id, delta)
		WHERE c.id = t.campaign_id
	`

	_, err := w.pool.Exec(ctx, query, campaignIDs, deltas)
	return err
}

// bulkDecrementCounters shifts the persisted amounts out of the live Redis
// counters.
func (w *RedemptionWorker) bulkDecrementCounters(ctx context.Context, counts map[uuid.UUID]int) {
	pipe := w.rdb.Pipeline()
	for campaignID, delta := range counts {
		pipe.DecrBy(ctx, config.CacheKey.CampaignRedemptionsKey(campaignID.String()), int64(delta))
	}
	_, _ = pipe.Exec(ctx)
}

func aggregate(batch []uuid.UUID) map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int, len(batch))
	for _, id := range batch {
		counts[id]++
	}
	return counts
}
