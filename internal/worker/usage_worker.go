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
	UsageBatchSize    = 100
	UsageBatchTimeout = 2 * time.Second
	UsagePollTimeout  = 1 * time.Second
)

// UsageWorker consumes persist_usage_queue and folds AI usage increments
// into the user_ai_usage table. Queue entries are user UUID strings, one
// per consumed unit; the batch aggregates them per user before writing.
type UsageWorker struct {
	pool      *pgxpool.Pool
	rdb       *redis.Client
	quotaRepo *repository.QuotaRepository
	log       zerolog.Logger
}

// NewUsageWorker creates a new UsageWorker.
func NewUsageWorker(pool *pgxpool.Pool, rdb *redis.Client, quotaRepo *repository.QuotaRepository, log zerolog.Logger) *UsageWorker {
	return &UsageWorker{
		pool:      pool,
		rdb:       rdb,
		quotaRepo: quotaRepo,
		log:       log.With().Str("component", "usage_worker").Logger(),
	}
}

// Start begins the worker loop with batching. Call in a goroutine.
func (w *UsageWorker) Start(ctx context.Context) {
	w.log.Info().Msg("UsageWorker started")

	batch := make([]uuid.UUID, 0, UsageBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= UsageBatchSize || time.Since(lastFlush) >= UsageBatchTimeout) {

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
			item, err := w.rdb.BLPop(ctx, UsagePollTimeout, config.WorkerKey.PersistUsageQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			userID, err := uuid.Parse(item[1])
			if err != nil {
				w.log.Error().Err(err).Str("raw", item[1]).Msg("Invalid user ID in queue")
				continue
			}

			batch = append(batch, userID)
		}
	}
}

func (w *UsageWorker) flushSafe(ctx context.Context, batch []uuid.UUID) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkUpsertUsage(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk usage upsert failed, using fallback")

		for _, userID := range batch {
			if err := w.quotaRepo.AddUsage(ctx, userID, time.Now(), 1); err != nil {
				w.log.Error().Err(err).Msg("single usage upsert failed, requeueing")
				w.rdb.RPush(ctx, config.WorkerKey.PersistUsageQueue, userID.String())
			}
		}
	}
}

// bulkUpsertUsage aggregates the batch per user and upserts in one
// UNNEST statement.
func (w *UsageWorker) bulkUpsertUsage(ctx context.Context, batch []uuid.UUID) error {
	counts := make(map[uuid.UUID]int, len(batch))
	for _, userID := range batch {
		counts[userID]++
	}

	userIDs := make([]uuid.UUID, 0, len(counts))
	deltas := make([]int, 0, len(counts))
	for userID, delta := range counts {
		userIDs = append(userIDs, userID)
		deltas = append(deltas, delta)
	}

	query := `
		INSERT INTO user_ai_usage (user_id, usage_date, used)
		SELECT u.user_id, CURRENT_DATE, u.delta
		FROM UNNEST($1::uuid[], $2::int[]) AS u (user_id, delta)
		ON CONFLICT (user_id, usage_date) DO UPDATE
		SET used = user_ai_usage.used + EXCLUDED.used
	`

	_, err := w.pool.Exec(ctx, query, userIDs, deltas)
	return err
}
