package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/edudash/edudash-backend/internal/config"
	"github.com/edudash/edudash-backend/internal/email"
	"github.com/edudash/edudash-backend/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const notificationMaxAttempts = 3

// NotificationWorker consumes notification_dispatch_queue and delivers
// emails through the configured Mailer.
type NotificationWorker struct {
	mailer email.Mailer
	rdb    *redis.Client
	log    zerolog.Logger
}

// NewNotificationWorker creates a new NotificationWorker.
func NewNotificationWorker(mailer email.Mailer, rdb *redis.Client, log zerolog.Logger) *NotificationWorker {
	return &NotificationWorker{
		mailer: mailer,
		rdb:    rdb,
		log:    log.With().Str("component", "notification_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *NotificationWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.NotificationQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var job service.EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.mailer.Send(job.ToEmail, job.ToName, job.Subject, job.Body); err != nil {
		job.Attempts++
		if job.Attempts >= notificationMaxAttempts {
			w.log.Error().Err(err).
				Str("to", job.ToEmail).
				Int("attempts", job.Attempts).
				Msg("Email dropped after repeated failures")
			return
		}

		w.log.Warn().Err(err).
			Str("to", job.ToEmail).
			Int("attempts", job.Attempts).
			Msg("Email send failed, requeueing")
		raw, _ := json.Marshal(job)
		w.rdb.RPush(ctx, config.WorkerKey.NotificationQueue, raw)
		time.Sleep(5 * time.Second)
	}
}
