package service

import (
	"context"
	"encoding/json"

	"github.com/edudash/edudash-backend/internal/config"
	"github.com/edudash/edudash-backend/internal/model"
	"github.com/edudash/edudash-backend/internal/repository"
	"github.com/edudash/edudash-backend/internal/response"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// EmailJob is the queued payload drained by the notification worker.
type EmailJob struct {
	ToEmail  string `json:"to_email"`
	ToName   string `json:"to_name"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Attempts int    `json:"attempts"`
}

// NotificationService creates in-app notifications and enqueues their email
// copies for asynchronous delivery.
type NotificationService struct {
	notifRepo   *repository.NotificationRepository
	profileRepo *repository.ProfileRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(
	notifRepo *repository.NotificationRepository,
	profileRepo *repository.ProfileRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *NotificationService {
	return &NotificationService{
		notifRepo:   notifRepo,
		profileRepo: profileRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "notification_service").Logger(),
	}
}

// Notify writes an in-app notification and enqueues its email copy. Email
// delivery is best-effort: a queue failure is logged, not returned, so the
// in-app row always lands.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, kind, title, body string) error {
	n := &model.Notification{
		ID:     uuid.New(),
		UserID: userID,
		Kind:   kind,
		Title:  title,
		Body:   body,
	}
	if err := s.notifRepo.Create(ctx, n); err != nil {
		return err
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to load profile for email dispatch")
		return nil
	}

	job := EmailJob{
		ToEmail: profile.Email,
		ToName:  profile.FullName,
		Subject: title,
		Body:    body,
	}
	payload, err := json.Marshal(job)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal email job")
		return nil
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.NotificationQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).Msg("Failed to enqueue email job")
	}
	return nil
}

// List returns a page of the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, page, perPage int) ([]model.Notification, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	notifs, total, err := s.notifRepo.ListForUser(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if notifs == nil {
		notifs = []model.Notification{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return notifs, pagination, nil
}

// CountUnread returns the caller's unread notification count.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}

// MarkRead marks one of the caller's notifications read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.notifRepo.MarkRead(ctx, id, userID)
}

// MarkAllRead marks all of the caller's notifications read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.notifRepo.MarkAllRead(ctx, userID)
}
