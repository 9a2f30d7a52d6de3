package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/edudash/edudash-backend/internal/config"
	"github.com/edudash/edudash-backend/internal/model"
	"github.com/edudash/edudash-backend/internal/recorder"
	"github.com/edudash/edudash-backend/internal/repository"
	"github.com/edudash/edudash-backend/internal/response"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain Errors
var (
	ErrNotParticipant  = errors.New("not a participant of this thread")
	ErrEmptyMessage    = errors.New("message body is empty")
	ErrVoiceTooShort   = errors.New("voice message is shorter than the minimum duration")
	ErrVoiceIncomplete = errors.New("voice message is missing audio path or duration")
	ErrSelfThread      = errors.New("cannot open a thread with yourself")
	ErrStudentUnknown  = errors.New("student does not exist")
)

// ThreadEvent is the realtime payload published to a thread's Redis channel
// and relayed to WebSocket subscribers.
type ThreadEvent struct {
	Type     string         `json:"type"` // message | read | typing
	ThreadID uuid.UUID      `json:"thread_id"`
	SenderID uuid.UUID      `json:"sender_id"`
	Message  *model.Message `json:"message,omitempty"`
	At       time.Time      `json:"at"`
}

// ThreadService handles the messaging inbox: thread lifecycle, message
// posting (text and voice) and realtime fan-out through Redis PubSub.
type ThreadService struct {
	threadRepo   *repository.ThreadRepository
	profileRepo  *repository.ProfileRepository
	studentRepo  *repository.StudentRepository
	notifService *NotificationService
	rdb          *redis.Client
	recCfg       recorder.Config
	log          zerolog.Logger
}

// NewThreadService creates a new ThreadService.
func NewThreadService(
	threadRepo *repository.ThreadRepository,
	profileRepo *repository.ProfileRepository,
	studentRepo *repository.StudentRepository,
	notifService *NotificationService,
	rdb *redis.Client,
	log zerolog.Logger,
) *ThreadService {
	return &ThreadService{
		threadRepo:   threadRepo,
		profileRepo:  profileRepo,
		studentRepo:  studentRepo,
		notifService: notifService,
		rdb:          rdb,
		recCfg:       recorder.DefaultConfig(),
		log:          log.With().Str("component", "thread_service").Logger(),
	}
}

// ListInbox returns the caller's threads ordered by recency, each with the
// caller's unread count and the participant list.
func (s *ThreadService) ListInbox(ctx context.Context, profileID uuid.UUID) ([]model.ThreadSummary, error) {
	threads, err := s.threadRepo.ListForProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if threads == nil {
		threads = []model.ThreadSummary{}
	}
	return threads, nil
}

// EnsureThread returns the existing thread between the caller and the
// counterpart (scoped to the same student) or creates one. Opening a thread
// is idempotent: repeated calls land on the same conversation.
func (s *ThreadService) EnsureThread(ctx context.Context, callerID uuid.UUID, callerRole model.Role, req *model.OpenThreadRequest) (*model.MessageThread, error) {
	counterpartID, err := uuid.Parse(req.CounterpartID)
	if err != nil {
		return nil, fmt.Errorf("parse counterpart id: %w", err)
	}
	if counterpartID == callerID {
		return nil, ErrSelfThread
	}

	var studentID *uuid.UUID
	if req.StudentID != "" {
		id, err := uuid.Parse(req.StudentID)
		if err != nil {
			return nil, fmt.Errorf("parse student id: %w", err)
		}
		if _, err := s.studentRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrStudentUnknown
			}
			return nil, err
		}
		studentID = &id
	}

	existing, err := s.threadRepo.FindBetween(ctx, callerID, counterpartID, studentID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	counterpart, err := s.profileRepo.GetByID(ctx, counterpartID)
	if err != nil {
		return nil, err
	}

	var preschoolID uuid.UUID
	if counterpart.PreschoolID != nil {
		preschoolID = *counterpart.PreschoolID
	}

	thread := &model.MessageThread{
		ID:          uuid.New(),
		PreschoolID: preschoolID,
		StudentID:   studentID,
		Subject:     strings.TrimSpace(req.Subject),
	}
	participants := []model.ThreadParticipant{
		{ThreadID: thread.ID, ProfileID: callerID, Role: callerRole},
		{ThreadID: thread.ID, ProfileID: counterpartID, Role: counterpart.Role},
	}

	if err := s.threadRepo.Create(ctx, thread, participants); err != nil {
		return nil, err
	}
	return thread, nil
}

// GetThread returns a single thread the caller participates in.
func (s *ThreadService) GetThread(ctx context.Context, threadID, callerID uuid.UUID) (*model.MessageThread, error) {
	if err := s.requireParticipant(ctx, threadID, callerID); err != nil {
		return nil, err
	}
	return s.threadRepo.GetByID(ctx, threadID)
}

// ContactList is what the compose screen needs: the preschool's staff to
// address, and the caller's children for student scoping.
type ContactList struct {
	Staff    []model.Profile `json:"staff"`
	Students []model.Student `json:"students"`
}

// Contacts returns the caller's messaging contacts.
func (s *ThreadService) Contacts(ctx context.Context, callerID uuid.UUID) (*ContactList, error) {
	caller, err := s.profileRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	contacts := &ContactList{Staff: []model.Profile{}, Students: []model.Student{}}

	if caller.PreschoolID != nil {
		staff, err := s.profileRepo.ListStaff(ctx, *caller.PreschoolID)
		if err != nil {
			return nil, err
		}
		if staff != nil {
			contacts.Staff = staff
		}
	}

	students, err := s.studentRepo.ListByGuardian(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if students != nil {
		contacts.Students = students
	}

	return contacts, nil
}

// ListMessages returns a page of a thread's messages, newest last. The
// caller must be a participant.
func (s *ThreadService) ListMessages(ctx context.Context, threadID, callerID uuid.UUID, page, perPage int) ([]model.Message, *response.Pagination, error) {
	if err := s.requireParticipant(ctx, threadID, callerID); err != nil {
		return nil, nil, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 50
	}
	if perPage > 200 {
		perPage = 200
	}

	messages, total, err := s.threadRepo.ListMessages(ctx, threadID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if messages == nil {
		messages = []model.Message{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return messages, pagination, nil
}

// SendMessage posts a text or voice message to a thread, bumps the other
// participants' unread counts and publishes a realtime event.
//
// Voice messages are validated against the recorder tuning: takes shorter
// than the minimum duration are rejected, and the raw decibel trace is
// normalized and downsampled to the fixed waveform length before storage.
func (s *ThreadService) SendMessage(ctx context.Context, threadID, senderID uuid.UUID, req *model.SendMessageRequest) (*model.Message, error) {
	if err := s.requireParticipant(ctx, threadID, senderID); err != nil {
		return nil, err
	}

	msg := &model.Message{
		ID:       uuid.New(),
		ThreadID: threadID,
		SenderID: senderID,
		Kind:     req.Kind,
	}

	var preview string
	switch req.Kind {
	case model.MessageKindText:
		body := strings.TrimSpace(req.Body)
		if body == "" {
			return nil, ErrEmptyMessage
		}
		msg.Body = body
		preview = truncatePreview(body, 120)

	case model.MessageKindVoice:
		if req.AudioPath == "" || req.DurationMS <= 0 {
			return nil, ErrVoiceIncomplete
		}
		if time.Duration(req.DurationMS)*time.Millisecond < s.recCfg.MinDuration {
			return nil, ErrVoiceTooShort
		}
		msg.AudioPath = req.AudioPath
		msg.DurationMS = req.DurationMS
		msg.Waveform = s.buildWaveform(req.SamplesDB)
		preview = "🎤 Voice message"

	default:
		return nil, ErrEmptyMessage
	}

	if err := s.threadRepo.InsertMessage(ctx, msg, preview); err != nil {
		return nil, err
	}

	s.publish(ctx, ThreadEvent{
		Type:     "message",
		ThreadID: threadID,
		SenderID: senderID,
		Message:  msg,
		At:       msg.CreatedAt,
	})

	s.notifyParticipants(ctx, threadID, senderID, preview)

	return msg, nil
}

// notifyParticipants fans a new-message notification out to everyone in the
// thread except the sender. Best-effort: the message is already committed, so
// failures here are only logged.
func (s *ThreadService) notifyParticipants(ctx context.Context, threadID, senderID uuid.UUID, preview string) {
	participants, err := s.threadRepo.ListParticipants(ctx, threadID)
	if err != nil {
		s.log.Error().Err(err).Str("thread_id", threadID.String()).Msg("Failed to list participants for notification")
		return
	}

	sender, err := s.profileRepo.GetByID(ctx, senderID)
	if err != nil {
		s.log.Error().Err(err).Str("sender_id", senderID.String()).Msg("Failed to load sender for notification")
		return
	}

	title := "New message from " + sender.FullName
	for _, p := range participants {
		if p.ProfileID == senderID {
			continue
		}
		if err := s.notifService.Notify(ctx, p.ProfileID, "message", title, preview); err != nil {
			s.log.Error().Err(err).Str("recipient_id", p.ProfileID.String()).Msg("Failed to notify participant")
		}
	}
}

// MarkRead zeroes the caller's unread count on a thread and publishes a read
// receipt.
func (s *ThreadService) MarkRead(ctx context.Context, threadID, callerID uuid.UUID) error {
	now := time.Now()
	if err := s.threadRepo.MarkRead(ctx, threadID, callerID, now); err != nil {
		if errors.Is(err, repository.ErrNotParticipant) {
			return ErrNotParticipant
		}
		return err
	}

	s.publish(ctx, ThreadEvent{
		Type:     "read",
		ThreadID: threadID,
		SenderID: callerID,
		At:       now,
	})
	return nil
}

// NotifyTyping publishes a transient typing event. Typing state is never
// persisted.
func (s *ThreadService) NotifyTyping(ctx context.Context, threadID, callerID uuid.UUID) error {
	if err := s.requireParticipant(ctx, threadID, callerID); err != nil {
		return err
	}
	s.publish(ctx, ThreadEvent{
		Type:     "typing",
		ThreadID: threadID,
		SenderID: callerID,
		At:       time.Now(),
	})
	return nil
}

// TotalUnread returns the caller's unread count across all threads, used for
// the inbox badge.
func (s *ThreadService) TotalUnread(ctx context.Context, profileID uuid.UUID) (int, error) {
	return s.threadRepo.TotalUnread(ctx, profileID)
}

// IsParticipant reports whether a profile belongs to a thread. Exposed for
// the WebSocket handshake.
func (s *ThreadService) IsParticipant(ctx context.Context, threadID, profileID uuid.UUID) (bool, error) {
	return s.threadRepo.IsParticipant(ctx, threadID, profileID)
}

func (s *ThreadService) requireParticipant(ctx context.Context, threadID, profileID uuid.UUID) error {
	ok, err := s.threadRepo.IsParticipant(ctx, threadID, profileID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotParticipant
	}
	return nil
}

// buildWaveform converts a raw decibel trace to the fixed-length normalized
// bar array rendered by clients. A missing trace yields a flat waveform so
// the player still draws.
func (s *ThreadService) buildWaveform(samplesDB []float64) []float64 {
	bars := make([]float64, 0, len(samplesDB))
	for _, db := range samplesDB {
		bars = append(bars, recorder.Normalize(db, s.recCfg.MeterFloorDB, s.recCfg.MeterCeilingDB))
	}
	return recorder.Downsample(bars, s.recCfg.WaveformLen)
}

func (s *ThreadService) publish(ctx context.Context, ev ThreadEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal thread event")
		return
	}
	channel := config.CacheKey.ThreadEventsChannel(ev.ThreadID.String())
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Error().Err(err).Str("channel", channel).Msg("Failed to publish thread event")
	}
}

func truncatePreview(body string, max int) string {
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	return string(runes[:max-1]) + "…"
}
