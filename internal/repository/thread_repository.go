package repository

import (
	"context"
	"errors"
	"time"

	"github.com/edudash/edudash-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotParticipant is returned when a caller acts on a thread it does not
// belong to.
var ErrNotParticipant = errors.New("profile is not a participant of this thread")

// ThreadRepository handles message thread data access. Message inserts,
// unread counters and read receipts are kept consistent inside transactions
// here; there is no database trigger layer.
type ThreadRepository struct {
	pool *pgxpool.Pool
}

// NewThreadRepository creates a new ThreadRepository.
func NewThreadRepository(pool *pgxpool.Pool) *ThreadRepository {
	return &ThreadRepository{pool: pool}
}

// GetByID retrieves a thread by its ID.
func (r *ThreadRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.MessageThread, error) {
	t := &model.MessageThread{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, preschool_id, student_id, subject, last_message_at, last_message_preview, created_at, updated_at
		 FROM message_threads WHERE id = $1`, id,
	).Scan(&t.ID, &t.PreschoolID, &t.StudentID, &t.Subject, &t.LastMessageAt, &t.LastMessagePreview, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListForProfile retrieves the caller's inbox: threads it participates in,
// newest activity first, each with the caller's unread count and the full
// participant list.
func (r *ThreadRepository) ListForProfile(ctx context.Context, profileID uuid.UUID) ([]model.ThreadSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.preschool_id, t.student_id, t.subject, t.last_message_at, t.last_message_preview,
		        t.created_at, t.updated_at, mp.unread_count
		 FROM message_threads t
		 JOIN message_participants mp ON mp.thread_id = t.id AND mp.profile_id = $1
		 ORDER BY t.last_message_at DESC NULLS LAST, t.created_at DESC`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []model.ThreadSummary
	ids := make([]uuid.UUID, 0, 16)
	for rows.Next() {
		var s model.ThreadSummary
		if err := rows.Scan(&s.ID, &s.PreschoolID, &s.StudentID, &s.Subject, &s.LastMessageAt,
			&s.LastMessagePreview, &s.CreatedAt, &s.UpdatedAt, &s.UnreadCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return summaries, nil
	}

	// Attach participants in one pass.
	prows, err := r.pool.Query(ctx,
		`SELECT mp.thread_id, mp.profile_id, mp.role, mp.unread_count, mp.last_read_at
		 FROM message_participants mp
		 WHERE mp.thread_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer prows.Close()

	byThread := make(map[uuid.UUID][]model.ThreadParticipant, len(ids))
	for prows.Next() {
		var p model.ThreadParticipant
		if err := prows.Scan(&p.ThreadID, &p.ProfileID, &p.Role, &p.UnreadCount, &p.LastReadAt); err != nil {
			return nil, err
		}
		byThread[p.ThreadID] = append(byThread[p.ThreadID], p)
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}
	for i := range summaries {
		summaries[i].Participants = byThread[summaries[i].ID]
	}
	return summaries, nil
}

// FindBetween returns an existing thread between two profiles, optionally
// scoped to a student, or pgx.ErrNoRows.
func (r *ThreadRepository) FindBetween(ctx context.Context, a, b uuid.UUID, studentID *uuid.UUID) (*model.MessageThread, error) {
	t := &model.MessageThread{}
	err := r.pool.QueryRow(ctx,
		`SELECT t.id, t.preschool_id, t.student_id, t.subject, t.last_message_at, t.last_message_preview, t.created_at, t.updated_at
		 FROM message_threads t
		 JOIN message_participants pa ON pa.thread_id = t.id AND pa.profile_id = $1
		 JOIN message_participants pb ON pb.thread_id = t.id AND pb.profile_id = $2
		 WHERE t.student_id IS NOT DISTINCT FROM $3
		 LIMIT 1`, a, b, studentID,
	).Scan(&t.ID, &t.PreschoolID, &t.StudentID, &t.Subject, &t.LastMessageAt, &t.LastMessagePreview, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a thread and its two participants in one transaction.
func (r *ThreadRepository) Create(ctx context.Context, t *model.MessageThread, participants []model.ThreadParticipant) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO message_threads (preschool_id, student_id, subject)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		t.PreschoolID, t.StudentID, t.Subject,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return err
	}

	for _, p := range participants {
		if _, err := tx.Exec(ctx,
			`INSERT INTO message_participants (thread_id, profile_id, role) VALUES ($1, $2, $3)`,
			t.ID, p.ProfileID, p.Role,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// IsParticipant reports whether a profile belongs to a thread.
func (r *ThreadRepository) IsParticipant(ctx context.Context, threadID, profileID uuid.UUID) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx,
		`SELECT 1 FROM message_participants WHERE thread_id = $1 AND profile_id = $2`,
		threadID, profileID,
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListParticipants returns every participant of a thread.
func (r *ThreadRepository) ListParticipants(ctx context.Context, threadID uuid.UUID) ([]model.ThreadParticipant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT thread_id, profile_id, role, unread_count, last_read_at
		 FROM message_participants WHERE thread_id = $1`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []model.ThreadParticipant
	for rows.Next() {
		var p model.ThreadParticipant
		if err := rows.Scan(&p.ThreadID, &p.ProfileID, &p.Role, &p.UnreadCount, &p.LastReadAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// InsertMessage stores a message, bumps the thread's last-message columns and
// increments every other participant's unread counter in one transaction.
func (r *ThreadRepository) InsertMessage(ctx context.Context, m *model.Message, preview string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO messages (thread_id, sender_id, kind, body, audio_path, duration_ms, waveform)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		m.ThreadID, m.SenderID, m.Kind, m.Body, m.AudioPath, m.DurationMS, m.Waveform,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE message_threads
		 SET last_message_at = $1, last_message_preview = $2, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3`,
		m.CreatedAt, preview, m.ThreadID,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE message_participants
		 SET unread_count = unread_count + 1
		 WHERE thread_id = $1 AND profile_id <> $2`,
		m.ThreadID, m.SenderID,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListMessages retrieves a page of a thread's messages, oldest first, with
// sender names joined for display.
func (r *ThreadRepository) ListMessages(ctx context.Context, threadID uuid.UUID, limit, offset int) ([]model.Message, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE thread_id = $1`, threadID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT m.id, m.thread_id, m.sender_id, p.full_name, m.kind, m.body, m.audio_path, m.duration_ms, m.waveform, m.created_at
		 FROM messages m
		 JOIN profiles p ON p.id = m.sender_id
		 WHERE m.thread_id = $1
		 ORDER BY m.created_at ASC
		 LIMIT $2 OFFSET $3`, threadID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.SenderName, &m.Kind, &m.Body,
			&m.AudioPath, &m.DurationMS, &m.Waveform, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		messages = append(messages, m)
	}
	return messages, total, rows.Err()
}

// MarkRead zeroes the caller's unread counter and stamps the read receipt.
// Returns ErrNotParticipant when the caller is not in the thread.
func (r *ThreadRepository) MarkRead(ctx context.Context, threadID, profileID uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE message_participants
		 SET unread_count = 0, last_read_at = $1
		 WHERE thread_id = $2 AND profile_id = $3`,
		at, threadID, profileID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotParticipant
	}
	return nil
}

// TotalUnread sums the caller's unread counters across all threads, for the
// inbox badge.
func (r *ThreadRepository) TotalUnread(ctx context.Context, profileID uuid.UUID) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(unread_count), 0) FROM message_participants WHERE profile_id = $1`,
		profileID,
	).Scan(&total)
	return total, err
}
