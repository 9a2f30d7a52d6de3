package model

import (
	"time"

	"github.com/google/uuid"
)

// MessageKind distinguishes text from voice messages.
type MessageKind string

const (
	MessageKindText  MessageKind = "text"
	MessageKindVoice MessageKind = "voice"
)

// MessageThread is a conversation between a guardian and a staff member,
// optionally scoped to a student.
type MessageThread struct {
	ID                 uuid.UUID  `json:"id"`
	PreschoolID        uuid.UUID  `json:"preschool_id"`
	StudentID          *uuid.UUID `json:"student_id,omitempty"`
	Subject            string     `json:"subject"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty"`
	LastMessagePreview string     `json:"last_message_preview"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ThreadParticipant links a profile to a thread and tracks its unread count.
type ThreadParticipant struct {
	ThreadID    uuid.UUID  `json:"thread_id"`
	ProfileID   uuid.UUID  `json:"profile_id"`
	Role        Role       `json:"role"`
	UnreadCount int        `json:"unread_count"`
	LastReadAt  *time.Time `json:"last_read_at,omitempty"`
}

// Message is a single entry in a thread. Voice messages carry an audio path,
// a duration and a fixed-length normalized waveform for bar rendering.
type Message struct {
	ID         uuid.UUID   `json:"id"`
	ThreadID   uuid.UUID   `json:"thread_id"`
	SenderID   uuid.UUID   `json:"sender_id"`
	SenderName string      `json:"sender_name,omitempty"`
	Kind       MessageKind `json:"kind"`
	Body       string      `json:"body,omitempty"`
	AudioPath  string      `json:"audio_path,omitempty"`
	DurationMS int         `json:"duration_ms,omitempty"`
	Waveform   []float64   `json:"waveform,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// ThreadSummary is the inbox row: the thread plus the caller's unread count
// and the other participants for display.
type ThreadSummary struct {
	MessageThread
	UnreadCount  int                 `json:"unread_count"`
	Participants []ThreadParticipant `json:"participants"`
}

// OpenThreadRequest creates (or returns) a thread between the caller and a
// staff member or guardian, optionally scoped to a student.
type OpenThreadRequest struct {
	CounterpartID string `json:"counterpart_id" binding:"required,uuid"`
	StudentID     string `json:"student_id" binding:"omitempty,uuid"`
	Subject       string `json:"subject" binding:"omitempty,max=255"`
}

// SendMessageRequest is the payload for posting a message to a thread.
// Text messages require body; voice messages require audio_path, duration_ms
// and a raw amplitude trace in decibels sampled by the recorder.
type SendMessageRequest struct {
	Kind       MessageKind `json:"kind" binding:"required,oneof=text voice"`
	Body       string      `json:"body" binding:"omitempty,max=4000"`
	AudioPath  string      `json:"audio_path" binding:"omitempty,max=512"`
	DurationMS int         `json:"duration_ms" binding:"omitempty,min=0"`
	SamplesDB  []float64   `json:"samples_db" binding:"omitempty,max=4096"`
}
