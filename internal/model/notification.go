package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app notification row. Creation also enqueues an
// email dispatch handled asynchronously by the notification worker.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
