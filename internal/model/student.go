package model

import (
	"time"

	"github.com/google/uuid"
)

// Student represents an enrolled child. Guardians link to students through
// the guardian_id column; message threads may be scoped to a student.
type Student struct {
	ID          uuid.UUID  `json:"id"`
	PreschoolID uuid.UUID  `json:"preschool_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	GuardianID  *uuid.UUID `json:"guardian_id,omitempty"`
	ClassName   string     `json:"class_name"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
