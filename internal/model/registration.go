package model

import (
	"time"

	"github.com/google/uuid"
)

// RegistrationStatus enumerates the review states of a registration request.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

// SyncStatus tracks the outcome of pushing an approved registration to the
// external EduDash directory. Failures are reconciled manually by operators.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncFailed  SyncStatus = "failed"
)

// RegistrationRequest is a guardian's enrollment application, reviewed by a
// principal. Approval triggers the external sync side effect.
type RegistrationRequest struct {
	ID               uuid.UUID          `json:"id"`
	PreschoolID      uuid.UUID          `json:"preschool_id"`
	GuardianName     string             `json:"guardian_name"`
	GuardianEmail    string             `json:"guardian_email"`
	GuardianPhone    string             `json:"guardian_phone"`
	StudentFirstName string             `json:"student_first_name"`
	StudentLastName  string             `json:"student_last_name"`
	StudentDOB       *time.Time         `json:"student_dob,omitempty"`
	Status           RegistrationStatus `json:"status"`
	PaymentReference string             `json:"payment_reference,omitempty"`
	POPPath          string             `json:"pop_path,omitempty"`
	RejectionReason  string             `json:"rejection_reason,omitempty"`
	SyncStatus       SyncStatus         `json:"sync_status"`
	ExternalID       string             `json:"external_id,omitempty"`
	ReviewedBy       *uuid.UUID         `json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time         `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// CreateRegistrationRequest is the public enrollment payload.
type CreateRegistrationRequest struct {
	PreschoolID      string     `json:"preschool_id" binding:"required,uuid"`
	GuardianName     string     `json:"guardian_name" binding:"required,min=2,max=255"`
	GuardianEmail    string     `json:"guardian_email" binding:"required,email"`
	GuardianPhone    string     `json:"guardian_phone" binding:"required,min=7,max=20"`
	StudentFirstName string     `json:"student_first_name" binding:"required,min=1,max=100"`
	StudentLastName  string     `json:"student_last_name" binding:"required,min=1,max=100"`
	StudentDOB       *time.Time `json:"student_dob" binding:"omitempty"`
}

// RejectRegistrationRequest carries the reviewer's reason.
type RejectRegistrationRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=1000"`
}

// CreatePaymentRequest asks the payment edge function for a checkout.
type CreatePaymentRequest struct {
	AmountCents int    `json:"amount_cents" binding:"required,min=100"`
	Currency    string `json:"currency" binding:"required,len=3"`
}
