package model

import (
	"time"

	"github.com/google/uuid"
)

// Role enumerates the user roles of the platform.
type Role string

const (
	RoleParent     Role = "parent"
	RoleTeacher    Role = "teacher"
	RolePrincipal  Role = "principal"
	RoleSuperAdmin Role = "superadmin"
)

// StaffRoles are the roles that act on behalf of a preschool.
var StaffRoles = []Role{RoleTeacher, RolePrincipal, RoleSuperAdmin}

// Profile represents a user account of any role.
type Profile struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	Role         Role       `json:"role"`
	PreschoolID  *uuid.UUID `json:"preschool_id,omitempty"`
	TierCode     string     `json:"tier_code"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// LoginRequest is the payload for all role logins.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}
