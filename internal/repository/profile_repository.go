package repository

import (
	"context"

	"github.com/edudash/edudash-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository handles profile data access.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// GetByID retrieves a profile by its ID.
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	p := &model.Profile{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, full_name, role, preschool_id, tier_code, password_hash, created_at, updated_at
		 FROM profiles WHERE id = $1`, id,
	).Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.PreschoolID, &p.TierCode, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByEmail retrieves a profile by its unique email.
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	p := &model.Profile{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, full_name, role, preschool_id, tier_code, password_hash, created_at, updated_at
		 FROM profiles WHERE lower(email) = lower($1)`, email,
	).Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.PreschoolID, &p.TierCode, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new profile.
func (r *ProfileRepository) Create(ctx context.Context, p *model.Profile) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO profiles (email, full_name, role, preschool_id, tier_code, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		p.Email, p.FullName, p.Role, p.PreschoolID, p.TierCode, p.PasswordHash,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// UpdateTier changes a profile's subscription tier.
func (r *ProfileRepository) UpdateTier(ctx context.Context, id uuid.UUID, tierCode string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE profiles SET tier_code = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		tierCode, id,
	)
	return err
}

// ListStaff retrieves the staff profiles of a preschool, for thread
// counterpart selection.
func (r *ProfileRepository) ListStaff(ctx context.Context, preschoolID uuid.UUID) ([]model.Profile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, email, full_name, role, preschool_id, tier_code, password_hash, created_at, updated_at
		 FROM profiles
		 WHERE preschool_id = $1 AND role IN ('teacher', 'principal')
		 ORDER BY full_name`, preschoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.PreschoolID, &p.TierCode, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
