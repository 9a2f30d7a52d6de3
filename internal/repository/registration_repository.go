package repository

import (
	"context"

	"github.com/edudash/edudash-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegistrationRepository handles registration request data access.
type RegistrationRepository struct {
	pool *pgxpool.Pool
}

// NewRegistrationRepository creates a new RegistrationRepository.
func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

const registrationColumns = `id, preschool_id, guardian_name, guardian_email, guardian_phone,
	student_first_name, student_last_name, student_dob, status, payment_reference, pop_path,
	rejection_reason, sync_status, external_id, reviewed_by, reviewed_at, created_at, updated_at`

func scanRegistration(row interface{ Scan(...interface{}) error }) (*model.RegistrationRequest, error) {
	reg := &model.RegistrationRequest{}
	err := row.Scan(&reg.ID, &reg.PreschoolID, &reg.GuardianName, &reg.GuardianEmail, &reg.GuardianPhone,
		&reg.StudentFirstName, &reg.StudentLastName, &reg.StudentDOB, &reg.Status, &reg.PaymentReference,
		&reg.POPPath, &reg.RejectionReason, &reg.SyncStatus, &reg.ExternalID, &reg.ReviewedBy,
		&reg.ReviewedAt, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// GetByID retrieves a registration request by its ID.
func (r *RegistrationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.RegistrationRequest, error) {
	return scanRegistration(r.pool.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registration_requests WHERE id = $1`, id))
}

// ListPaginated retrieves registration requests for a preschool with an
// optional status filter, newest first.
func (r *RegistrationRepository) ListPaginated(ctx context.Context, preschoolID uuid.UUID, status *model.RegistrationStatus, limit, offset int) ([]model.RegistrationRequest, int, error) {
	countQuery := `SELECT COUNT(*) FROM registration_requests WHERE preschool_id = $1`
	countArgs := []interface{}{preschoolID}
	if status != nil {
		countQuery += ` AND status = $2`
		countArgs = append(countArgs, *status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + registrationColumns + ` FROM registration_requests WHERE preschool_id = $1`
	args := []interface{}{preschoolID}
	if status != nil {
		query += ` AND status = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4`
		args = append(args, *status, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var regs []model.RegistrationRequest
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, 0, err
		}
		regs = append(regs, *reg)
	}
	return regs, total, rows.Err()
}

// ListAll retrieves every registration of a preschool (spreadsheet export).
func (r *RegistrationRepository) ListAll(ctx context.Context, preschoolID uuid.UUID) ([]model.RegistrationRequest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+registrationColumns+` FROM registration_requests WHERE preschool_id = $1 ORDER BY created_at`, preschoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []model.RegistrationRequest
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

// Create inserts a new pending registration request.
func (r *RegistrationRepository) Create(ctx context.Context, reg *model.RegistrationRequest) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO registration_requests
		   (preschool_id, guardian_name, guardian_email, guardian_phone, student_first_name, student_last_name, student_dob)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, status, sync_status, created_at, updated_at`,
		reg.PreschoolID, reg.GuardianName, reg.GuardianEmail, reg.GuardianPhone,
		reg.StudentFirstName, reg.StudentLastName, reg.StudentDOB,
	).Scan(&reg.ID, &reg.Status, &reg.SyncStatus, &reg.CreatedAt, &reg.UpdatedAt)
}

// UpdateStatus transitions a pending registration to approved/rejected.
// Returns the number of rows moved so the service can detect double reviews.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.RegistrationStatus, reviewedBy uuid.UUID, reason string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE registration_requests
		 SET status = $1, rejection_reason = $2, reviewed_by = $3, reviewed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4 AND status = 'pending'`,
		status, reason, reviewedBy, id,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// UpdateSyncOutcome records the result of the external directory sync.
func (r *RegistrationRepository) UpdateSyncOutcome(ctx context.Context, id uuid.UUID, status model.SyncStatus, externalID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE registration_requests
		 SET sync_status = $1, external_id = $2, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3`,
		status, externalID, id,
	)
	return err
}

// UpdatePOP attaches an uploaded proof-of-payment path.
func (r *RegistrationRepository) UpdatePOP(ctx context.Context, id uuid.UUID, popPath string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE registration_requests SET pop_path = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		popPath, id,
	)
	return err
}

// UpdatePaymentReference stores the checkout reference from the payment
// edge function.
func (r *RegistrationRepository) UpdatePaymentReference(ctx context.Context, id uuid.UUID, ref string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE registration_requests SET payment_reference = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		ref, id,
	)
	return err
}

// UpsertExternal inserts or refreshes a registration pulled from the edusite
// directory, keyed by external_id. Rows already reviewed locally are not
// regressed to pending.
func (r *RegistrationRepository) UpsertExternal(ctx context.Context, reg *model.RegistrationRequest) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO registration_requests
		   (preschool_id, guardian_name, guardian_email, guardian_phone, student_first_name, student_last_name, student_dob, external_id, sync_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'synced')
		 ON CONFLICT (external_id) WHERE external_id IS NOT NULL AND external_id <> ''
		 DO UPDATE SET
		   guardian_name = EXCLUDED.guardian_name,
		   guardian_email = EXCLUDED.guardian_email,
		   guardian_phone = EXCLUDED.guardian_phone,
		   student_first_name = EXCLUDED.student_first_name,
		   student_last_name = EXCLUDED.student_last_name,
		   student_dob = EXCLUDED.student_dob,
		   updated_at = CURRENT_TIMESTAMP`,
		reg.PreschoolID, reg.GuardianName, reg.GuardianEmail, reg.GuardianPhone,
		reg.StudentFirstName, reg.StudentLastName, reg.StudentDOB, reg.ExternalID,
	)
	return err
}

// CountPending returns the pending review count for dashboards.
func (r *RegistrationRepository) CountPending(ctx context.Context, preschoolID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM registration_requests WHERE preschool_id = $1 AND status = 'pending'`,
		preschoolID,
	).Scan(&n)
	return n, err
}
