package repository

import (
	"context"

	"github.com/edudash/edudash-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, preschool_id, first_name, last_name, date_of_birth, guardian_id, class_name, created_at, updated_at
		 FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.PreschoolID, &s.FirstName, &s.LastName, &s.DateOfBirth, &s.GuardianID, &s.ClassName, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListByGuardian retrieves a guardian's children, for thread scoping.
func (r *StudentRepository) ListByGuardian(ctx context.Context, guardianID uuid.UUID) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, preschool_id, first_name, last_name, date_of_birth, guardian_id, class_name, created_at, updated_at
		 FROM students WHERE guardian_id = $1 ORDER BY first_name`, guardianID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.PreschoolID, &s.FirstName, &s.LastName, &s.DateOfBirth, &s.GuardianID, &s.ClassName, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// Create inserts a student (used when an approved registration is enrolled).
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO students (preschool_id, first_name, last_name, date_of_birth, guardian_id, class_name)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		s.PreschoolID, s.FirstName, s.LastName, s.DateOfBirth, s.GuardianID, s.ClassName,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}
