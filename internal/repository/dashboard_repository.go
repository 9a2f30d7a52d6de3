package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardRepository aggregates counters for the role shells.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// CountHomeworkDue returns the number of homework assignments of a preschool
// due in the next 7 days.
func (r *DashboardRepository) CountHomeworkDue(ctx context.Context, preschoolID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM homework_assignments
		 WHERE preschool_id = $1 AND due_at BETWEEN NOW() AND NOW() + INTERVAL '7 days'`,
		preschoolID,
	).Scan(&n)
	return n, err
}
