package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"rmtl/internal/domain"
	"rmtl/internal/port"
)

type assignmentRepo struct {
	db *sqlx.DB
}

// NewAssignmentRepo creates a new PostgreSQL-backed AssignmentSource.
func NewAssignmentRepo(db *sqlx.DB) port.AssignmentSource {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) ListAssigned(ctx context.Context, q port.AssignmentQuery) ([]domain.AssignmentRecord, error) {
	status := q.Status
	if status == "" {
		status = domain.AssignmentStatusAssigned
	}

	var records []domain.AssignmentRecord
	err := r.db.SelectContext(ctx, &records,
		`SELECT a.id AS assignment_id, d.id AS device_id, d.serial_number, d.make, d.capacity,
		        d.phase, a.location_code, a.location_name, a.bench_name, a.tester_name,
		        a.approver_name, d.device_type, a.testing_purpose
		 FROM assignments a
		 JOIN devices d ON d.id = a.device_id
		 WHERE a.status = $1 AND a.user_id = $2 AND a.lab_id = $3
		   AND ($4 = '' OR a.testing_purpose = $4)
		   AND ($5 = '' OR d.device_type = $5)
		 ORDER BY a.assigned_at, a.id`,
		status, q.UserID, q.LabID, q.Purpose, q.DeviceType)
	if err != nil {
		return nil, wrapTransport("assignmentRepo.ListAssigned", err)
	}
	return records, nil
}
