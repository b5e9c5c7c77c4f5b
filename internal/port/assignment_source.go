package port

import (
	"context"

	"rmtl/internal/domain"
)

// AssignmentQuery filters the devices assigned to a user and lab.
type AssignmentQuery struct {
	Status     string
	UserID     int64
	LabID      int64
	Purpose    string
	DeviceType string
}

// AssignmentSource fetches the devices assigned for testing.
type AssignmentSource interface {
	ListAssigned(ctx context.Context, q AssignmentQuery) ([]domain.AssignmentRecord, error)
}
