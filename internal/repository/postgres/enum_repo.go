package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"rmtl/internal/domain"
	"rmtl/internal/port"
)

type enumRepo struct {
	db *sqlx.DB
}

// NewEnumRepo creates a new PostgreSQL-backed EnumSource.
func NewEnumRepo(db *sqlx.DB) port.EnumSource {
	return &enumRepo{db: db}
}

type enumValue struct {
	Category string `db:"category"`
	Value    string `db:"value"`
}

func (r *enumRepo) GetEnums(ctx context.Context) (*domain.EnumSet, error) {
	var values []enumValue
	err := r.db.SelectContext(ctx, &values,
		`SELECT category, value FROM enum_values
		 WHERE active
		 ORDER BY category, sort_order, value`)
	if err != nil {
		return nil, wrapTransport("enumRepo.GetEnums", err)
	}
	return foldEnums(values), nil
}

// foldEnums groups ordered rows into the vocabulary set. Unknown categories
// are ignored.
func foldEnums(values []enumValue) *domain.EnumSet {
	set := &domain.EnumSet{}
	for _, v := range values {
		switch v.Category {
		case "test_method":
			set.TestMethods = append(set.TestMethods, v.Value)
		case "test_status":
			set.TestStatuses = append(set.TestStatuses, v.Value)
		case "test_result":
			set.TestResults = append(set.TestResults, v.Value)
		case "physical_condition":
			set.PhysicalConditions = append(set.PhysicalConditions, v.Value)
		case "seal_status":
			set.SealStatuses = append(set.SealStatuses, v.Value)
		case "make":
			set.Makes = append(set.Makes, v.Value)
		case "capacity":
			set.Capacities = append(set.Capacities, v.Value)
		}
	}
	return set
}
