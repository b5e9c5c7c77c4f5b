package postgres

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"rmtl/internal/domain"
	"rmtl/internal/port"
)

const assignmentStatusTested = "TESTED"

type testReportRepo struct {
	db *sqlx.DB
}

// NewTestReportRepo creates a new PostgreSQL-backed ReportSubmitter.
func NewTestReportRepo(db *sqlx.DB) port.ReportSubmitter {
	return &testReportRepo{db: db}
}

// insertReportsQuery is built once from the db tags of WireReportRow.
var insertReportsQuery = buildInsertQuery("test_reports", wireColumns())

// SubmitReports inserts every row and marks the assignments tested in one
// transaction. Nothing is written unless all of it succeeds.
func (r *testReportRepo) SubmitReports(ctx context.Context, rows []domain.WireReportRow) (ack *port.SubmitAck, err error) {
	const op = "testReportRepo.SubmitReports"
	if len(rows) == 0 {
		return &port.SubmitAck{}, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, wrapTransport(op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := sqlx.NamedQueryContext(ctx, tx, insertReportsQuery, rows)
	if err != nil {
		return nil, wrapTransport(op, err)
	}
	ids := make([]int64, 0, len(rows))
	for res.Next() {
		var id int64
		if err = res.Scan(&id); err != nil {
			_ = res.Close()
			return nil, wrapTransport(op, err)
		}
		ids = append(ids, id)
	}
	if err = res.Err(); err != nil {
		_ = res.Close()
		return nil, wrapTransport(op, err)
	}
	_ = res.Close()

	assignmentIDs := make([]int64, len(rows))
	for i := range rows {
		assignmentIDs[i] = rows[i].AssignmentID
	}
	query, args, err := sqlx.In(
		`UPDATE assignments SET status = ?, updated_at = NOW()
		 WHERE id IN (?) AND status = ?`,
		assignmentStatusTested, assignmentIDs, domain.AssignmentStatusAssigned)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return nil, wrapTransport(op, err)
	}
	if n, _ := result.RowsAffected(); n != int64(len(rows)) {
		err = &domain.TransportError{
			Op:     op,
			Detail: fmt.Sprintf("%d of %d assignments are no longer in ASSIGNED status", int64(len(rows))-n, len(rows)),
		}
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, wrapTransport(op, err)
	}
	return &port.SubmitAck{Accepted: len(ids), ReportIDs: ids}, nil
}

// wireColumns lists the db column of every WireReportRow field in order.
func wireColumns() []string {
	t := reflect.TypeOf(domain.WireReportRow{})
	cols := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("db"); tag != "" && tag != "-" {
			cols = append(cols, tag)
		}
	}
	return cols
}

func buildInsertQuery(table string, cols []string) string {
	named := make([]string, len(cols))
	for i, c := range cols {
		named[i] = ":" + c
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		table, strings.Join(cols, ", "), strings.Join(named, ", "))
}

// wrapTransport reports database failures the way the REST adapter reports
// backend failures, keeping the server message when Postgres sent one.
func wrapTransport(op string, err error) error {
	te := &domain.TransportError{Op: op, Err: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		te.Detail = pgErr.Message
	}
	return te
}
