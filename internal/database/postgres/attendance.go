package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/database"
)

// AttendanceRepository provides PostgreSQL-backed attendance storage.
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new PostgreSQL attendance repository.
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// CreateSessionWithRecords inserts the session and its new records in one
// transaction. The unique (date, subject, identity) constraint plus
// ON CONFLICT DO NOTHING gives conflict-as-skip semantics, which also holds
// under concurrent marking calls for the same class.
func (r *AttendanceRepository) CreateSessionWithRecords(ctx context.Context, session database.AttendanceSession, identities []string, marks int) (int64, int, error) {
	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	var sessionID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO attendance_sessions (date, subject, marked_by, total_marks)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, session.Date, session.Subject, session.MarkedBy, session.TotalMarks).Scan(&sessionID)
	if err != nil {
		return 0, 0, fmt.Errorf("insert session: %w", err)
	}

	inserted := 0
	for _, identity := range identities {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO attendance_records (date, subject, identity, marks, status)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (date, subject, identity) DO NOTHING
		`, session.Date, session.Subject, identity, marks, database.StatusPresent)
		if err != nil {
			return 0, 0, fmt.Errorf("insert record for %s: %w", identity, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, 0, fmt.Errorf("getting rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit marking transaction: %w", err)
	}
	return sessionID, inserted, nil
}

// ListRecords returns records matching the filter, newest date first.
func (r *AttendanceRepository) ListRecords(ctx context.Context, filter database.RecordFilter) ([]database.AttendanceRecord, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT id, date, subject, identity, marks, status, created_at
		FROM attendance_records
		WHERE 1=1
	`)

	var args []any
	addCond := func(cond, value string) {
		args = append(args, value)
		query.WriteString(" AND " + cond + " $" + strconv.Itoa(len(args)))
	}
	if filter.Subject != "" {
		addCond("subject =", filter.Subject)
	}
	if filter.Identity != "" {
		addCond("identity =", filter.Identity)
	}
	if filter.From != "" {
		addCond("date >=", filter.From)
	}
	if filter.To != "" {
		addCond("date <=", filter.To)
	}
	query.WriteString(" ORDER BY date DESC, identity")

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []database.AttendanceRecord
	for rows.Next() {
		var rec database.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.Date, &rec.Subject, &rec.Identity, &rec.Marks, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// CountSessionDates counts distinct session dates for a subject. Distinct
// dates, not session rows: a subject may be marked more than once per day.
func (r *AttendanceRepository) CountSessionDates(ctx context.Context, subject string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT date) FROM attendance_sessions WHERE subject = $1
	`, subject).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count session dates: %w", err)
	}
	return count, nil
}

// CountPresentDates counts distinct present dates for (identity, subject).
func (r *AttendanceRepository) CountPresentDates(ctx context.Context, identity, subject string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT date)
		FROM attendance_records
		WHERE identity = $1 AND subject = $2 AND status = $3
	`, identity, subject, database.StatusPresent).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count present dates: %w", err)
	}
	return count, nil
}

// SessionSubjects lists distinct subjects with at least one session.
func (r *AttendanceRepository) SessionSubjects(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT subject FROM attendance_sessions ORDER BY subject
	`)
	if err != nil {
		return nil, fmt.Errorf("query session subjects: %w", err)
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subjects: %w", err)
	}
	return subjects, nil
}
