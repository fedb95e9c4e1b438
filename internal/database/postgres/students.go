package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/database"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/gallery"
)

// StudentRepository provides PostgreSQL-backed roster storage.
type StudentRepository struct {
	pool *Pool
}

// NewStudentRepository creates a new PostgreSQL student repository.
func NewStudentRepository(pool *Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetByEmail returns the student for an identity key, nil when unknown.
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*database.Student, error) {
	var s database.Student
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, name, roll_number, department, semester
		FROM students
		WHERE email = $1
	`, email).Scan(&s.ID, &s.Email, &s.Name, &s.RollNumber, &s.Department, &s.Semester)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	return &s, nil
}

// List returns all enrolled students ordered by email.
func (r *StudentRepository) List(ctx context.Context) ([]database.Student, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, name, roll_number, department, semester
		FROM students
		ORDER BY email
	`)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var students []database.Student
	for rows.Next() {
		var s database.Student
		if err := rows.Scan(&s.ID, &s.Email, &s.Name, &s.RollNumber, &s.Department, &s.Semester); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return students, nil
}

// Upsert inserts or updates a student keyed by email.
func (r *StudentRepository) Upsert(ctx context.Context, s database.Student) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO students (email, name, roll_number, department, semester)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			roll_number = EXCLUDED.roll_number,
			department = EXCLUDED.department,
			semester = EXCLUDED.semester
	`, s.Email, s.Name, s.RollNumber, s.Department, s.Semester)
	if err != nil {
		return fmt.Errorf("upsert student: %w", err)
	}
	return nil
}

// Lookup implements gallery.IdentityDirectory for train-time validation.
func (r *StudentRepository) Lookup(ctx context.Context, key string) (*gallery.IdentityInfo, error) {
	s, err := r.GetByEmail(ctx, key)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	return &gallery.IdentityInfo{
		Name:       s.Name,
		RollNumber: s.RollNumber,
		Department: s.Department,
	}, nil
}
