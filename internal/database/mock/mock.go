// Package mock provides in-memory implementations of the database
// interfaces for testing.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/database"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/gallery"
)

// MockAttendanceStore is an in-memory implementation of
// database.AttendanceStore with conflict-as-skip semantics and error
// injection.
type MockAttendanceStore struct {
	mu       sync.Mutex
	sessions []database.AttendanceSession
	records  []database.AttendanceRecord
	byKey    map[string]bool
	nextID   int64

	// Error injection
	MarkError  error
	ListError  error
	CountError error
}

// NewMockAttendanceStore creates an empty mock attendance store.
func NewMockAttendanceStore() *MockAttendanceStore {
	return &MockAttendanceStore{byKey: make(map[string]bool), nextID: 1}
}

func recordKey(date, subject, identity string) string {
	return date + "|" + subject + "|" + identity
}

// CreateSessionWithRecords mirrors the PostgreSQL transaction: one session
// row always, at most one record per (date, subject, identity).
func (m *MockAttendanceStore) CreateSessionWithRecords(ctx context.Context, session database.AttendanceSession, identities []string, marks int) (int64, int, error) {
	if m.MarkError != nil {
		return 0, 0, m.MarkError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	session.ID = m.nextID
	m.nextID++
	m.sessions = append(m.sessions, session)

	inserted := 0
	for _, identity := range identities {
		key := recordKey(session.Date, session.Subject, identity)
		if m.byKey[key] {
			continue
		}
		m.byKey[key] = true
		m.records = append(m.records, database.AttendanceRecord{
			ID:       m.nextID,
			Date:     session.Date,
			Subject:  session.Subject,
			Identity: identity,
			Marks:    marks,
			Status:   database.StatusPresent,
		})
		m.nextID++
		inserted++
	}
	return session.ID, inserted, nil
}

// ListRecords returns records matching the filter.
func (m *MockAttendanceStore) ListRecords(ctx context.Context, filter database.RecordFilter) ([]database.AttendanceRecord, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []database.AttendanceRecord
	for _, r := range m.records {
		if filter.Subject != "" && r.Subject != filter.Subject {
			continue
		}
		if filter.Identity != "" && r.Identity != filter.Identity {
			continue
		}
		if filter.From != "" && r.Date < filter.From {
			continue
		}
		if filter.To != "" && r.Date > filter.To {
			continue
		}
		out = append(out, r)
	}
	// Same ordering as the PostgreSQL store: date DESC, identity ASC.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Identity < out[j].Identity
	})
	return out, nil
}

// CountSessionDates counts distinct session dates for a subject.
func (m *MockAttendanceStore) CountSessionDates(ctx context.Context, subject string) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	dates := make(map[string]bool)
	for _, s := range m.sessions {
		if s.Subject == subject {
			dates[s.Date] = true
		}
	}
	return len(dates), nil
}

// CountPresentDates counts distinct present dates for (identity, subject).
func (m *MockAttendanceStore) CountPresentDates(ctx context.Context, identity, subject string) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	dates := make(map[string]bool)
	for _, r := range m.records {
		if r.Identity == identity && r.Subject == subject && r.Status == database.StatusPresent {
			dates[r.Date] = true
		}
	}
	return len(dates), nil
}

// SessionSubjects lists distinct subjects with at least one session.
func (m *MockAttendanceStore) SessionSubjects(ctx context.Context) ([]string, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	set := make(map[string]bool)
	for _, s := range m.sessions {
		set[s.Subject] = true
	}
	subjects := make([]string, 0, len(set))
	for s := range set {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)
	return subjects, nil
}

// SessionCount returns the number of recorded sessions.
func (m *MockAttendanceStore) SessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// RecordCount returns the total number of attendance records.
func (m *MockAttendanceStore) RecordCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// AddSession seeds a session directly, bypassing record insertion.
func (m *MockAttendanceStore) AddSession(date, subject string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, database.AttendanceSession{
		ID:      m.nextID,
		Date:    date,
		Subject: subject,
	})
	m.nextID++
}

// MockStudentStore is an in-memory roster. It also serves as a
// gallery.IdentityDirectory for builder tests.
type MockStudentStore struct {
	mu       sync.Mutex
	students map[string]database.Student

	GetError error
}

// NewMockStudentStore creates an empty mock roster.
func NewMockStudentStore() *MockStudentStore {
	return &MockStudentStore{students: make(map[string]database.Student)}
}

// AddStudent adds a student to the roster.
func (m *MockStudentStore) AddStudent(s database.Student) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == 0 {
		s.ID = int64(len(m.students) + 1)
	}
	m.students[s.Email] = s
}

// GetByEmail returns the student for an identity key, nil when unknown.
func (m *MockStudentStore) GetByEmail(ctx context.Context, email string) (*database.Student, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[email]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// List returns all enrolled students ordered by email.
func (m *MockStudentStore) List(ctx context.Context) ([]database.Student, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]database.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// Lookup implements gallery.IdentityDirectory.
func (m *MockStudentStore) Lookup(ctx context.Context, key string) (*gallery.IdentityInfo, error) {
	s, err := m.GetByEmail(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", key, err)
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
