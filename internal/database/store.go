package database

import "context"

// AttendanceStore persists sessions and records. Implementations must make
// CreateSessionWithRecords atomic: the session row and all newly inserted
// records commit together or not at all, and a record whose
// (date, subject, identity) already exists is skipped, never duplicated.
type AttendanceStore interface {
	// CreateSessionWithRecords creates the session row and inserts one
	// record per identity with conflict-as-skip semantics. Returns the new
	// session ID and the number of records actually inserted.
	CreateSessionWithRecords(ctx context.Context, session AttendanceSession, identities []string, marks int) (int64, int, error)

	// ListRecords returns records matching the filter, newest date first.
	ListRecords(ctx context.Context, filter RecordFilter) ([]AttendanceRecord, error)

	// CountSessionDates counts distinct session dates for a subject.
	CountSessionDates(ctx context.Context, subject string) (int, error)

	// CountPresentDates counts distinct dates on which the identity has a
	// present record for the subject.
	CountPresentDates(ctx context.Context, identity, subject string) (int, error)

	// SessionSubjects lists distinct subjects that have at least one session.
	SessionSubjects(ctx context.Context) ([]string, error)
}

// StudentStore reads the enrolled roster. GetByEmail returns nil (not an
// error) for unknown identities.
type StudentStore interface {
	GetByEmail(ctx context.Context, email string) (*Student, error)
	List(ctx context.Context) ([]Student, error)
}
