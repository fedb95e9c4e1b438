// Package attendance implements the idempotent attendance-recording
// protocol and the session-date aggregation used for reporting.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/database"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/matcher"
)

// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
var ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

// ErrMissingSubject is returned when no subject code is given.
var ErrMissingSubject = errors.New("subject is required")

// MarkResult reports one marking call. MarkedCount counts only newly
// inserted rows; Detected reports every match, including identities whose
// row already existed.
type MarkResult struct {
	SessionID   int64               `json:"session_id"`
	MarkedCount int                 `json:"marked_count"`
	Detected    []matcher.Candidate `json:"detected"`
}

// Recorder turns matched identities into attendance rows. Re-marking the
// same roster for the same (date, subject) never creates duplicates or
// inflates counts; the whole call commits or rolls back as one unit.
type Recorder struct {
	store database.AttendanceStore
}

// NewRecorder creates a recorder on top of an attendance store.
func NewRecorder(store database.AttendanceStore) *Recorder {
	return &Recorder{store: store}
}

// Mark creates one session row (even for zero matches) and at most one
// attendance row per matched identity.
func (r *Recorder) Mark(ctx context.Context, date, subject, markedBy string, matches []matcher.Candidate, marksPerPresence int) (*MarkResult, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, ErrInvalidDate
	}
	if subject == "" {
		return nil, ErrMissingSubject
	}
	if marksPerPresence <= 0 {
		marksPerPresence = 1
	}

	// Two face regions matching the same identity collapse to one insert
	// attempt; the storage constraint would skip the second one anyway.
	identities := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if seen[m.Identity] {
			continue
		}
		seen[m.Identity] = true
		identities = append(identities, m.Identity)
	}

	session := database.AttendanceSession{
		Date:       date,
		Subject:    subject,
		MarkedBy:   markedBy,
		TotalMarks: marksPerPresence,
	}

	sessionID, inserted, err := r.store.CreateSessionWithRecords(ctx, session, identities, marksPerPresence)
	if err != nil {
		// Storage failures roll back the whole call; retryable for the caller.
		return nil, fmt.Errorf("record attendance: %w", err)
	}

	return &MarkResult{
		SessionID:   sessionID,
		MarkedCount: inserted,
		Detected:    matches,
	}, nil
}
