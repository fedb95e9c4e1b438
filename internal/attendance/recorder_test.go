package attendance

import (
	"context"
	"errors"
	"testing"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/database/mock"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/matcher"
)

func candidates(identities ...string) []matcher.Candidate {
	out := make([]matcher.Candidate, 0, len(identities))
	for _, id := range identities {
		out = append(out, matcher.Candidate{Identity: id, Confidence: 90})
	}
	return out
}

func TestMarkIsIdempotent(t *testing.T) {
	store := mock.NewMockAttendanceStore()
	recorder := NewRecorder(store)
	ctx := context.Background()

	first, err := recorder.Mark(ctx, "2025-01-10", "MATH101", "teacher@example.com", candidates("a@example.com", "b@example.com"), 1)
	if err != nil {
		t.Fatalf("first mark failed: %v", err)
	}
	if first.MarkedCount != 2 {
		t.Errorf("expected 2 new rows, got %d", first.MarkedCount)
	}
	if len(first.Detected) != 2 {
		t.Errorf("expected 2 detected, got %d", len(first.Detected))
	}

	// Identical roster again: no new rows, everything still detected.
	second, err := recorder.Mark(ctx, "2025-01-10", "MATH101", "teacher@example.com", candidates("a@example.com", "b@example.com"), 1)
	if err != nil {
		t.Fatalf("second mark failed: %v", err)
	}
	if second.MarkedCount != 0 {
		t.Errorf("expected 0 new rows on re-mark, got %d", second.MarkedCount)
	}
	if len(second.Detected) != 2 {
		t.Errorf("detected must include already-present identities, got %d", len(second.Detected))
	}
	if store.RecordCount() != 2 {
		t.Errorf("record count changed on re-mark: %d", store.RecordCount())
	}
	if store.SessionCount() != 2 {
		t.Errorf("each marking call must create a session, got %d", store.SessionCount())
	}
}

func TestMarkOverlappingRoster(t *testing.T) {
	store := mock.NewMockAttendanceStore()
	recorder := NewRecorder(store)
	ctx := context.Background()

	if _, err := recorder.Mark(ctx, "2025-01-10", "MATH101", "t@example.com", candidates("a@example.com", "b@example.com"), 1); err != nil {
		t.Fatalf("first mark failed: %v", err)
	}

	result, err := recorder.Mark(ctx, "2025-01-10", "MATH101", "t@example.com", candidates("a@example.com", "c@example.com"), 1)
	if err != nil {
		t.Fatalf("second mark failed: %v", err)
	}
	if result.MarkedCount != 1 {
		t.Errorf("only c@example.com is new, got marked count %d", result.MarkedCount)
	}
	if store.RecordCount() != 3 {
		t.Errorf("expected rows for a, b, c, got %d", store.RecordCount())
	}
}

func TestMarkZeroMatchesStillCreatesSession(t *testing.T) {
	store := mock.NewMockAttendanceStore()
	recorder := NewRecorder(store)

	result, err := recorder.Mark(context.Background(), "2025-01-10", "MATH101", "t@example.com", nil, 1)
	if err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if result.MarkedCount != 0 || len(result.Detected) != 0 {
		t.Errorf("unexpected result %+v", result)
	}
	if store.SessionCount() != 1 {
		t.Errorf("expected a session row even with zero matches, got %d", store.SessionCount())
	}
}

func TestMarkDuplicateIdentityInOnePhoto(t *testing.T) {
	store := mock.NewMockAttendanceStore()
	recorder := NewRecorder(store)

	// Two face regions matched the same identity.
	result, err := recorder.Mark(context.Background(), "2025-01-10", "MATH101", "t@example.com", candidates("a@example.com", "a@example.com"), 1)
	if err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if result.MarkedCount != 1 {
		t.Errorf("duplicate identity must count once, got %d", result.MarkedCount)
	}
	if len(result.Detected) != 2 {
		t.Errorf("both face regions stay reported, got %d", len(result.Detected))
	}
	if store.RecordCount() != 1 {
		t.Errorf("expected a single row, got %d", store.RecordCount())
	}
}

func TestMarkValidation(t *testing.T) {
	recorder := NewRecorder(mock.NewMockAttendanceStore())
	ctx := context.Background()

	if _, err := recorder.Mark(ctx, "10-01-2025", "MATH101", "t@example.com", nil, 1); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
	if _, err := recorder.Mark(ctx, "2025-01-10", "", "t@example.com", nil, 1); !errors.Is(err, ErrMissingSubject) {
		t.Errorf("expected ErrMissingSubject, got %v", err)
	}
}

func TestMarkStorageFailure(t *testing.T) {
	store := mock.NewMockAttendanceStore()
	store.MarkError = errors.New("connection reset")
	recorder := NewRecorder(store)

	_, err := recorder.Mark(context.Background(), "2025-01-10", "MATH101", "t@example.com", candidates("a@example.com"), 1)
	if err == nil {
		t.Fatal("expected storage failure to propagate")
	}
	if store.SessionCount() != 0 || store.RecordCount() != 0 {
		t.Error("nothing may be written on failure")
	}
}
