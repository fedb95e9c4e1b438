package mock

import (
	"context"
	"testing"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/database"
)

func TestListRecordsOrdering(t *testing.T) {
	store := NewMockAttendanceStore()
	ctx := context.Background()

	sessions := []struct {
		date       string
		identities []string
	}{
		{"2025-01-11", []string{"c@example.com"}},
		{"2025-01-10", []string{"b@example.com", "a@example.com"}},
	}
	for _, s := range sessions {
		session := database.AttendanceSession{Date: s.date, Subject: "MATH101", TotalMarks: 1}
		if _, _, err := store.CreateSessionWithRecords(ctx, session, s.identities, 1); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	records, err := store.ListRecords(ctx, database.RecordFilter{})
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}

	// Date descending, then identity ascending within a date, matching the
	// PostgreSQL store's ORDER BY.
	want := []struct {
		date     string
		identity string
	}{
		{"2025-01-11", "c@example.com"},
		{"2025-01-10", "a@example.com"},
		{"2025-01-10", "b@example.com"},
	}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i, w := range want {
		if records[i].Date != w.date || records[i].Identity != w.identity {
			t.Errorf("record %d: got (%s, %s), want (%s, %s)", i, records[i].Date, records[i].Identity, w.date, w.identity)
		}
	}
}
