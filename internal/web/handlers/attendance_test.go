package handlers

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/attendance"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/database/mock"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/extractor"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/matcher"
)

func TestMark(t *testing.T) {
	store := mock.NewMockAttendanceStore()
	ex := &stubExtractor{faces: []extractor.Face{
		{Embedding: []float32{1, 0, 0, 0}, BBox: []float64{10, 10, 50, 50}},
	}}
	m := trainedMatcher(t, map[string][]float32{
		"a@example.com": {1, 0, 0, 0},
		"b@example.com": {0, 5, 0, 0},
	})
	h := NewAttendanceHandler(testConfig(), ex, m, attendance.NewRecorder(store))

	req := markRequest(t, map[string]string{
		"date":      "2025-01-10",
		"subject":   "MATH101",
		"marked_by": "teacher@example.com",
	}, []byte("fake-jpeg"))
	w := httptest.NewRecorder()
	h.Mark(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		SessionID     int64               `json:"session_id"`
		FacesDetected int                 `json:"faces_detected"`
		MarkedCount   int                 `json:"marked_count"`
		Detected      []matcher.Candidate `json:"detected"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.FacesDetected != 1 || resp.MarkedCount != 1 {
		t.Errorf("unexpected response %+v", resp)
	}
	if len(resp.Detected) != 1 || resp.Detected[0].Identity != "a@example.com" {
		t.Errorf("unexpected detected %+v", resp.Detected)
	}
	if store.SessionCount() != 1 || store.RecordCount() != 1 {
		t.Errorf("unexpected store state: %d sessions, %d records", store.SessionCount(), store.RecordCount())
	}
}

func TestMarkEmptyGallery(t *testing.T) {
	ex := &stubExtractor{faces: []extractor.Face{{Embedding: []float32{1, 0, 0, 0}}}}
	h := NewAttendanceHandler(testConfig(), ex, matcher.New(0.6), attendance.NewRecorder(mock.NewMockAttendanceStore()))

	req := markRequest(t, map[string]string{"date": "2025-01-10", "subject": "MATH101"}, []byte("fake-jpeg"))
	w := httptest.NewRecorder()
	h.Mark(w, req)

	if w.Code != 409 {
		t.Errorf("expected 409 for untrained gallery, got %d", w.Code)
	}
}

func TestMarkMissingPhoto(t *testing.T) {
	m := trainedMatcher(t, map[string][]float32{"a@example.com": {1, 0, 0, 0}})
	h := NewAttendanceHandler(testConfig(), &stubExtractor{}, m, attendance.NewRecorder(mock.NewMockAttendanceStore()))

	req := markRequest(t, map[string]string{"date": "2025-01-10", "subject": "MATH101"}, nil)
	w := httptest.NewRecorder()
	h.Mark(w, req)

	if w.Code != 400 {
		t.Errorf("expected 400 without photo, got %d", w.Code)
	}
}

func TestMarkInvalidDate(t *testing.T) {
	m := trainedMatcher(t, map[string][]float32{"a@example.com": {1, 0, 0, 0}})
	h := NewAttendanceHandler(testConfig(), &stubExtractor{}, m, attendance.NewRecorder(mock.NewMockAttendanceStore()))

	req := markRequest(t, map[string]string{"date": "10/01/2025", "subject": "MATH101"}, []byte("fake-jpeg"))
	w := httptest.NewRecorder()
	h.Mark(w, req)

	if w.Code != 400 {
		t.Errorf("expected 400 for malformed date, got %d", w.Code)
	}
}

func TestMarkExtractorFailure(t *testing.T) {
	m := trainedMatcher(t, map[string][]float32{"a@example.com": {1, 0, 0, 0}})
	ex := &stubExtractor{err: errors.New("connection refused")}
	store := mock.NewMockAttendanceStore()
	h := NewAttendanceHandler(testConfig(), ex, m, attendance.NewRecorder(store))

	req := markRequest(t, map[string]string{"date": "2025-01-10", "subject": "MATH101"}, []byte("fake-jpeg"))
	w := httptest.NewRecorder()
	h.Mark(w, req)

	if w.Code != 502 {
		t.Errorf("expected 502 on extractor failure, got %d", w.Code)
	}
	if store.SessionCount() != 0 {
		t.Error("no session may be created when extraction fails")
	}
}

func TestMarkNoFacesStillCreatesSession(t *testing.T) {
	m := trainedMatcher(t, map[string][]float32{"a@example.com": {1, 0, 0, 0}})
	store := mock.NewMockAttendanceStore()
	h := NewAttendanceHandler(testConfig(), &stubExtractor{}, m, attendance.NewRecorder(store))

	req := markRequest(t, map[string]string{"date": "2025-01-10", "subject": "MATH101"}, []byte("fake-jpeg"))
	w := httptest.NewRecorder()
	h.Mark(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if store.SessionCount() != 1 || store.RecordCount() != 0 {
		t.Errorf("expected an empty session, got %d sessions, %d records", store.SessionCount(), store.RecordCount())
	}
}
