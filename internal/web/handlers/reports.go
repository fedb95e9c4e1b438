package handlers

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/attendance"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/database"
)

// ReportsHandler handles attendance history, percentages and export.
type ReportsHandler struct {
	agg      *attendance.Aggregator
	store    database.AttendanceStore
	students database.StudentStore
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(agg *attendance.Aggregator, store database.AttendanceStore, students database.StudentStore) *ReportsHandler {
	return &ReportsHandler{
		agg:      agg,
		store:    store,
		students: students,
	}
}

func filterFromQuery(r *http.Request) database.RecordFilter {
	q := r.URL.Query()
	return database.RecordFilter{
		Subject:  q.Get("subject"),
		Identity: q.Get("identity"),
		From:     q.Get("from"),
		To:       q.Get("to"),
	}
}

// History lists attendance records, optionally filtered by subject,
// identity and date range.
func (h *ReportsHandler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListRecords(r.Context(), filterFromQuery(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list records: %v", err))
		return
	}
	if records == nil {
		records = []database.AttendanceRecord{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}

// Percentage returns the attendance percentage for one identity. With a
// subject parameter it covers that subject only; without one it returns the
// full per-subject breakdown plus the overall aggregate.
func (h *ReportsHandler) Percentage(w http.ResponseWriter, r *http.Request) {
	identity := r.URL.Query().Get("identity")
	if identity == "" {
		respondError(w, http.StatusBadRequest, "identity is required")
		return
	}

	if subject := r.URL.Query().Get("subject"); subject != "" {
		p, err := h.agg.SubjectPercentage(r.Context(), identity, subject)
		if err != nil {
			respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to compute percentage: %v", err))
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"identity":   identity,
			"subject":    p.Subject,
			"present":    p.Present,
			"total":      p.Total,
			"percentage": p.Percentage,
		})
		return
	}

	report, err := h.agg.Report(r.Context(), identity)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to compute report: %v", err))
		return
	}
	if report.Subjects == nil {
		report.Subjects = []attendance.SubjectPercentage{}
	}
	respondJSON(w, http.StatusOK, report)
}

// ExportCSV streams the filtered attendance records as a CSV download with
// roster names joined in.
func (h *ReportsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListRecords(r.Context(), filterFromQuery(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list records: %v", err))
		return
	}

	roster, err := h.students.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load roster: %v", err))
		return
	}
	byEmail := make(map[string]database.Student, len(roster))
	for _, s := range roster {
		byEmail[s.Email] = s
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance_export.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "subject", "email", "name", "roll_number", "marks", "status"}); err != nil {
		// Headers are already sent, nothing left but to log and stop.
		log.Printf("csv export aborted: %v", err)
		return
	}
	for _, rec := range records {
		student := byEmail[rec.Identity]
		row := []string{
			rec.Date,
			rec.Subject,
			rec.Identity,
			student.Name,
			student.RollNumber,
			strconv.Itoa(rec.Marks),
			rec.Status,
		}
		if err := cw.Write(row); err != nil {
			log.Printf("csv export aborted: %v", err)
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Printf("csv export aborted: %v", err)
	}
}
