package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/attendance"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/config"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/extractor"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/matcher"
)

// AttendanceHandler handles the photo-to-attendance endpoint.
type AttendanceHandler struct {
	config   *config.Config
	ex       extractor.Extractor
	matcher  *matcher.Matcher
	recorder *attendance.Recorder
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(cfg *config.Config, ex extractor.Extractor, m *matcher.Matcher, rec *attendance.Recorder) *AttendanceHandler {
	return &AttendanceHandler{
		config:   cfg,
		ex:       ex,
		matcher:  m,
		recorder: rec,
	}
}

// Mark accepts a class photo plus date and subject, recognizes the faces
// in it and records attendance for every accepted match.
func (h *AttendanceHandler) Mark(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	date := r.FormValue("date")
	subject := r.FormValue("subject")
	markedBy := r.FormValue("marked_by")

	marks := 1
	if s := r.FormValue("marks"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "marks must be a positive integer")
			return
		}
		marks = n
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		respondError(w, http.StatusBadRequest, "photo is required")
		return
	}
	defer file.Close()

	photo, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read photo")
		return
	}

	faces, err := h.ex.Extract(r.Context(), photo)
	if err != nil {
		respondError(w, http.StatusBadGateway, fmt.Sprintf("face extraction failed: %v", err))
		return
	}
	if max := h.config.Recognition.MaxFaces; max > 0 && len(faces) > max {
		faces = faces[:max]
	}

	matches, err := h.matcher.MatchAll(faces)
	if err != nil {
		if errors.Is(err, matcher.ErrEmptyGallery) {
			respondError(w, http.StatusConflict, "no trained gallery: enroll students and rebuild first")
			return
		}
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("matching failed: %v", err))
		return
	}

	result, err := h.recorder.Mark(r.Context(), date, subject, markedBy, matches, marks)
	if err != nil {
		if errors.Is(err, attendance.ErrInvalidDate) || errors.Is(err, attendance.ErrMissingSubject) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to record attendance: %v", err))
		return
	}

	detected := result.Detected
	if detected == nil {
		detected = []matcher.Candidate{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"session_id":     result.SessionID,
		"date":           date,
		"subject":        subject,
		"faces_detected": len(faces),
		"marked_count":   result.MarkedCount,
		"detected":       detected,
	})
}
