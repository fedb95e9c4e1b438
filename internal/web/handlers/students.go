package handlers

import (
	"fmt"
	"net/http"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/database"
)

// StudentsHandler exposes the enrolled roster.
type StudentsHandler struct {
	students database.StudentStore
}

// NewStudentsHandler creates a new students handler.
func NewStudentsHandler(students database.StudentStore) *StudentsHandler {
	return &StudentsHandler{students: students}
}

// List returns all enrolled students.
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.students.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list students: %v", err))
		return
	}
	if students == nil {
		students = []database.Student{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"students": students,
		"count":    len(students),
	})
}
