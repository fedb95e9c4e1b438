package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/web/handlers"
)

func (s *Server) setupRoutes(deps Deps) {
	// Create handlers
	attendanceHandler := handlers.NewAttendanceHandler(s.config, deps.Extractor, deps.Matcher, deps.Recorder)
	reportsHandler := handlers.NewReportsHandler(deps.Aggregator, deps.Attendance, deps.Students)
	studentsHandler := handlers.NewStudentsHandler(deps.Students)
	galleryHandler := handlers.NewGalleryHandler(s.config, deps.Builder, deps.Matcher)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Attendance
		r.Post("/attendance/mark", attendanceHandler.Mark)
		r.Get("/attendance/history", reportsHandler.History)
		r.Get("/attendance/percentage", reportsHandler.Percentage)
		r.Get("/attendance/export", reportsHandler.ExportCSV)

		// Roster
		r.Get("/students", studentsHandler.List)

		// Gallery
		r.Get("/gallery", galleryHandler.Get)
		r.Post("/gallery/rebuild", galleryHandler.Rebuild)
	})
}
