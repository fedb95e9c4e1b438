package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/attendance"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/config"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/database/postgres"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/extractor"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/gallery"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/matcher"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance API server",
	Long: `Start the attendance HTTP API.
The server accepts class photos, matches the detected faces against the
trained gallery and records attendance. It also serves history, percentage
reports and CSV export.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

func mustGetInt(cmd *cobra.Command, name string) int {
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic(fmt.Sprintf("flag %s: %v", name, err))
	}
	return v
}

func mustGetString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("flag %s: %v", name, err))
	}
	return v
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	fmt.Printf("Connecting to PostgreSQL database...\n")
	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	attendanceRepo := postgres.NewAttendanceRepository(pool)
	studentRepo := postgres.NewStudentRepository(pool)
	galleryRepo := postgres.NewGalleryRepository(pool)

	ex := extractor.NewClient(cfg.Extractor.URL, time.Duration(cfg.Extractor.Timeout)*time.Second)
	m := matcher.New(cfg.Recognition.Tolerance)

	// Warm the matcher from the last committed gallery. An untrained
	// system still serves everything except recognition.
	if g, err := galleryRepo.Load(context.Background()); err == nil {
		m.SetGallery(g)
		fmt.Printf("Loaded gallery %s with %d identities\n", g.Version, g.Size())
	} else if errors.Is(err, gallery.ErrNoGallery) {
		fmt.Println("No trained gallery yet; run train or POST /api/v1/gallery/rebuild")
	} else {
		return fmt.Errorf("failed to load gallery: %w", err)
	}

	builder := gallery.NewBuilder(ex, studentRepo, galleryRepo, cfg.Recognition.Dim)
	port, host := resolveServeHostPort(cmd)

	server := web.NewServer(cfg, port, host, web.Deps{
		Extractor:  ex,
		Matcher:    m,
		Recorder:   attendance.NewRecorder(attendanceRepo),
		Aggregator: attendance.NewAggregator(attendanceRepo),
		Attendance: attendanceRepo,
		Students:   studentRepo,
		Builder:    builder,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting attendance API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
