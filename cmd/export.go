package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/config"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/database"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/database/postgres"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export attendance records to a CSV file",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("subject", "", "Filter by subject code")
	exportCmd.Flags().String("identity", "", "Filter by student email")
	exportCmd.Flags().String("from", "", "Earliest date to include (YYYY-MM-DD)")
	exportCmd.Flags().String("to", "", "Latest date to include (YYYY-MM-DD)")
	exportCmd.Flags().StringP("output", "o", "attendance_export.csv", "Output file path")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	ctx := context.Background()
	attendanceRepo := postgres.NewAttendanceRepository(pool)
	studentRepo := postgres.NewStudentRepository(pool)

	filter := database.RecordFilter{
		Subject:  mustGetString(cmd, "subject"),
		Identity: mustGetString(cmd, "identity"),
		From:     mustGetString(cmd, "from"),
		To:       mustGetString(cmd, "to"),
	}

	records, err := attendanceRepo.ListRecords(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	roster, err := studentRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load roster: %w", err)
	}
	byEmail := make(map[string]database.Student, len(roster))
	for _, s := range roster {
		byEmail[s.Email] = s
	}

	output := mustGetString(cmd, "output")
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"date", "subject", "email", "name", "roll_number", "marks", "status"}); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
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
			return fmt.Errorf("failed to write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	fmt.Printf("Exported %d records to %s\n", len(records), output)
	return nil
}
