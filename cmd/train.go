package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/config"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/database/postgres"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/extractor"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/gallery"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Build the face gallery from enrollment images",
	Long: `Train the face gallery from a directory of enrollment images.
File names encode identities (jane_at_example.com_1.jpg). Each identity
gets one reference vector, the mean of its sample embeddings. The new
gallery replaces the previous one in a single commit.

With DATABASE_URL set the gallery is stored in PostgreSQL and enrollment
is validated against the students roster; otherwise it is written to a
local JSON file and every identity is accepted.`,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().String("images", "", "Enrollment images directory (defaults to TRAINING_IMAGES_DIR)")
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	imagesDir := mustGetString(cmd, "images")
	if imagesDir == "" {
		imagesDir = cfg.Gallery.ImagesDir
	}

	samples, err := gallery.LoadSamplesDir(imagesDir)
	if err != nil {
		return fmt.Errorf("failed to load enrollment images: %w", err)
	}
	if len(samples) == 0 {
		return fmt.Errorf("no enrollment images found in %s", imagesDir)
	}
	fmt.Printf("Found %d enrollment images in %s\n", len(samples), imagesDir)

	var store gallery.Store
	var directory gallery.IdentityDirectory
	if cfg.Database.URL != "" {
		pool, err := postgres.Initialize(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		defer pool.Close()
		store = postgres.NewGalleryRepository(pool)
		directory = postgres.NewStudentRepository(pool)
	} else {
		fmt.Printf("No DATABASE_URL set, writing gallery to %s\n", cfg.Gallery.Path)
		store = gallery.NewFileStore(cfg.Gallery.Path)
		directory = gallery.OpenDirectory{}
	}

	ex := extractor.NewClient(cfg.Extractor.URL, time.Duration(cfg.Extractor.Timeout)*time.Second)
	builder := gallery.NewBuilder(ex, directory, store, cfg.Recognition.Dim)

	bar := progressbar.NewOptions(len(samples),
		progressbar.OptionSetDescription("Training gallery"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)
	builder.OnProgress = func(done, total int) {
		_ = bar.Set(done)
	}

	result, err := builder.Rebuild(context.Background(), samples)
	fmt.Println()
	if err != nil {
		if errors.Is(err, gallery.ErrNoSamples) {
			return errors.New("no usable enrollment samples, gallery unchanged")
		}
		return fmt.Errorf("training failed, gallery unchanged: %w", err)
	}

	fmt.Printf("Gallery %s committed\n", result.Gallery.Version)
	fmt.Printf("  Identities: %d\n", result.Gallery.Size())
	fmt.Printf("  Samples:    %d accepted\n", result.Accepted)
	for _, warning := range result.Warnings {
		fmt.Printf("  Warning: %s (%s): %s\n", warning.Source, warning.Identity, warning.Reason)
	}
	for _, skipped := range result.Skipped {
		fmt.Printf("  Skipped: %s (no usable samples)\n", skipped)
	}
	return nil
}
