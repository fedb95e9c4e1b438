package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "attendance-manager",
	Short: "Face recognition attendance system for classrooms",
	Long: `Attendance Manager records classroom attendance from a single class
photo. Enrolled students are trained into a face gallery; submitted photos
are matched against it and every recognized student is marked present for
the given date and subject.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
