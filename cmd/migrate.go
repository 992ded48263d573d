package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/killallgit/guidepack/internal/database"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the job store schema",
	Long: `Create or update the render job table.

The serve command migrates on startup as well; this command exists so the
schema can be prepared before the first server start.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	if _, err := newLogger(); err != nil {
		return err
	}

	db, err := database.Open(appConfig)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Job store migrated: %s\n", appConfig.Database.Path)
	return nil
}
