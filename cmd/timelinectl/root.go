package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jengzang/records-timeline/internal/config"
	"github.com/jengzang/records-timeline/internal/database"
)

var (
	cfg        *config.Config
	dbPath     string
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "timelinectl",
	Short: "Build and maintain GPS timelines",
	Long: `timelinectl turns raw GPS points into timelines of stays, trips and data gaps.
It can run the engine over a points file, import points, regenerate stored
timelines and reclassify stored trips with the current thresholds.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if configFile != "" {
			tc, err := config.LoadTimelineFile(configFile)
			if err != nil {
				return err
			}
			if err := tc.Validate(); err != nil {
				return err
			}
			loaded.Timeline = tc
		}
		if dbPath != "" {
			loaded.DBPath = dbPath
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the SQLite database (default from DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML file with timeline thresholds")
}

func openDB() (*sql.DB, error) {
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func parseUser(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id %q: %w", s, err)
	}
	return id, nil
}

// parseBound accepts RFC3339 or a date; empty leaves the side open
func parseBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (use RFC3339 or YYYY-MM-DD)", s)
	}
	return t, nil
}
