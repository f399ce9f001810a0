package main

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jengzang/records-timeline/internal/app"
)

var (
	reclassifyUser     string
	reclassifyAllUsers bool
)

var reclassifyCmd = &cobra.Command{
	Use:   "reclassify",
	Short: "Recompute travel modes of stored trips",
	Long: `Applies the configured classification thresholds to stored trips without
regenerating timelines. Only trips whose mode changes are written.`,
	RunE: runReclassify,
}

func init() {
	rootCmd.AddCommand(reclassifyCmd)

	reclassifyCmd.Flags().StringVar(&reclassifyUser, "user", "", "User ID to reclassify")
	reclassifyCmd.Flags().BoolVar(&reclassifyAllUsers, "all-users", false, "Reclassify every user with points")
	reclassifyCmd.MarkFlagsMutuallyExclusive("user", "all-users")
	reclassifyCmd.MarkFlagsOneRequired("user", "all-users")
}

func runReclassify(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	a := app.New(db, cfg.Timeline)
	ctx := context.Background()

	users, err := selectUsers(ctx, a, reclassifyUser, reclassifyAllUsers)
	if err != nil {
		return err
	}

	var total, updated atomic.Int64
	err = forEachUser(ctx, users, func(ctx context.Context, userID uuid.UUID) error {
		result, err := a.Reclassification.ReclassifyUserTrips(ctx, userID, cfg.Timeline)
		if err != nil {
			return fmt.Errorf("user %s: %w", userID, err)
		}
		total.Add(int64(result.Total))
		updated.Add(int64(result.Updated))
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Reclassified %d trips of %d users, %d changed mode\n", total.Load(), len(users), updated.Load())
	return nil
}
