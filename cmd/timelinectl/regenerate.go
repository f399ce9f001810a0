package main

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jengzang/records-timeline/internal/app"
)

var (
	regenerateUser     string
	regenerateAllUsers bool
	regenerateFrom     string
	regenerateTo       string
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Rebuild stored timelines from stored points",
	Long: `Regenerates the stored timeline of one user, or of every user with points.
Users are processed concurrently, up to TIMELINE_MAX_WORKERS at a time.`,
	RunE: runRegenerate,
}

func init() {
	rootCmd.AddCommand(regenerateCmd)

	regenerateCmd.Flags().StringVar(&regenerateUser, "user", "", "User ID to regenerate")
	regenerateCmd.Flags().BoolVar(&regenerateAllUsers, "all-users", false, "Regenerate every user with points")
	regenerateCmd.Flags().StringVar(&regenerateFrom, "from", "", "Start of the range (RFC3339 or YYYY-MM-DD)")
	regenerateCmd.Flags().StringVar(&regenerateTo, "to", "", "End of the range (RFC3339 or YYYY-MM-DD)")
	regenerateCmd.MarkFlagsMutuallyExclusive("user", "all-users")
	regenerateCmd.MarkFlagsOneRequired("user", "all-users")
}

func runRegenerate(cmd *cobra.Command, args []string) error {
	from, err := parseBound(regenerateFrom)
	if err != nil {
		return err
	}
	to, err := parseBound(regenerateTo)
	if err != nil {
		return err
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return fmt.Errorf("--from %s is after --to %s", regenerateFrom, regenerateTo)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	a := app.New(db, cfg.Timeline)
	ctx := context.Background()

	users, err := selectUsers(ctx, a, regenerateUser, regenerateAllUsers)
	if err != nil {
		return err
	}

	var events atomic.Int64
	err = forEachUser(ctx, users, func(ctx context.Context, userID uuid.UUID) error {
		result, err := a.Timeline.Regenerate(ctx, userID, from, to)
		if err != nil {
			return fmt.Errorf("user %s: %w", userID, err)
		}
		events.Add(int64(result.Stays + result.Trips + result.DataGaps))
		fmt.Printf("%s: %d points -> %d stays, %d trips, %d gaps\n",
			userID, result.Points, result.Stays, result.Trips, result.DataGaps)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Regenerated %d users, %d events\n", len(users), events.Load())
	return nil
}

func selectUsers(ctx context.Context, a *app.App, user string, all bool) ([]uuid.UUID, error) {
	if !all {
		id, err := parseUser(user)
		if err != nil {
			return nil, err
		}
		return []uuid.UUID{id}, nil
	}

	users, err := a.Points.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// forEachUser runs fn for every user with at most cfg.MaxWorkers in flight
// and stops scheduling new users after the first failure
func forEachUser(ctx context.Context, users []uuid.UUID, fn func(context.Context, uuid.UUID) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.MaxWorkers, 1))

	for _, userID := range users {
		userID := userID
		g.Go(func() error {
			return fn(ctx, userID)
		})
	}
	return g.Wait()
}
