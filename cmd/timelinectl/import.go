package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jengzang/records-timeline/internal/repository"
)

var (
	importInput string
	importUser  string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Store points from a JSON file for a user",
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importInput, "input", "i", "", "JSON file with an array of points")
	importCmd.Flags().StringVar(&importUser, "user", "", "User ID the points belong to")
	importCmd.MarkFlagRequired("input")
	importCmd.MarkFlagRequired("user")
}

func runImport(cmd *cobra.Command, args []string) error {
	userID, err := parseUser(importUser)
	if err != nil {
		return err
	}
	points, err := readPoints(importInput)
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repository.NewPointRepository(db).InsertBatch(context.Background(), userID, points); err != nil {
		return err
	}
	fmt.Printf("Imported %d points for user %s\n", len(points), userID)
	return nil
}
