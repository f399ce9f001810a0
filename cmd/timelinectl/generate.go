package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jengzang/records-timeline/internal/models"
	"github.com/jengzang/records-timeline/internal/timeline"
)

var (
	generateInput  string
	generateOutput string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the timeline engine over a JSON points file",
	Long: `Reads a JSON array of points and prints the resulting timeline.
Nothing is read from or written to the database, so stays are left unnamed
unless a favorite area or geocoding result would have matched.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateInput, "input", "i", "", "JSON file with an array of points")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Write events here instead of stdout")
	generateCmd.MarkFlagRequired("input")
}

type eventOutput struct {
	Kind  models.EventKind     `json:"kind"`
	Event models.TimelineEvent `json:"event"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	points, err := readPoints(generateInput)
	if err != nil {
		return err
	}

	events, err := timeline.NewProcessor(nil, nil).Process(context.Background(), uuid.Nil, points, cfg.Timeline)
	if err != nil {
		return err
	}

	out := make([]eventOutput, 0, len(events))
	for _, e := range events {
		out = append(out, eventOutput{Kind: e.Kind(), Event: e})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}

	if generateOutput == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(generateOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", generateOutput, err)
	}
	fmt.Printf("Wrote %d events to %s\n", len(events), generateOutput)
	return nil
}

func readPoints(path string) ([]models.GPSPoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var points []models.GPSPoint
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return points, nil
}
