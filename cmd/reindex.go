package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cal-pilot/internal/calendar"
	"github.com/ziadkadry99/cal-pilot/internal/db"
	"github.com/ziadkadry99/cal-pilot/internal/progress"
	"github.com/ziadkadry99/cal-pilot/internal/vectordb"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the semantic event index from the database",
	Long:  `Re-embeds every stored event into the vector index, including the training collection for events with scheduling preferences, and persists the result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := db.Open(filepath.Join(cfg.DataDir, "calpilot.db"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		embedder, err := createEmbedderFromConfig(cfg)
		if err != nil {
			return err
		}

		// Start from an empty index rather than loading the old one, so
		// deleted events drop out.
		index, err := vectordb.NewChromemIndex(embedder)
		if err != nil {
			return fmt.Errorf("creating event index: %w", err)
		}

		ctx := cmd.Context()
		store := calendar.NewStore(database)
		events, err := store.AllEvents(ctx)
		if err != nil {
			return fmt.Errorf("listing events: %w", err)
		}

		reporter := progress.NewReporter("Reindexing events")
		reporter.Start(len(events))
		for i, ev := range events {
			if err := reindexEvent(ctx, store, index, ev); err != nil {
				return fmt.Errorf("indexing event %s: %w", ev.ID, err)
			}
			reporter.Update(i+1, ev.Title)
		}
		reporter.Finish()

		indexDir := filepath.Join(cfg.DataDir, "vectordb")
		if err := index.Persist(ctx, indexDir); err != nil {
			return fmt.Errorf("persisting index: %w", err)
		}

		fmt.Printf("Indexed %d events into %s\n", len(events), indexDir)
		return nil
	},
}

// reindexEvent embeds one event, and additionally trains it when the
// scheduling optimizer would consider it: a raised priority or any
// preferred time ranges.
func reindexEvent(ctx context.Context, store *calendar.Store, index vectordb.EventIndex, ev *calendar.Event) error {
	doc := vectordb.EventDoc{
		EventID:   ev.ID,
		UserID:    ev.UserID,
		Title:     ev.Title,
		StartDate: ev.StartDate,
	}
	if err := index.IndexEvent(ctx, doc); err != nil {
		return err
	}

	train := ev.Priority > 1
	if !train {
		ranges, err := store.ListPreferredTimeRangesForEvent(ctx, ev.ID)
		if err != nil {
			return err
		}
		train = len(ranges) > 0
	}
	if train {
		return index.TrainEvent(ctx, doc)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}
