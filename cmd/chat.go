package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cal-pilot/internal/calendar"
	"github.com/ziadkadry99/cal-pilot/internal/conferencing"
	"github.com/ziadkadry99/cal-pilot/internal/contacts"
	"github.com/ziadkadry99/cal-pilot/internal/db"
	"github.com/ziadkadry99/cal-pilot/internal/dialogue"
	"github.com/ziadkadry99/cal-pilot/internal/skills"
	"github.com/ziadkadry99/cal-pilot/internal/skills/editevent"
	"github.com/ziadkadry99/cal-pilot/internal/skills/removepreferred"
	"github.com/ziadkadry99/cal-pilot/internal/vectordb"
)

var chatSeed bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the calendar assistant in the terminal",
	Long: `Runs an interactive chat session against an in-memory calendar.
With --seed, the calendar starts with a few demo events and contacts so
you can try instructions like "move my standup to thursday at 2pm".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		extractor, err := createExtractorFromConfig(cfg)
		if err != nil {
			return err
		}

		tz, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return fmt.Errorf("loading timezone: %w", err)
		}

		database, err := db.OpenMemory()
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		index := vectordb.NewMemoryIndex()
		deps := &skills.Deps{
			Store:    calendar.NewStore(database),
			Contacts: contacts.NewStore(database),
			Index:    index,
			Calendar: calendar.NewFakeProvider(),
			Conferencing: map[calendar.ConferenceApp]conferencing.Provider{
				calendar.AppGoogle: conferencing.NewFakeProvider(),
				calendar.AppZoom:   conferencing.NewFakeProvider(),
			},
			Extractor:   extractor,
			Timezone:    tz,
			CallTimeout: cfg.CallTimeout(),
			TurnTimeout: cfg.TurnTimeout(),
		}

		userID := "local"
		if chatSeed {
			if err := seedDemoCalendar(cmd.Context(), deps, userID); err != nil {
				return fmt.Errorf("seeding demo calendar: %w", err)
			}
			fmt.Println("Seeded demo calendar: weekly standup, design review, lunch with Ana.")
		}

		hub, err := buildHub(deps)
		if err != nil {
			return err
		}

		skillPrompt := promptui.Select{
			Label: "Select skill",
			Items: []string{editevent.Name, removepreferred.Name},
		}
		_, skill, err := skillPrompt.Run()
		if err != nil {
			return fmt.Errorf("skill selection: %w", err)
		}

		fmt.Println("Type your instruction, or \"exit\" to quit.")
		return chatLoop(cmd.Context(), hub, userID, skill)
	},
}

func chatLoop(ctx context.Context, hub *skills.Hub, userID, skill string) error {
	conversationID := ""
	for {
		input := promptui.Prompt{Label: "you"}
		line, err := input.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		id, action, err := hub.Process(ctx, conversationID, userID, skill, line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		conversationID = id

		fmt.Printf("assistant: %s\n", action.Reply)
		if action.Status != dialogue.StatusMissingFields {
			// The request is settled either way; the next message
			// starts a new one.
			conversationID = ""
		}
	}
}

// seedDemoCalendar fills the in-memory calendar with a few events and
// contacts so the skills have something to work with.
func seedDemoCalendar(ctx context.Context, deps *skills.Deps, userID string) error {
	now := time.Now().In(deps.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monday := today.AddDate(0, 0, (int(time.Monday-now.Weekday())+7)%7)

	events := []*calendar.Event{
		demoEvent(userID, "weekly standup", monday.Add(9*time.Hour+30*time.Minute), 30),
		demoEvent(userID, "design review", monday.AddDate(0, 0, 2).Add(14*time.Hour), 60),
		demoEvent(userID, "lunch with Ana", monday.AddDate(0, 0, 3).Add(12*time.Hour), 60),
	}
	if err := deps.Store.UpsertEvents(ctx, events); err != nil {
		return err
	}
	for _, ev := range events {
		err := deps.Index.IndexEvent(ctx, vectordb.EventDoc{
			EventID:   ev.ID,
			UserID:    ev.UserID,
			Title:     ev.Title,
			StartDate: ev.StartDate,
		})
		if err != nil {
			return err
		}
	}

	return deps.Contacts.Upsert(ctx, &contacts.Contact{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   "Ana Silva",
		Emails: []calendar.EmailEntry{{Primary: true, Value: "ana@example.com"}},
	})
}

func demoEvent(userID, title string, start time.Time, minutes int) *calendar.Event {
	return &calendar.Event{
		ID:         uuid.NewString(),
		UserID:     userID,
		CalendarID: "primary",
		Title:      title,
		StartDate:  start,
		EndDate:    start.Add(time.Duration(minutes) * time.Minute),
		Duration:   minutes,
		Timezone:   start.Location().String(),
		Priority:   1,
		Modifiable: true,
	}
}

func init() {
	chatCmd.Flags().BoolVar(&chatSeed, "seed", false, "start with a demo calendar")
	rootCmd.AddCommand(chatCmd)
}
