package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ziadkadry99/cal-pilot/internal/audit"
	"github.com/ziadkadry99/cal-pilot/internal/calendar"
	"github.com/ziadkadry99/cal-pilot/internal/conferencing"
	"github.com/ziadkadry99/cal-pilot/internal/config"
	"github.com/ziadkadry99/cal-pilot/internal/contacts"
	"github.com/ziadkadry99/cal-pilot/internal/db"
	"github.com/ziadkadry99/cal-pilot/internal/embeddings"
	"github.com/ziadkadry99/cal-pilot/internal/extraction"
	"github.com/ziadkadry99/cal-pilot/internal/llm"
	"github.com/ziadkadry99/cal-pilot/internal/skills"
	"github.com/ziadkadry99/cal-pilot/internal/skills/editevent"
	"github.com/ziadkadry99/cal-pilot/internal/skills/removepreferred"
	"github.com/ziadkadry99/cal-pilot/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `calpilot init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable is required for embeddings", config.APIKeyEnvVar(config.ProviderOpenAI))
	}
	return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel)), nil
}

// createExtractorFromConfig creates the LLM-backed extraction engine.
func createExtractorFromConfig(cfg *config.Config) (extraction.Extractor, error) {
	apiKey := os.Getenv(config.APIKeyEnvVar(cfg.Provider))
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable is required", config.APIKeyEnvVar(cfg.Provider))
	}
	provider := llm.NewOpenAIProvider(apiKey, cfg.Model)
	return extraction.NewLLMExtractor(provider), nil
}

// openIndex creates the persistent event index and loads any saved state.
func openIndex(cfg *config.Config, embedder embeddings.Embedder) (vectordb.EventIndex, error) {
	index, err := vectordb.NewChromemIndex(embedder)
	if err != nil {
		return nil, fmt.Errorf("creating event index: %w", err)
	}

	indexDir := filepath.Join(cfg.DataDir, "vectordb")
	if err := index.Load(context.Background(), indexDir); err != nil {
		// An empty index is fine on first run.
		fmt.Fprintf(os.Stderr, "Warning: could not load event index from %s: %v\n", indexDir, err)
	}
	return index, nil
}

// buildDeps wires the full skill dependency set from config: SQLite
// stores, the event index, the extraction engine and the in-process
// calendar and conferencing providers.
func buildDeps(cfg *config.Config) (*skills.Deps, *db.DB, vectordb.EventIndex, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, nil, nil, fmt.Errorf("creating data dir: %w", err)
	}

	database, err := db.Open(filepath.Join(cfg.DataDir, "calpilot.db"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening database: %w", err)
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		database.Close()
		return nil, nil, nil, err
	}

	index, err := openIndex(cfg, embedder)
	if err != nil {
		database.Close()
		return nil, nil, nil, err
	}

	extractor, err := createExtractorFromConfig(cfg)
	if err != nil {
		database.Close()
		return nil, nil, nil, err
	}

	tz, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		database.Close()
		return nil, nil, nil, fmt.Errorf("loading timezone: %w", err)
	}

	var logger *log.Logger
	if verbose {
		logger = log.New(os.Stderr, "skills: ", log.LstdFlags)
	}

	deps := &skills.Deps{
		Audit:    audit.NewStore(database),
		Store:    calendar.NewStore(database),
		Contacts: contacts.NewStore(database),
		Index:    index,
		Calendar: calendar.NewFakeProvider(),
		Conferencing: map[calendar.ConferenceApp]conferencing.Provider{
			calendar.AppGoogle: conferencing.NewFakeProvider(),
			calendar.AppZoom:   conferencing.NewFakeProvider(),
		},
		Extractor:   extractor,
		Logger:      logger,
		Timezone:    tz,
		CallTimeout: cfg.CallTimeout(),
		TurnTimeout: cfg.TurnTimeout(),
	}
	return deps, database, index, nil
}

// buildHub registers every skill on a fresh hub.
func buildHub(deps *skills.Deps) (*skills.Hub, error) {
	hub := skills.NewHub()

	edit, err := editevent.New(deps)
	if err != nil {
		return nil, fmt.Errorf("loading edit event skill: %w", err)
	}
	hub.Register(editevent.Name, edit)

	remove, err := removepreferred.New(deps)
	if err != nil {
		return nil, fmt.Errorf("loading remove preferred times skill: %w", err)
	}
	hub.Register(removepreferred.Name, remove)

	return hub, nil
}
