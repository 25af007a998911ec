package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .calpilot.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to calpilot! Let's configure your assistant.")
	fmt.Println()

	defaults := DefaultConfig()

	// 1. Chat model.
	modelPrompt := promptui.Prompt{
		Label:   "OpenAI chat model",
		Default: defaults.Model,
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	// 2. Embedding model.
	embeddingPrompt := promptui.Select{
		Label: "Embedding model for event search",
		Items: []string{"text-embedding-3-small", "text-embedding-3-large"},
	}
	_, embeddingModel, err := embeddingPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding model: %w", err)
	}

	// 3. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory (database and event index)",
		Default: defaults.DataDir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 4. HTTP port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(defaults.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("port must be a number between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	port, _ := strconv.Atoi(portStr)

	// 5. Timezone.
	tzPrompt := promptui.Prompt{
		Label:   "Timezone (IANA name)",
		Default: defaults.Timezone,
		Validate: func(s string) error {
			if _, err := time.LoadLocation(s); err != nil {
				return fmt.Errorf("unknown timezone %q", s)
			}
			return nil
		},
	}
	timezone, err := tzPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}

	cfg := &Config{
		Provider:           ProviderOpenAI,
		Model:              model,
		EmbeddingModel:     embeddingModel,
		DataDir:            dataDir,
		Port:               port,
		Timezone:           timezone,
		CallTimeoutSeconds: defaults.CallTimeoutSeconds,
		TurnTimeoutSeconds: defaults.TurnTimeoutSeconds,
	}

	// Check for API key.
	envVar := APIKeyEnvVar(cfg.Provider)
	if envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running calpilot serve.\n", envVar)
	}

	configPath := ".calpilot.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}
