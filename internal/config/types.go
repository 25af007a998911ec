package config

import "time"

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
)

// Config is the top-level calpilot configuration, corresponding to .calpilot.yml.
type Config struct {
	Provider       ProviderType `yaml:"provider" koanf:"provider"`
	Model          string       `yaml:"model" koanf:"model"`
	EmbeddingModel string       `yaml:"embedding_model" koanf:"embedding_model"`
	DataDir        string       `yaml:"data_dir" koanf:"data_dir"`
	Port           int          `yaml:"port" koanf:"port"`
	Timezone       string       `yaml:"timezone" koanf:"timezone"`

	// Timeouts guard the sequential external calls a single turn makes.
	CallTimeoutSeconds int `yaml:"call_timeout_seconds" koanf:"call_timeout_seconds"`
	TurnTimeoutSeconds int `yaml:"turn_timeout_seconds" koanf:"turn_timeout_seconds"`
}

// CallTimeout is the deadline applied to each external call.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSeconds) * time.Second
}

// TurnTimeout is the overall deadline for processing one conversation turn.
func (c *Config) TurnTimeout() time.Duration {
	return time.Duration(c.TurnTimeoutSeconds) * time.Second
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:           ProviderOpenAI,
		Model:              "gpt-4o",
		EmbeddingModel:     "text-embedding-3-small",
		DataDir:            "data",
		Port:               8390,
		Timezone:           "UTC",
		CallTimeoutSeconds: 30,
		TurnTimeoutSeconds: 120,
	}
}
