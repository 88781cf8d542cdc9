// Package config handles Amparo configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first, then the
// AMPARO_CONFIG environment variable.
// Then: ./amparo.yaml, ~/.config/amparo/amparo.yaml, /etc/amparo/amparo.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"amparo.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "amparo", "amparo.yaml"))
	}

	paths = append(paths, "/etc/amparo/amparo.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise AMPARO_CONFIG is honored, then DefaultSearchPaths is searched
// and the first existing path wins.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if env := os.Getenv("AMPARO_CONFIG"); env != "" {
		if _, err := os.Stat(env); err != nil {
			return "", fmt.Errorf("config file not found: %s (from AMPARO_CONFIG)", env)
		}
		return env, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all Amparo configuration.
type Config struct {
	Agent     AgentConfig     `yaml:"agent"`
	Inference ProviderConfig  `yaml:"inference"`
	Evaluator ProviderConfig  `yaml:"evaluator"`
	Embedding ProviderConfig  `yaml:"embedding"`
	Themes    ThemesConfig    `yaml:"themes"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Detector  DetectorConfig  `yaml:"detector"`
	DataDir   string          `yaml:"data_dir"`
	LogLevel  string          `yaml:"log_level"`
	// LogFormat selects the slog handler: "text" (default) or "json".
	LogFormat string `yaml:"log_format"`
}

// AgentConfig defines the agent's identity and conversation window.
type AgentConfig struct {
	// Name is the persona name used in prompts and logs.
	Name string `yaml:"name"`
	// HistoryLimit is how many recent messages feed each turn (default 12).
	HistoryLimit int `yaml:"history_limit"`
}

// ProviderConfig defines one model backend. The same shape serves
// inference, evaluation, and embedding; Provider selects the
// implementation (ollama, openai, gemini).
type ProviderConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
}

// ThemesConfig locates the pastoral theme library.
type ThemesConfig struct {
	// Dir holds one markdown file per theme; the filename is the theme ID.
	Dir string `yaml:"dir"`
	// Default is the theme used when classification returns an unknown ID.
	Default string `yaml:"default"`
}

// RetrievalConfig controls passage retrieval for prompt grounding.
type RetrievalConfig struct {
	Enabled bool `yaml:"enabled"`
	// Limit is the maximum passages injected per turn (default 3).
	Limit int `yaml:"limit"`
}

// DetectorConfig extends the built-in signal lexicons.
type DetectorConfig struct {
	// ExtraTerms maps signal names to additional lexicon terms, merged
	// with the built-in rules at startup.
	ExtraTerms map[string][]string `yaml:"extra_terms"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings every operation depends on. Missing
// required configuration fails here, at startup, never mid-turn.
func (c *Config) Validate() error {
	if c.Inference.Model == "" {
		return fmt.Errorf("inference.model is required")
	}
	if c.Inference.Provider == "" {
		return fmt.Errorf("inference.provider is required")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Themes.Dir == "" {
		return fmt.Errorf("themes.dir is required")
	}
	return nil
}

// EvaluatorOrInference returns the evaluator backend settings, falling
// back to the inference backend when no separate evaluator is configured.
func (c *Config) EvaluatorOrInference() ProviderConfig {
	ev := c.Evaluator
	if ev.Provider == "" {
		ev.Provider = c.Inference.Provider
	}
	if ev.Model == "" {
		ev.Model = c.Inference.Model
	}
	if ev.BaseURL == "" {
		ev.BaseURL = c.Inference.BaseURL
	}
	if ev.APIKey == "" {
		ev.APIKey = c.Inference.APIKey
	}
	return ev
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Agent: AgentConfig{
			Name:         "Amparo",
			HistoryLimit: 12,
		},
		Inference: ProviderConfig{
			Provider: "ollama",
			Model:    "qwen3:4b",
			BaseURL:  "http://localhost:11434",
		},
		Embedding: ProviderConfig{
			Provider: "ollama",
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
		},
		Themes: ThemesConfig{
			Dir:     "themes",
			Default: "acolhimento",
		},
		Retrieval: RetrievalConfig{
			Enabled: true,
			Limit:   3,
		},
		DataDir:  "data",
		LogLevel: "info",
	}
}
