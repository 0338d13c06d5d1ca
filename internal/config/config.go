package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RetrievalConfig controls the retriever and context builder.
type RetrievalConfig struct {
	TopK            int `yaml:"top_k"`
	MaxContextChars int `yaml:"max_context_chars"`
}

// OpenAIAnswerConfig holds configuration for the OpenAI-compatible answer
// source.
type OpenAIAnswerConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKeyEnv  string `yaml:"api_key_env"`
	Model      string `yaml:"model"`
	MaxRetries int    `yaml:"max_retries"`
}

// AnswerConfig selects and configures the answer source implementation.
type AnswerConfig struct {
	Type        string              `yaml:"type"`
	TimeoutSecs int                 `yaml:"timeout_secs"`
	OpenAI      *OpenAIAnswerConfig `yaml:"openai,omitempty"`
}

// ReportConfig tunes regression comparison output.
type ReportConfig struct {
	WorstN    int     `yaml:"worst_n"`
	Tolerance float64 `yaml:"tolerance"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Retrieval  RetrievalConfig `yaml:"retrieval"`
	Answer     AnswerConfig    `yaml:"answer"`
	Report     ReportConfig    `yaml:"report"`
	ResultsDir string          `yaml:"results_dir"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/rageval/config.yaml.
// If neither exists, it writes defaults to ~/.config/rageval/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "rageval", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Retrieval:  RetrievalConfig{TopK: 3, MaxContextChars: 8000},
		Answer:     AnswerConfig{Type: "stub", TimeoutSecs: 60},
		Report:     ReportConfig{WorstN: 5, Tolerance: 0.01},
		ResultsDir: "results",
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Retrieval.MaxContextChars == 0 {
		cfg.Retrieval.MaxContextChars = 8000
	}
	if cfg.Answer.TimeoutSecs == 0 {
		cfg.Answer.TimeoutSecs = 60
	}
	if cfg.Report.WorstN == 0 {
		cfg.Report.WorstN = 5
	}
	if cfg.Report.Tolerance == 0 {
		cfg.Report.Tolerance = 0.01
	}
	if cfg.ResultsDir == "" {
		cfg.ResultsDir = "results"
	}
	if cfg.Answer.Type == "openai" && cfg.Answer.OpenAI != nil {
		if cfg.Answer.OpenAI.BaseURL == "" {
			cfg.Answer.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Answer.OpenAI.APIKeyEnv == "" {
			cfg.Answer.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Answer.OpenAI.MaxRetries == 0 {
			cfg.Answer.OpenAI.MaxRetries = 3
		}
	}
}
