package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	oerrors "offerletter/internal/errors"
)

// Environment variables that override the source paths of a loaded config.
const (
	EnvRoster       = "OFFERLETTER_ROSTER"
	EnvLeavePolicy  = "OFFERLETTER_LEAVE_POLICY"
	EnvTravelPolicy = "OFFERLETTER_TRAVEL_POLICY"
)

// SourcesConfig names the roster and the two policy documents.
type SourcesConfig struct {
	Roster       string `yaml:"roster"`
	LeavePolicy  string `yaml:"leave_policy"`
	TravelPolicy string `yaml:"travel_policy"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string                `yaml:"type"`
	Dimension int                   `yaml:"dimension"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how policy documents are split into chunks.
type ChunkerConfig struct {
	Type    string `yaml:"type"`
	Size    int    `yaml:"size"`
	Overlap int    `yaml:"overlap"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RetrievalConfig tunes the per-request policy lookup.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// OutputConfig controls where downloaded letters are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// WatchConfig enables re-ingestion when a source file changes.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMs int  `yaml:"debounce_ms"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Sources     SourcesConfig     `yaml:"sources"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Output      OutputConfig      `yaml:"output"`
	Watch       WatchConfig       `yaml:"watch"`
}

// Load reads a config from path. A missing file yields the defaults. Source
// paths may be overridden from the environment.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}
	cfg := AppConfig{Chunker: ChunkerConfig{Overlap: unsetOverlap}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, oerrors.NewConfig(fmt.Sprintf("parse %s: %v", path, err))
	}
	applyConfigDefaults(&cfg)
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/offerletter/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
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
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnv(cfg)
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

// Validate rejects settings no component can run with.
func (c *AppConfig) Validate() error {
	if c.Chunker.Size <= 0 {
		return oerrors.NewConfig(fmt.Sprintf("chunker.size must be positive, got %d", c.Chunker.Size))
	}
	if c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.Size {
		return oerrors.NewConfig(fmt.Sprintf("chunker.overlap must be in [0, %d), got %d", c.Chunker.Size, c.Chunker.Overlap))
	}
	if c.Chunker.Type != "window" {
		return oerrors.NewConfig(fmt.Sprintf("unknown chunker type %q", c.Chunker.Type))
	}
	switch c.Embedder.Type {
	case "hashing", "tfidf", "openai":
	default:
		return oerrors.NewConfig(fmt.Sprintf("unknown embedder type %q", c.Embedder.Type))
	}
	switch c.VectorStore.Type {
	case "memory":
	case "qdrant":
		if c.VectorStore.Qdrant == nil || c.VectorStore.Qdrant.URL == "" {
			return oerrors.NewConfig("vector_store.qdrant.url is required for the qdrant store")
		}
	default:
		return oerrors.NewConfig(fmt.Sprintf("unknown vector store type %q", c.VectorStore.Type))
	}
	if c.Retrieval.TopK < 0 {
		return oerrors.NewConfig("retrieval.top_k must not be negative")
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "offerletter", "config.yaml"), nil
}

// Default returns the configuration used when no file is present.
func Default() *AppConfig {
	return &AppConfig{
		Sources: SourcesConfig{
			Roster:       "Employee_List.csv",
			LeavePolicy:  "HR-Leave-Policy.md",
			TravelPolicy: "HR-Travel-Policy.txt",
		},
		Chunker:     ChunkerConfig{Type: "window", Size: 800, Overlap: 100},
		Embedder:    EmbedderConfig{Type: "hashing", Dimension: 384},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Retrieval:   RetrievalConfig{TopK: 6},
		Output:      OutputConfig{Dir: "offer_letters"},
		Watch:       WatchConfig{Enabled: false, DebounceMs: 500},
	}
}

// unsetOverlap marks a chunker.overlap the file did not mention, so an
// explicit 0 survives defaulting.
const unsetOverlap = math.MinInt

func applyConfigDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.Sources.Roster == "" {
		cfg.Sources.Roster = def.Sources.Roster
	}
	if cfg.Sources.LeavePolicy == "" {
		cfg.Sources.LeavePolicy = def.Sources.LeavePolicy
	}
	if cfg.Sources.TravelPolicy == "" {
		cfg.Sources.TravelPolicy = def.Sources.TravelPolicy
	}
	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = def.Chunker.Type
	}
	if cfg.Chunker.Size == 0 {
		cfg.Chunker.Size = def.Chunker.Size
	}
	if cfg.Chunker.Overlap == unsetOverlap {
		// Default overlap, capped at an eighth of the window.
		cfg.Chunker.Overlap = max(0, min(def.Chunker.Overlap, cfg.Chunker.Size/8))
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.MaxRetries == 0 {
			cfg.Embedder.OpenAI.MaxRetries = 3
		}
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = def.VectorStore.Type
	}
	if q := cfg.VectorStore.Qdrant; q != nil {
		if q.Collection == "" {
			q.Collection = "hr_policies"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 15
		}
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = def.Output.Dir
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = def.Watch.DebounceMs
	}
}

func applyEnv(cfg *AppConfig) {
	for _, o := range []struct {
		env string
		dst *string
	}{
		{EnvRoster, &cfg.Sources.Roster},
		{EnvLeavePolicy, &cfg.Sources.LeavePolicy},
		{EnvTravelPolicy, &cfg.Sources.TravelPolicy},
	} {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
}
