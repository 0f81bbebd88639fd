package config

import (
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "FEEDSENTINEL_CONFIG"
	busURLEnv        = "BUS_URL"
	busEmbeddedEnv   = "BUS_EMBEDDED"
	classifierURLEnv = "CLASSIFIER_URL"
	historyPathEnv   = "HISTORY_DB_PATH"
	searchAPIKeyEnv  = "SEARCH_API_KEY"
	judgeAPIKeyEnv   = "JUDGE_API_KEY"
	judgeModelEnv    = "JUDGE_MODEL"
	visionAPIKeyEnv  = "VISION_API_KEY"
	mockModeEnv      = "MOCK_MODE"
	verifyAddrEnv    = "VERIFY_LISTEN_ADDR"
)

// Config holds high-level settings required across the binaries.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Bus        BusConfig        `yaml:"bus"`
	Source     SourceConfig     `yaml:"source"`
	Watcher    WatcherConfig    `yaml:"watcher"`
	Classifier ClassifierConfig `yaml:"classifier"`
	History    HistoryConfig    `yaml:"history"`
	Verify     VerifyConfig     `yaml:"verify"`
}

// LoggingConfig controls log verbosity and output shape.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// BusConfig describes the NATS connection shared by agent and daemon.
// When the embedded flag is on the daemon runs its own broker on Host:Port.
// The flag is a pointer so a config file can express false; unset means on.
type BusConfig struct {
	URL      string `yaml:"url"`
	Embedded *bool  `yaml:"embedded"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
}

// EmbeddedBroker reports whether the daemon should host its own broker.
func (b BusConfig) EmbeddedBroker() bool {
	if b.Embedded == nil {
		return true
	}
	return *b.Embedded
}

// SourceConfig selects the observer-event source driving the agent.
type SourceConfig struct {
	Driver  string            `yaml:"driver"`
	Options map[string]string `yaml:"options"`
}

// WatcherConfig tunes feed-item detection.
type WatcherConfig struct {
	ItemSelector        string  `yaml:"itemSelector"`
	VisibilityThreshold float64 `yaml:"visibilityThreshold"`
	SeenCacheSize       int     `yaml:"seenCacheSize"`
}

// ClassifierConfig points the relay daemon at the analysis backend.
type ClassifierConfig struct {
	URL string `yaml:"url"`
}

// HistoryConfig describes the local analysis log.
type HistoryConfig struct {
	Path  string `yaml:"path"`
	Limit int    `yaml:"limit"`
}

// VerifyConfig configures the classifier service binary.
type VerifyConfig struct {
	ListenAddr string       `yaml:"listenAddr"`
	MockMode   bool         `yaml:"mockMode"`
	Search     SearchConfig `yaml:"search"`
	Judge      JudgeConfig  `yaml:"judge"`
	Vision     VisionConfig `yaml:"vision"`
}

// SearchConfig defines how to reach the web search API.
type SearchConfig struct {
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"apiKey"`
	MaxResults int    `yaml:"maxResults"`
}

// JudgeConfig defines how to contact the LLM evaluating claims.
type JudgeConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// VisionConfig defines the image web-detection API.
type VisionConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(busURLEnv); v != "" {
		c.Bus.URL = v
	}

	if v := os.Getenv(busEmbeddedEnv); v != "" {
		embedded := strings.EqualFold(strings.TrimSpace(v), "true")
		c.Bus.Embedded = &embedded
	}

	if v := os.Getenv(classifierURLEnv); v != "" {
		c.Classifier.URL = v
	}

	if v := os.Getenv(historyPathEnv); v != "" {
		c.History.Path = v
	}

	if v := os.Getenv(searchAPIKeyEnv); v != "" {
		c.Verify.Search.APIKey = v
	}

	if v := os.Getenv(judgeAPIKeyEnv); v != "" {
		c.Verify.Judge.APIKey = v
	}

	if v := os.Getenv(judgeModelEnv); v != "" {
		c.Verify.Judge.Model = v
	}

	if v := os.Getenv(visionAPIKeyEnv); v != "" {
		c.Verify.Vision.APIKey = v
	}

	if v := os.Getenv(verifyAddrEnv); v != "" {
		c.Verify.ListenAddr = v
	}

	if v := os.Getenv(mockModeEnv); v != "" {
		c.Verify.MockMode = strings.EqualFold(strings.TrimSpace(v), "true")
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Bus.URL != "" {
		base.Bus.URL = override.Bus.URL
	}
	if override.Bus.Embedded != nil {
		base.Bus.Embedded = override.Bus.Embedded
	}
	if override.Bus.Host != "" {
		base.Bus.Host = override.Bus.Host
	}
	if override.Bus.Port != 0 {
		base.Bus.Port = override.Bus.Port
	}

	if override.Source.Driver != "" {
		base.Source.Driver = override.Source.Driver
	}
	if len(override.Source.Options) > 0 {
		base.Source.Options = override.Source.Options
	}

	if override.Watcher.ItemSelector != "" {
		base.Watcher.ItemSelector = override.Watcher.ItemSelector
	}
	if override.Watcher.VisibilityThreshold > 0 {
		base.Watcher.VisibilityThreshold = override.Watcher.VisibilityThreshold
	}
	if override.Watcher.SeenCacheSize > 0 {
		base.Watcher.SeenCacheSize = override.Watcher.SeenCacheSize
	}

	if override.Classifier.URL != "" {
		base.Classifier.URL = override.Classifier.URL
	}

	if override.History.Path != "" {
		base.History.Path = override.History.Path
	}
	if override.History.Limit > 0 {
		base.History.Limit = override.History.Limit
	}

	if override.Verify.ListenAddr != "" {
		base.Verify.ListenAddr = override.Verify.ListenAddr
	}
	if override.Verify.MockMode {
		base.Verify.MockMode = true
	}
	if override.Verify.Search.Endpoint != "" {
		base.Verify.Search.Endpoint = override.Verify.Search.Endpoint
	}
	if override.Verify.Search.APIKey != "" {
		base.Verify.Search.APIKey = override.Verify.Search.APIKey
	}
	if override.Verify.Search.MaxResults > 0 {
		base.Verify.Search.MaxResults = override.Verify.Search.MaxResults
	}
	if override.Verify.Judge.Endpoint != "" {
		base.Verify.Judge.Endpoint = override.Verify.Judge.Endpoint
	}
	if override.Verify.Judge.Model != "" {
		base.Verify.Judge.Model = override.Verify.Judge.Model
	}
	if override.Verify.Judge.APIKey != "" {
		base.Verify.Judge.APIKey = override.Verify.Judge.APIKey
	}
	if override.Verify.Vision.Endpoint != "" {
		base.Verify.Vision.Endpoint = override.Verify.Vision.Endpoint
	}
	if override.Verify.Vision.APIKey != "" {
		base.Verify.Vision.APIKey = override.Verify.Vision.APIKey
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Bus: BusConfig{
			URL:  "nats://127.0.0.1:4222",
			Host: "127.0.0.1",
			Port: 4222,
		},
		Source: SourceConfig{Driver: "bus", Options: map[string]string{}},
		Watcher: WatcherConfig{
			ItemSelector:        "article",
			VisibilityThreshold: 0.3,
			SeenCacheSize:       512,
		},
		Classifier: ClassifierConfig{URL: "http://127.0.0.1:8090"},
		History:    HistoryConfig{Path: "feedsentinel.db", Limit: 50},
		Verify: VerifyConfig{
			ListenAddr: ":8090",
			MockMode:   false,
			Search: SearchConfig{
				Endpoint:   "https://api.search.brave.com/res/v1/web/search",
				APIKey:     "",
				MaxResults: 5,
			},
			Judge: JudgeConfig{
				Endpoint: "https://api.openai.com/v1/chat/completions",
				Model:    "gpt-4o-mini",
				APIKey:   "",
			},
			Vision: VisionConfig{
				Endpoint: "https://vision.googleapis.com/v1/images:annotate",
				APIKey:   "",
			},
		},
	}
}
