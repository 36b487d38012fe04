package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Broker     BrokerConfig     `yaml:"broker" mapstructure:"broker"`
	AI         AIConfig         `yaml:"ai" mapstructure:"ai"`
	Enrich     EnrichConfig     `yaml:"enrich" mapstructure:"enrich"`
	Discovery  DiscoveryConfig  `yaml:"discovery" mapstructure:"discovery"`
	Automation AutomationConfig `yaml:"automation" mapstructure:"automation"`
	Engage     EngageConfig     `yaml:"engage" mapstructure:"engage"`
	Browser    BrowserConfig    `yaml:"browser" mapstructure:"browser"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	StatusDir   string `yaml:"status_dir" mapstructure:"status_dir"`
}

// BrokerConfig holds key/model broker settings.
type BrokerConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Token   string `yaml:"token" mapstructure:"token"`
}

// AIConfig configures message generation.
type AIConfig struct {
	Enabled       bool   `yaml:"enabled" mapstructure:"enabled"`
	Model         string `yaml:"model" mapstructure:"model"`
	SampleMessage string `yaml:"sample_message" mapstructure:"sample_message"`
	OpenAIBaseURL string `yaml:"openai_base_url" mapstructure:"openai_base_url"`
	PerplexityURL string `yaml:"perplexity_base_url" mapstructure:"perplexity_base_url"`
}

// EnrichConfig holds contact-enrichment API settings.
type EnrichConfig struct {
	Enabled       bool    `yaml:"enabled" mapstructure:"enabled"`
	Key           string  `yaml:"key" mapstructure:"key"`
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// DiscoveryConfig configures the lead discovery pipeline.
type DiscoveryConfig struct {
	TargetLeads      int    `yaml:"target_leads" mapstructure:"target_leads"`
	MaxPages         int    `yaml:"max_pages" mapstructure:"max_pages"`
	ProfileDelaySecs int    `yaml:"profile_delay_secs" mapstructure:"profile_delay_secs"`
	PageTimeoutSecs  int    `yaml:"page_timeout_secs" mapstructure:"page_timeout_secs"`
	MessageTemplate  string `yaml:"message_template" mapstructure:"message_template"`
	DefaultSource    string `yaml:"default_source" mapstructure:"default_source"`
}

// AutomationConfig configures the outbound messaging engine.
type AutomationConfig struct {
	MinDelaySecs     int `yaml:"min_delay_secs" mapstructure:"min_delay_secs"`
	MaxDelaySecs     int `yaml:"max_delay_secs" mapstructure:"max_delay_secs"`
	ComposerWaitSecs int `yaml:"composer_wait_secs" mapstructure:"composer_wait_secs"`
	PageTimeoutSecs  int `yaml:"page_timeout_secs" mapstructure:"page_timeout_secs"`
}

// EngageConfig configures the ICP engagement pipeline.
type EngageConfig struct {
	MaxEngagers      int    `yaml:"max_engagers" mapstructure:"max_engagers"`
	StallScrolls     int    `yaml:"stall_scrolls" mapstructure:"stall_scrolls"`
	ScrollDelaySecs  int    `yaml:"scroll_delay_secs" mapstructure:"scroll_delay_secs"`
	ConnectDelaySecs int    `yaml:"connect_delay_secs" mapstructure:"connect_delay_secs"`
	PresetPath       string `yaml:"preset_path" mapstructure:"preset_path"`
	FilterPreset     string `yaml:"filter_preset" mapstructure:"filter_preset"`
	ConnectionNote   string `yaml:"connection_note" mapstructure:"connection_note"`
}

// BrowserConfig points at the externally launched browser session.
type BrowserConfig struct {
	DevToolsURL   string `yaml:"devtools_url" mapstructure:"devtools_url"`
	LoginWaitSecs int    `yaml:"login_wait_secs" mapstructure:"login_wait_secs"`
}

// ServerConfig configures the status server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "outreach.db")
	v.SetDefault("store.status_dir", ".")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.perplexity_base_url", "https://api.perplexity.ai")
	v.SetDefault("enrich.base_url", "https://api.contactout.com/v1")
	v.SetDefault("enrich.rate_per_second", 0.5)
	v.SetDefault("discovery.target_leads", 25)
	v.SetDefault("discovery.max_pages", 40)
	v.SetDefault("discovery.profile_delay_secs", 3)
	v.SetDefault("discovery.page_timeout_secs", 30)
	v.SetDefault("discovery.default_source", "search")
	v.SetDefault("discovery.message_template", "Hi {firstName}, I came across your profile and would love to connect.")
	v.SetDefault("automation.min_delay_secs", 30)
	v.SetDefault("automation.max_delay_secs", 90)
	v.SetDefault("automation.composer_wait_secs", 10)
	v.SetDefault("automation.page_timeout_secs", 30)
	v.SetDefault("engage.max_engagers", 100)
	v.SetDefault("engage.stall_scrolls", 3)
	v.SetDefault("engage.scroll_delay_secs", 2)
	v.SetDefault("engage.connect_delay_secs", 15)
	v.SetDefault("engage.preset_path", "icp.yaml")
	v.SetDefault("engage.filter_preset", "default")
	v.SetDefault("browser.devtools_url", "http://localhost:9222")
	v.SetDefault("browser.login_wait_secs", 300)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
