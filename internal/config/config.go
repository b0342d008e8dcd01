package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Bland     BlandConfig     `yaml:"bland" mapstructure:"bland"`
	Calendar  CalendarConfig  `yaml:"calendar" mapstructure:"calendar"`
	Workflow  WorkflowConfig  `yaml:"workflow" mapstructure:"workflow"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures session persistence.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	Path   string `yaml:"path" mapstructure:"path"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// BlandConfig holds Bland voice-call API settings.
type BlandConfig struct {
	Key           string  `yaml:"key" mapstructure:"key"`
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	Voice         string  `yaml:"voice" mapstructure:"voice"`
	Language      string  `yaml:"language" mapstructure:"language"`
	Record        bool    `yaml:"record" mapstructure:"record"`
	ReduceLatency bool    `yaml:"reduce_latency" mapstructure:"reduce_latency"`
	AMD           bool    `yaml:"amd" mapstructure:"amd"`
	RateLimit     float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// CalendarConfig holds Google Calendar credential paths and the target
// calendar.
type CalendarConfig struct {
	CredentialsPath string `yaml:"credentials_path" mapstructure:"credentials_path"`
	TokenPath       string `yaml:"token_path" mapstructure:"token_path"`
	CalendarID      string `yaml:"calendar_id" mapstructure:"calendar_id"`
}

// WorkflowConfig bounds the wait for call completion.
type WorkflowConfig struct {
	CallTimeoutSecs  int `yaml:"call_timeout_secs" mapstructure:"call_timeout_secs"`
	PollInitialSecs  int `yaml:"poll_initial_secs" mapstructure:"poll_initial_secs"`
	PollCapSecs      int `yaml:"poll_cap_secs" mapstructure:"poll_cap_secs"`
	SessionListLimit int `yaml:"session_list_limit" mapstructure:"session_list_limit"`
}

// CallTimeout returns the bounded wait for a call to reach a terminal state.
func (w WorkflowConfig) CallTimeout() time.Duration {
	return time.Duration(w.CallTimeoutSecs) * time.Second
}

// PollInitial returns the first poll interval.
func (w WorkflowConfig) PollInitial() time.Duration {
	return time.Duration(w.PollInitialSecs) * time.Second
}

// PollCap returns the maximum poll interval.
func (w WorkflowConfig) PollCap() time.Duration {
	return time.Duration(w.PollCapSecs) * time.Second
}

// ServerConfig configures the HTTP surface.
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
	v.SetDefault("store.path", "outreach.db")
	// Empty defaults register the secret keys with viper so env values
	// reach Unmarshal.
	v.SetDefault("anthropic.key", "")
	v.SetDefault("bland.key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("bland.base_url", "https://api.bland.ai/v1")
	v.SetDefault("bland.voice", "mason")
	v.SetDefault("bland.language", "eng")
	v.SetDefault("bland.record", true)
	v.SetDefault("bland.reduce_latency", true)
	v.SetDefault("bland.amd", true)
	v.SetDefault("bland.rate_limit", 1.0)
	// The calendar is optional: empty paths mean no client is built and
	// scheduling reports the missing precondition.
	v.SetDefault("calendar.credentials_path", "")
	v.SetDefault("calendar.token_path", "")
	v.SetDefault("calendar.calendar_id", "primary")
	v.SetDefault("workflow.call_timeout_secs", 600)
	v.SetDefault("workflow.poll_initial_secs", 5)
	v.SetDefault("workflow.poll_cap_secs", 30)
	v.SetDefault("workflow.session_list_limit", 50)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
