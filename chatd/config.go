package chatd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	glog "github.com/goliatone/go-logger/glog"
)

// Duration is a time.Duration that unmarshals from either a duration
// string ("30s") or a bare number of seconds.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case float64:
		*d = Duration(time.Duration(t * float64(time.Second)))
		return nil
	case string:
		parsed, err := time.ParseDuration(t)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", t, err)
		}
		*d = Duration(parsed)
		return nil
	default:
		return fmt.Errorf("invalid duration value %v", v)
	}
}

// LLMConfig configures the upstream completion endpoint.
type LLMConfig struct {
	BaseURL string   `json:"base_url"`
	APIKey  string   `json:"api_key"`
	Models  []string `json:"models"`
	Timeout Duration `json:"timeout"`
}

func (l LLMConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.BaseURL, validation.Required.When(l.APIKey != "")),
		validation.Field(&l.Models, validation.Required.When(l.APIKey != "")),
	)
}

// RateLimitConfig configures the per-client request budget.
type RateLimitConfig struct {
	Enabled   bool `json:"enabled"`
	PerMinute int  `json:"per_minute"`
}

func (r RateLimitConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PerMinute, validation.When(r.Enabled, validation.Required, validation.Min(1))),
	)
}

// Config is the chatmarkd configuration. Sources layer in order: defaults,
// optional JSON file, CHATMARKD_* environment, then flags.
type Config struct {
	Addr      string          `json:"addr"`
	RedisURL  string          `json:"redis_url"`
	LLM       LLMConfig       `json:"llm"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	LogLevel  string          `json:"log_level"`
	LogJSON   bool            `json:"log_json"`
}

func DefaultConfig() Config {
	return Config{
		Addr: ":8080",
		LLM: LLMConfig{
			BaseURL: "https://generativelanguage.googleapis.com/v1beta/openai",
			Models:  []string{"gemini-2.0-flash", "gemini-1.5-pro", "gemini-1.0-pro"},
			Timeout: Duration(defaultAttemptTimeout),
		},
		RateLimit: RateLimitConfig{Enabled: true, PerMinute: 60},
		LogLevel:  "info",
	}
}

// LoadConfig builds a Config from defaults, the optional JSON file at path,
// and the environment. Flag overlays and validation are the caller's job.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("CHATMARKD_ADDR"); ok {
		c.Addr = v
	}
	if v, ok := os.LookupEnv("CHATMARKD_REDIS_URL"); ok {
		c.RedisURL = v
	}
	if v, ok := os.LookupEnv("CHATMARKD_LLM_BASE_URL"); ok {
		c.LLM.BaseURL = v
	}
	if v, ok := os.LookupEnv("CHATMARKD_LLM_API_KEY"); ok {
		c.LLM.APIKey = v
	}
	if v, ok := os.LookupEnv("CHATMARKD_LLM_MODELS"); ok {
		c.LLM.Models = splitModels(v)
	}
	if v, ok := os.LookupEnv("CHATMARKD_LLM_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: parse CHATMARKD_LLM_TIMEOUT: %w", err)
		}
		c.LLM.Timeout = Duration(parsed)
	}
	if v, ok := os.LookupEnv("CHATMARKD_RATE_LIMIT_ENABLED"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: parse CHATMARKD_RATE_LIMIT_ENABLED: %w", err)
		}
		c.RateLimit.Enabled = parsed
	}
	if v, ok := os.LookupEnv("CHATMARKD_RATE_LIMIT_PER_MINUTE"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: parse CHATMARKD_RATE_LIMIT_PER_MINUTE: %w", err)
		}
		c.RateLimit.PerMinute = parsed
	}
	if v, ok := os.LookupEnv("CHATMARKD_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv("CHATMARKD_LOG_JSON"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: parse CHATMARKD_LOG_JSON: %w", err)
		}
		c.LogJSON = parsed
	}
	return nil
}

func splitModels(v string) []string {
	parts := strings.Split(v, ",")
	models := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			models = append(models, trimmed)
		}
	}
	return models
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.LLM),
		validation.Field(&c.RateLimit),
		validation.Field(&c.LogLevel, validation.In("trace", "debug", "info", "warn", "error", "fatal")),
	)
}

// Redacted returns a copy safe for printing: the API key is masked.
func (c Config) Redacted() Config {
	if c.LLM.APIKey != "" {
		c.LLM.APIKey = "********"
	}
	return c
}

// NewLogger builds the root logger described by LogLevel and LogJSON.
func (c Config) NewLogger() *glog.BaseLogger {
	opts := []glog.Option{}
	if level := glogLevel(c.LogLevel); level != "" {
		opts = append(opts, glog.WithLevel(level))
	}
	if c.LogJSON {
		opts = append(opts, glog.WithLoggerTypeJSON())
	} else {
		opts = append(opts, glog.WithLoggerTypeConsole())
	}
	return glog.NewLogger(opts...)
}

func glogLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return glog.Trace
	case "debug":
		return glog.Debug
	case "info":
		return glog.Info
	case "warn", "warning":
		return glog.Warn
	case "error":
		return glog.Error
	case "fatal":
		return glog.Fatal
	default:
		return ""
	}
}

func quietLogger() glog.Logger {
	return glog.NewLogger(glog.WithLevel(glog.Error), glog.WithLoggerTypeConsole())
}
