package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	StoreDriver string `mapstructure:"STORE_DRIVER"`
	DBPath      string `mapstructure:"DB_PATH"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	AIProvider string        `mapstructure:"AI_PROVIDER"`
	AIBaseURL  string        `mapstructure:"OPENROUTER_BASE_URL"`
	AIAPIKey   string        `mapstructure:"OPENROUTER_API_KEY"`
	AIModel    string        `mapstructure:"OPENROUTER_MODEL"`
	AITimeout  time.Duration `mapstructure:"AI_TIMEOUT"`
	SiteURL    string        `mapstructure:"SITE_URL"`
	SiteName   string        `mapstructure:"SITE_NAME"`

	ChatTemperature       float64 `mapstructure:"CHAT_TEMPERATURE"`
	ChatMaxTokens         int     `mapstructure:"CHAT_MAX_TOKENS"`
	ExtractionTemperature float64 `mapstructure:"EXTRACTION_TEMPERATURE"`
	ExtractionMaxTokens   int     `mapstructure:"EXTRACTION_MAX_TOKENS"`
	SummaryTemperature    float64 `mapstructure:"SUMMARY_TEMPERATURE"`
	SummaryMaxTokens      int     `mapstructure:"SUMMARY_MAX_TOKENS"`
}

const (
	StoreJSON     = "json"
	StorePostgres = "postgres"

	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.AIProvider = strings.ToLower(strings.TrimSpace(cfg.AIProvider))
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8001")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("REQUEST_TIMEOUT", "60s")

	v.SetDefault("STORE_DRIVER", StoreJSON)
	v.SetDefault("DB_PATH", "database/local_db.json")
	v.SetDefault("DATABASE_URL", "")

	v.SetDefault("AI_PROVIDER", ProviderOpenRouter)
	v.SetDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1")
	v.SetDefault("OPENROUTER_API_KEY", "")
	v.SetDefault("OPENROUTER_MODEL", "openai/gpt-oss-120b:free")
	v.SetDefault("AI_TIMEOUT", "30s")
	v.SetDefault("SITE_URL", "https://github.com/aselo_helpline/backend")
	v.SetDefault("SITE_NAME", "Aselo Backend")

	// chat keeps conversational randomness; extraction is a parsing task
	v.SetDefault("CHAT_TEMPERATURE", 0.7)
	v.SetDefault("CHAT_MAX_TOKENS", 1000)
	v.SetDefault("EXTRACTION_TEMPERATURE", 0.1)
	v.SetDefault("EXTRACTION_MAX_TOKENS", 2000)
	v.SetDefault("SUMMARY_TEMPERATURE", 0.3)
	v.SetDefault("SUMMARY_MAX_TOKENS", 600)
}

// Validate reports configuration that would make a capability unusable.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreJSON:
		if strings.TrimSpace(c.DBPath) == "" {
			return errors.New("DB_PATH is required for the json store")
		}
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return errors.New("STORE_DRIVER must be one of: json, postgres")
	}

	switch c.AIProvider {
	case ProviderMock:
	case ProviderOpenRouter:
		if strings.TrimSpace(c.AIAPIKey) == "" {
			return errors.New("OPENROUTER_API_KEY is required for the openrouter provider")
		}
	default:
		return errors.New("AI_PROVIDER must be one of: openrouter, mock")
	}

	if c.AITimeout <= 0 {
		return errors.New("AI_TIMEOUT must be positive")
	}
	return nil
}
