package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSupabase = "supabase"
	DriverMemory   = "memory"

	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

type Config struct {
	Telegram struct {
		Token       string `mapstructure:"token"`
		Debug       bool   `mapstructure:"debug"`
		PollTimeout int    `mapstructure:"poll_timeout"`
		WebhookURL  string `mapstructure:"webhook_url"`
		ListenAddr  string `mapstructure:"listen_addr"`
	} `mapstructure:"telegram"`

	Storage struct {
		Driver string `mapstructure:"driver"`
	} `mapstructure:"storage"`

	Supabase struct {
		URL string `mapstructure:"url"`
		Key string `mapstructure:"key"`
	} `mapstructure:"supabase"`

	Interpreter struct {
		Provider  string        `mapstructure:"provider"`
		Model     string        `mapstructure:"model"`
		APIKey    string        `mapstructure:"api_key"`
		OllamaURL string        `mapstructure:"ollama_url"`
		Timeout   time.Duration `mapstructure:"timeout"`
	} `mapstructure:"interpreter"`

	Engine struct {
		AmbiguousTermsFile       string `mapstructure:"ambiguous_terms_file"`
		UnspecifiedPaymentMethod string `mapstructure:"unspecified_payment_method"`
	} `mapstructure:"engine"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

// legacyEnv - старые имена переменных окружения, которые продолжают работать
var legacyEnv = map[string]string{
	"telegram.token":         "TELEGRAM_BOT_TOKEN",
	"supabase.url":           "SUPABASE_URL",
	"supabase.key":           "SUPABASE_KEY",
	"interpreter.api_key":    "GOOGLE_API_KEY",
	"interpreter.model":      "GEMINI_MODEL",
	"interpreter.ollama_url": "OLLAMA_API_URL",
}

var keys = []string{
	"telegram.token", "telegram.debug", "telegram.poll_timeout", "telegram.webhook_url", "telegram.listen_addr",
	"storage.driver",
	"supabase.url", "supabase.key",
	"interpreter.provider", "interpreter.model", "interpreter.api_key", "interpreter.ollama_url", "interpreter.timeout",
	"engine.ambiguous_terms_file", "engine.unspecified_payment_method",
	"log.level", "log.format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.poll_timeout", 60)
	v.SetDefault("telegram.listen_addr", ":8080")
	v.SetDefault("storage.driver", DriverSupabase)
	v.SetDefault("interpreter.provider", ProviderGemini)
	v.SetDefault("interpreter.ollama_url", "http://localhost:11434")
	v.SetDefault("interpreter.timeout", "30s")
	v.SetDefault("engine.unspecified_payment_method", "NaoInformado")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load читает .env (если есть), файл конфигурации и переменные окружения.
// Пустой configFile означает поиск config.yaml в стандартных каталогах.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FINBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		envs := []string{"FINBOT_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}
		if legacy, ok := legacyEnv[key]; ok {
			envs = append(envs, legacy)
		}
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.financial_bot")
		v.AddConfigPath("/etc/financial_bot")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyProviderDefaults()
	return &cfg, nil
}

func (c *Config) applyProviderDefaults() {
	if c.Interpreter.Model != "" {
		return
	}
	switch c.Interpreter.Provider {
	case ProviderOllama:
		c.Interpreter.Model = "llama3"
	default:
		c.Interpreter.Model = "gemini-1.5-flash"
	}
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	var errs []error

	if c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram.token is required"))
	}

	switch c.Storage.Driver {
	case DriverSupabase:
		if c.Supabase.URL == "" || c.Supabase.Key == "" {
			errs = append(errs, errors.New("supabase.url and supabase.key are required for the supabase driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}

	switch c.Interpreter.Provider {
	case ProviderGemini:
		if c.Interpreter.APIKey == "" {
			errs = append(errs, errors.New("interpreter.api_key is required for gemini"))
		}
	case ProviderOllama:
		if c.Interpreter.OllamaURL == "" {
			errs = append(errs, errors.New("interpreter.ollama_url is required for ollama"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown interpreter.provider %q", c.Interpreter.Provider))
	}

	if c.Interpreter.Timeout <= 0 {
		errs = append(errs, errors.New("interpreter.timeout must be positive"))
	}

	return errors.Join(errs...)
}
