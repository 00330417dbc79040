package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

var validate = validator.New()

// QuoteConfig holds the default option parameters priced when the caller
// does not supply their own. An empty Type means "price both call and put".
type QuoteConfig struct {
	Spot       float64 `yaml:"spot"`
	Strike     float64 `yaml:"strike"`
	Expiry     float64 `yaml:"expiry"`
	Rate       float64 `yaml:"rate"`
	Volatility float64 `yaml:"volatility"`
	Type       string  `yaml:"type"`
}

// Types resolves the configured option type. An empty type selects both
// variants, call first.
func (q QuoteConfig) Types() ([]pricing.OptionType, error) {
	if strings.TrimSpace(q.Type) == "" {
		return []pricing.OptionType{pricing.Call, pricing.Put}, nil
	}
	t, err := pricing.ParseOptionType(q.Type)
	if err != nil {
		return nil, err
	}
	return []pricing.OptionType{t}, nil
}

// OptionQuote builds the pricer input for one option type.
func (q QuoteConfig) OptionQuote(t pricing.OptionType) pricing.OptionQuote {
	return pricing.OptionQuote{
		Spot:         q.Spot,
		Strike:       q.Strike,
		TimeToExpiry: q.Expiry,
		RiskFreeRate: q.Rate,
		Volatility:   q.Volatility,
		Type:         t,
	}
}

// OutputConfig represents report rendering configuration
type OutputConfig struct {
	Format string `yaml:"format" validate:"oneof=text json csv"`
}

// ServerConfig represents REST mode configuration
type ServerConfig struct {
	Listen string `yaml:"listen" validate:"required"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Verbosity int  `yaml:"verbosity" validate:"min=0,max=3"`
	JSON      bool `yaml:"json"`
}

type Config struct {
	Quote   QuoteConfig   `yaml:"quote"`
	Output  OutputConfig  `yaml:"output"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// Default returns the configuration used when no file or environment
// overrides are present: the at-the-money one year example.
func Default() *Config {
	return &Config{
		Quote: QuoteConfig{
			Spot:       100,
			Strike:     100,
			Expiry:     1,
			Rate:       0.05,
			Volatility: 0.2,
		},
		Output:  OutputConfig{Format: "text"},
		Server:  ServerConfig{Listen: ":8080"},
		Logging: LoggingConfig{Verbosity: 1},
	}
}

// Load builds the configuration in layers: defaults, then the YAML file at
// path (skipped when path is empty), then PRICER_* / LOG_* environment
// variables. The result is not validated: callers layer their own overrides
// (command line flags) on top and then call Validate once.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.Output.Format = NormalizeFormat(cfg.Output.Format)
	return cfg, nil
}

// NormalizeFormat trims and lowercases an output format name.
func NormalizeFormat(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}

// Validate checks the non-quote settings. Quote values are intentionally
// left alone; the pricer accepts any number and checks the option type.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
			}
			return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	floats := []struct {
		key string
		dst *float64
	}{
		{"PRICER_SPOT", &c.Quote.Spot},
		{"PRICER_STRIKE", &c.Quote.Strike},
		{"PRICER_EXPIRY", &c.Quote.Expiry},
		{"PRICER_RATE", &c.Quote.Rate},
		{"PRICER_VOLATILITY", &c.Quote.Volatility},
	}
	for _, f := range floats {
		if err := getEnvFloat(f.key, f.dst); err != nil {
			return err
		}
	}

	c.Quote.Type = getEnv("PRICER_TYPE", c.Quote.Type)
	c.Output.Format = getEnv("PRICER_FORMAT", c.Output.Format)
	c.Server.Listen = getEnv("PRICER_LISTEN", c.Server.Listen)

	if value := os.Getenv("LOG_LEVEL"); value != "" {
		lvl, err := logger.ParseLevel(value)
		if err != nil {
			return fmt.Errorf("config: invalid LOG_LEVEL: %w", err)
		}
		c.Logging.Verbosity = int(lvl)
	}
	if value := os.Getenv("LOG_JSON"); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: invalid LOG_JSON: %w", err)
		}
		c.Logging.JSON = parsed
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, dst *float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Errorf("config: invalid %s: %w", key, err)
	}
	*dst = parsed
	return nil
}
