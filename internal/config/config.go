package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/nameparse/internal/nameparse"
)

// Config holds the full application configuration.
type Config struct {
	Parser ParserConfig `yaml:"parser" mapstructure:"parser"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	FTP    FTPConfig    `yaml:"ftp" mapstructure:"ftp"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// ParserConfig configures the name parser.
type ParserConfig struct {
	CaseMode          string `yaml:"case_mode" mapstructure:"case_mode"`
	FoldDiacritics    bool   `yaml:"fold_diacritics" mapstructure:"fold_diacritics"`
	LiteralEscape     bool   `yaml:"literal_escape" mapstructure:"literal_escape"`
	MultiWordLastName bool   `yaml:"multi_word_last_name" mapstructure:"multi_word_last_name"`
	CatalogFile       string `yaml:"catalog_file" mapstructure:"catalog_file"`
}

// StoreConfig configures the result store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
	StoreChunk  int `yaml:"store_chunk" mapstructure:"store_chunk"`
}

// FTPConfig configures FTP sources.
type FTPConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	MaxBatch    int      `yaml:"max_batch" mapstructure:"max_batch"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst   int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
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
	v.SetEnvPrefix("NAMEPARSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("parser.case_mode", string(nameparse.CaseProper))
	v.SetDefault("parser.fold_diacritics", false)
	v.SetDefault("parser.literal_escape", false)
	v.SetDefault("parser.multi_word_last_name", false)
	v.SetDefault("parser.catalog_file", "")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "nameparse.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("batch.concurrency", 8)
	v.SetDefault("batch.store_chunk", 500)
	v.SetDefault("ftp.timeout_secs", 30)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_batch", 1000)
	v.SetDefault("server.rate_limit", 50.0)
	v.SetDefault("server.rate_burst", 100)
	v.SetDefault("server.cors_origins", []string{"*"})

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

// Validate checks the settings a command mode depends on. Modes: "parse",
// "batch", "serve", "store".
func (c *Config) Validate(mode string) error {
	var errs []string

	if _, err := nameparse.ParseCaseMode(c.Parser.CaseMode); err != nil {
		errs = append(errs, "parser.case_mode must be one of none, proper, upper, lower")
	}

	switch mode {
	case "parse":
	case "batch":
		if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 256 {
			errs = append(errs, "batch.concurrency must be between 1 and 256")
		}
		if c.Batch.StoreChunk < 1 {
			errs = append(errs, "batch.store_chunk must be > 0")
		}
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.MaxBatch <= 0 {
			errs = append(errs, "server.max_batch must be > 0")
		}
		if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
			errs = append(errs, "server.rate_limit and server.rate_burst must be >= 0")
		}
	case "store":
		switch c.Store.Driver {
		case "sqlite", "postgres":
		default:
			errs = append(errs, fmt.Sprintf("store.driver %q must be sqlite or postgres", c.Store.Driver))
		}
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ParserOptions translates the parser section into nameparse options,
// loading the catalog file when one is configured.
func (c ParserConfig) ParserOptions() ([]nameparse.Option, error) {
	mode, err := nameparse.ParseCaseMode(c.CaseMode)
	if err != nil {
		return nil, eris.Wrap(err, "config: parser case mode")
	}

	opts := []nameparse.Option{
		nameparse.WithCaseMode(mode),
		nameparse.WithFoldDiacritics(c.FoldDiacritics),
		nameparse.WithLiteralEscape(c.LiteralEscape),
		nameparse.WithMultiWordLastName(c.MultiWordLastName),
	}

	if c.CatalogFile != "" {
		catalog, err := nameparse.LoadCatalogFile(c.CatalogFile)
		if err != nil {
			return nil, eris.Wrap(err, "config: parser catalog")
		}
		opts = append(opts, nameparse.WithCatalog(catalog))
	}

	return opts, nil
}

// NewParser builds a parser from the parser section.
func (c ParserConfig) NewParser() (*nameparse.Parser, error) {
	opts, err := c.ParserOptions()
	if err != nil {
		return nil, err
	}
	return nameparse.New(opts...), nil
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
