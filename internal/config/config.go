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
	Download DownloadConfig `yaml:"download" mapstructure:"download"`
	Boundary BoundaryConfig `yaml:"boundary" mapstructure:"boundary"`
	HTTP     HTTPConfig     `yaml:"http" mapstructure:"http"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DownloadConfig configures the tile download pipeline.
type DownloadConfig struct {
	GridSpacing int    `yaml:"grid_spacing" mapstructure:"grid_spacing"`
	Buffer      int    `yaml:"buffer" mapstructure:"buffer"`
	OutDir      string `yaml:"out_dir" mapstructure:"out_dir"`
	Product     string `yaml:"product" mapstructure:"product"`
	BKGUUID     string `yaml:"bkg_uuid" mapstructure:"bkg_uuid"`
}

// BoundaryConfig configures the federal state boundary source.
// URL is used unless File points at a local GeoJSON or shapefile.
type BoundaryConfig struct {
	URL       string `yaml:"url" mapstructure:"url"`
	File      string `yaml:"file" mapstructure:"file"`
	NameField string `yaml:"name_field" mapstructure:"name_field"`
	CodeField string `yaml:"code_field" mapstructure:"code_field"`
}

// HTTPConfig configures the WMS fetcher.
type HTTPConfig struct {
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst       int     `yaml:"burst" mapstructure:"burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultBoundaryURL is the published GeoJSON of the German federal states.
const DefaultBoundaryURL = "https://raw.githubusercontent.com/isellsoap/deutschlandGeoJSON/main/2_bundeslaender/4_niedrig.geo.json"

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ORTHO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("download.grid_spacing", 1000)
	v.SetDefault("download.buffer", 0)
	v.SetDefault("download.out_dir", ".")
	v.SetDefault("download.product", "rgb")
	v.SetDefault("boundary.url", DefaultBoundaryURL)
	v.SetDefault("boundary.name_field", "GEN")
	v.SetDefault("boundary.code_field", "ISO")
	v.SetDefault("http.user_agent", "ortho-cli/1.0")
	v.SetDefault("http.timeout_secs", 120)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.rate_limit", 4.0)
	v.SetDefault("http.burst", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
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
