// Package config loads application configuration from config.yaml and
// REVGEO_* environment variables, and wires the global zap logger.
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
	Boundary  BoundaryConfig  `yaml:"boundary" mapstructure:"boundary"`
	Gazetteer GazetteerConfig `yaml:"gazetteer" mapstructure:"gazetteer"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// BoundaryConfig configures the polygon tier.
type BoundaryConfig struct {
	// Path to the .geobounds boundary file.
	Path string `yaml:"path" mapstructure:"path"`
	// UseFiltering enables country-filtered nearest-place lookups.
	UseFiltering bool `yaml:"use_filtering" mapstructure:"use_filtering"`
	// CachePrecision is the geohash length for cache cells (1-12).
	CachePrecision int `yaml:"cache_precision" mapstructure:"cache_precision"`
}

// GazetteerConfig configures the named-place tier.
type GazetteerConfig struct {
	// Path to the flat GeoNames-style TSV dump.
	Path string `yaml:"path" mapstructure:"path"`
	// DBPath, when set, points at an imported sqlite database and is
	// preferred over Path at load time.
	DBPath string `yaml:"db_path" mapstructure:"db_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml in the working directory plus
// environment overrides (REVGEO_BOUNDARY_PATH and friends). The file is
// optional; defaults keep the binary usable with flags alone.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("REVGEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("boundary.path", "boundaries.geobounds")
	v.SetDefault("boundary.use_filtering", true)
	v.SetDefault("boundary.cache_precision", 5)
	v.SetDefault("gazetteer.path", "places.txt")
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
