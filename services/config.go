package services

import (
	"errors"
	"fmt"
	"os"

	"github.com/xairline/xa-ffb/models"
	"github.com/xairline/xa-ffb/utils/logger"
	"gopkg.in/yaml.v2"
)

// LoadConfig reads the YAML config at path on top of the defaults. A missing
// file is not an error; an unreadable or invalid one is logged and the
// defaults are used.
func LoadConfig(path string, logger logger.Logger) models.Config {
	cfg, err := readConfig(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Infof("No config file at %s, using defaults", path)
		} else {
			logger.Errorf("Error reading config file %s: %v", path, err)
		}
		return models.DefaultConfig()
	}
	logger.Infof("Config loaded from %s: %d subscriptions", path, len(cfg.Subscriptions))
	return cfg
}

func readConfig(path string) (models.Config, error) {
	cfg := models.DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg models.Config) error {
	if cfg.ReceiveTimeout <= 0 {
		return fmt.Errorf("receive_timeout must be positive, got %v", cfg.ReceiveTimeout)
	}
	if cfg.TelemetryAddr == "" || cfg.CommandAddr == "" {
		return errors.New("telemetry_addr and command_addr are required")
	}
	if cfg.API.Enabled && cfg.API.Addr == "" {
		return errors.New("api.addr is required when the api is enabled")
	}
	for i, s := range cfg.Subscriptions {
		if s.Name == "" || s.DatarefStr == "" {
			return fmt.Errorf("subscription %d: tag and dataref are required", i)
		}
		if _, ok := models.ParseValueKind(s.Type); !ok {
			return fmt.Errorf("subscription %s: unsupported type %q", s.Name, s.Type)
		}
		if s.Precision != nil && !models.ValidPrecision(*s.Precision) {
			return fmt.Errorf("subscription %s: precision must be between 0 and %d", s.Name, models.MaxPrecision)
		}
		if s.Conversion != nil && !models.ValidConversion(*s.Conversion) {
			return fmt.Errorf("subscription %s: invalid conversion %g", s.Name, *s.Conversion)
		}
	}
	return nil
}
