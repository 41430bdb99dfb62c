package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

// LoadAppConfig loads and validates the application configuration from config.yml
func LoadAppConfig() error {
	paths := []string{"config.yml", "./config/config.yml"}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return err
	}
	return LoadAppConfigBytes(data)
}

// LoadAppConfigBytes parses and validates configuration from raw YAML.
func LoadAppConfigBytes(data []byte) error {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}
	v := validator.New()
	if err := v.Struct(cfg.Database); err != nil {
		return err
	}
	if err := v.Struct(cfg.Validation); err != nil {
		return err
	}
	// feeds are optional; if present validate each
	for _, f := range cfg.Feeds {
		if err := v.Struct(f); err != nil {
			return err
		}
	}
	Config = cfg
	if Config.Validation.StoreMode == "" {
		Config.Validation.StoreMode = "create"
	}
	return nil
}

// SelectNamespace chooses a feed namespace by name; fallback to the
// top-level database namespace.
func SelectNamespace(name string) string {
	if name != "" {
		for _, f := range Config.Feeds {
			if f.Name == name {
				return f.Namespace
			}
		}
	}
	return Config.Database.Namespace
}
