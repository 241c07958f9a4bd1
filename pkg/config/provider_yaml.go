package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var cfg ConfigData
	if err := yaml.Unmarshal(cfgFile, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", y.filename, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	y.config = &cfg
	return y.config, nil
}

// Close is a no-op for the YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

func validate(cfg *ConfigData) error {
	if cfg.Storage.SQLite == nil && cfg.Storage.TimescaleDB == nil {
		return fmt.Errorf("no storage backend configured: define storage.sqlite or storage.timescaledb")
	}
	seen := make(map[string]bool)
	for _, device := range cfg.Devices {
		if device.Name == "" {
			return fmt.Errorf("every device must have a name")
		}
		if seen[device.Name] {
			return fmt.Errorf("duplicate device name [%s]", device.Name)
		}
		seen[device.Name] = true
		switch device.Type {
		case "rtl433":
			if device.Command == "" && device.SerialDevice == "" {
				return fmt.Errorf("device [%s] must define either a command or a serial device", device.Name)
			}
		case "sensehat":
			// sysfs path and interval have defaults
		default:
			return fmt.Errorf("device [%s] has unknown type %q", device.Name, device.Type)
		}
	}
	return nil
}
