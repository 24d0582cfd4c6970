package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ClientConfig configures the plagcheck command-line client.
type ClientConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Format   string        `mapstructure:"format"`
}

// ClientEnvPrefix prefixes environment overrides, e.g. PLAGCHECK_ENDPOINT.
const ClientEnvPrefix = "PLAGCHECK"

// SetClientDefaults registers the client defaults on v.
func SetClientDefaults(v *viper.Viper) {
	v.SetDefault("endpoint", "http://127.0.0.1:8080")
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("format", "text")
}

// LoadClient reads the optional config file at path, then environment overrides, into a
// ClientConfig. Flags bound to v before the call take precedence over both.
func LoadClient(v *viper.Viper, path string) (*ClientConfig, error) {
	SetClientDefaults(v)
	v.SetEnvPrefix(ClientEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &cfg, nil
}

// Validate reports every invalid field.
func (c *ClientConfig) Validate() []error {
	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, errors.New("endpoint is required"))
	}
	if c.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}
	switch c.Format {
	case "text", "html", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown format %q (want text, html or json)", c.Format))
	}
	return errs
}
