package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Settings are the connection and output options that may come from a
// config file, READINGS_* environment variables or flags, in rising priority.
type Settings struct {
	BaseURL  string        `mapstructure:"base_url" validate:"required,url"`
	Output   string        `mapstructure:"output" validate:"oneof=table json yaml"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gte=0"`
	Validate bool          `mapstructure:"validate"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("output", FormatTable)
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("validate", false)

	v.SetEnvPrefix("READINGS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// loadSettings reads configFile when given, then applies overrides (flag
// values keyed like the config file).
func loadSettings(configFile string, overrides map[string]any) (Settings, error) {
	v := newViper()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	for k, val := range overrides {
		v.Set(k, val)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	if err := validator.New().Struct(s); err != nil {
		return Settings{}, fmt.Errorf("%w: invalid settings: %v", ErrUsage, err)
	}
	return s, nil
}
