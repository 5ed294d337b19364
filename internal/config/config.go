// Package config holds the settings of the jdeser command.
package config

import (
	"os"
	"path/filepath"

	"github.com/c2h5oh/datasize"
	"github.com/ghodss/yaml"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

const (
	OutputJSON = "json"
	OutputYAML = "yaml"

	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

type Config struct {
	// MaxInputSize bounds the stream size; larger inputs are rejected before decoding.
	MaxInputSize        datasize.ByteSize `json:"max_input_size"`
	ConnectInnerClasses bool              `json:"connect_inner_classes"`
	Output              string            `json:"output"`
	Indent              int               `json:"indent"`
	LogLevel            string            `json:"log_level"`
	Color               string            `json:"color"`
}

func Default() *Config {
	return &Config{
		MaxInputSize:        64 * datasize.MB,
		ConnectInnerClasses: true,
		Output:              OutputJSON,
		Indent:              2,
		LogLevel:            "warn",
		Color:               ColorAuto,
	}
}

// Load reads a JSON or YAML file over the defaults. An empty path yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load config %s", path)
	}
	if err := cfg.decode(content, yamlFormat(path)); err != nil {
		return nil, errors.WithMessagef(err, "load config %s", path)
	}
	return cfg, nil
}

func (c *Config) decode(content []byte, isYAML bool) error {
	if isYAML {
		b, err := yaml.YAMLToJSON(content)
		if err != nil {
			return errors.Wrap(err, "translate yaml to json")
		}
		content = b
	}
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(content, c); err != nil {
		return errors.Wrap(err, "json unmarshal config")
	}
	return c.Validate()
}

func yamlFormat(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.Output {
	case OutputJSON, OutputYAML:
	default:
		return errors.Errorf("unknown output format %q", c.Output)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return errors.Errorf("unknown color mode %q", c.Color)
	}
	if c.Indent < 0 {
		return errors.Errorf("indent must not be negative, got %d", c.Indent)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, errors.Wrapf(err, "log level")
	}
	return lvl, nil
}
