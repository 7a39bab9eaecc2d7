package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/withrocks/genologics/pkg/lims"
	yaml "gopkg.in/yaml.v2"
)

type Config struct {
	BaseURI  string `yaml:"baseuri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Version  string `yaml:"version"`
	Debug    bool   `yaml:"debug"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{Version: lims.DefaultVersion}
	err = yaml.Unmarshal(buf, &cfg)

	return cfg, err
}

// Load reads the file named by LIMS_CONFIG, if any, and lets the LIMS_*
// environment variables override what it says.
func Load(ctx context.Context) (*Config, error) {
	cfg := &Config{Version: lims.DefaultVersion}

	if path := env.GetVariableOrDefault(ctx, "LIMS_CONFIG", ""); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open configuration file: %w", err)
		}
		defer f.Close()

		cfg, err = LoadConfiguration(f)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration from %s: %w", path, err)
		}
	}

	return cfg.WithEnvironment(ctx), nil
}

func (c *Config) WithEnvironment(ctx context.Context) *Config {
	c.BaseURI = env.GetVariableOrDefault(ctx, "LIMS_BASEURI", c.BaseURI)
	c.Username = env.GetVariableOrDefault(ctx, "LIMS_USERNAME", c.Username)
	c.Password = env.GetVariableOrDefault(ctx, "LIMS_PASSWORD", c.Password)
	c.Version = env.GetVariableOrDefault(ctx, "LIMS_VERSION", c.Version)
	c.Debug = env.GetVariableOrDefault(ctx, "LIMS_DEBUG", strconv.FormatBool(c.Debug)) == "true"

	return c
}

// Connect creates a LIMS facade for the configured server.
func (c *Config) Connect(options ...func(*lims.Lims)) (*lims.Lims, error) {
	options = append([]func(*lims.Lims){
		lims.Version(c.Version),
		lims.Credentials(c.Username, c.Password),
		lims.Debug(strconv.FormatBool(c.Debug)),
	}, options...)

	return lims.New(c.BaseURI, options...)
}
