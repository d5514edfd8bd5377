package config

import (
	"os"
	"time"

	"github.com/go-yaml/yaml"
)

type Config struct {
	PDS    PDS    `yaml:"pds"`
	Log    Log    `yaml:"log"`
	Trace  Trace  `yaml:"trace"`
	DevPDS DevPDS `yaml:"devpds"`
}

type PDS struct {
	BaseURL        string `yaml:"baseURL"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

type Log struct {
	Level string `yaml:"level"` // trace, debug, info, warn, error
}

type Trace struct {
	Enable   bool   `yaml:"enable"`
	Endpoint string `yaml:"endpoint"`
}

type DevPDS struct {
	Listen    string `yaml:"listen"`
	JWTSecret string `yaml:"jwtSecret"`
}

// Timeout returns the configured per-call timeout, or zero when the
// client default should stand.
func (p PDS) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.PDS.BaseURL == "" {
		config.PDS.BaseURL = "http://localhost:3000"
	}
	if config.DevPDS.Listen == "" {
		config.DevPDS.Listen = ":3000"
	}
	if config.DevPDS.JWTSecret == "" {
		config.DevPDS.JWTSecret = "dev-secret"
	}

	return config, nil
}
