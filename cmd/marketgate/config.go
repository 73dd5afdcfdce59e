package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	jwtSecretEnv = "MARKETGATE_JWT_SECRET"
	nodeTokenEnv = "MARKETNET_RPC_TOKEN"
)

type Config struct {
	ListenAddress string `toml:"ListenAddress"`
	NodeRPCURL    string `toml:"NodeRPCURL"`
	Environment   string `toml:"Environment"`
	LogFile       string `toml:"LogFile"`

	JWTIssuer   string `toml:"JWTIssuer"`
	JWTAudience string `toml:"JWTAudience"`
	ClockSkew   string `toml:"ClockSkew"`
}

func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		cfg.ListenAddress = "127.0.0.1:8655"
	}
	if strings.TrimSpace(cfg.NodeRPCURL) == "" {
		cfg.NodeRPCURL = "http://127.0.0.1:8645"
	}
	if strings.TrimSpace(cfg.Environment) == "" {
		cfg.Environment = "dev"
	}
	if strings.TrimSpace(cfg.JWTIssuer) == "" {
		cfg.JWTIssuer = "marketgate"
	}
	if strings.TrimSpace(cfg.JWTAudience) == "" {
		cfg.JWTAudience = "marketnet"
	}
	return cfg, nil
}

func (c *Config) clockSkew() (time.Duration, error) {
	raw := strings.TrimSpace(c.ClockSkew)
	if raw == "" {
		return 2 * time.Minute, nil
	}
	skew, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid ClockSkew: %w", err)
	}
	return skew, nil
}

// jwtSecret reads the HMAC secret guarding gateway routes from the
// environment. Secrets stay out of the config file.
func (c *Config) jwtSecret() string {
	return strings.TrimSpace(os.Getenv(jwtSecretEnv))
}

// nodeToken reads the bearer token the gateway forwards to the node RPC.
func (c *Config) nodeToken() string {
	return strings.TrimSpace(os.Getenv(nodeTokenEnv))
}
