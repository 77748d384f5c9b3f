// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads configuration from config.yaml and environment
// variables. Values are static for the lifetime of the process; nothing
// is reloaded mid-run.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the mock invoice service.
type Config struct {
	Port int

	// Storage
	StorageBackend string // "file", "postgres", or "redis"
	FilePath       string
	DatabaseURL    string
	RedisURL       string
	RedisKey       string

	// Generation
	InconsistencyRate float64
	DuplicateRate     float64
	HistorySize       int
	MinPerRequest     int
	MaxPerRequest     int

	// Auth
	AuthEnabled bool
	APIKeys     []string

	// Downstream notifier (disabled when URL is empty)
	NotifyURL          string
	NotifyClientID     string
	NotifyClientSecret string
	NotifyTokenURL     string
}

// rawConfig mirrors the YAML structure for unmarshalling.
type rawConfig struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Storage struct {
		Backend     string `yaml:"backend"`
		FilePath    string `yaml:"file_path"`
		DatabaseURL string `yaml:"database_url"`
		Redis       struct {
			URL string `yaml:"url"`
			Key string `yaml:"key"`
		} `yaml:"redis"`
	} `yaml:"storage"`
	Generator struct {
		InconsistencyRate *float64 `yaml:"inconsistency_rate"`
		DuplicateRate     *float64 `yaml:"duplicate_rate"`
		HistorySize       int      `yaml:"history_size"`
		MinPerRequest     int      `yaml:"min_per_request"`
		MaxPerRequest     int      `yaml:"max_per_request"`
	} `yaml:"generator"`
	Auth struct {
		Enabled bool     `yaml:"enabled"`
		APIKeys []string `yaml:"api_keys"`
	} `yaml:"auth"`
	Notify struct {
		URL          string `yaml:"url"`
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		TokenURL     string `yaml:"token_url"`
	} `yaml:"notify"`
}

// Load reads configuration from config.yaml (with env var expansion) and
// environment variables. A missing config file is fine — the service
// runs on defaults plus environment overrides.
func Load() (*Config, error) {
	configPath := envOrDefault("CONFIG_PATH", "config.yaml")

	var raw rawConfig
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		// Expand ${VAR} references in the YAML
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config YAML: %w", err)
		}
	case os.IsNotExist(err):
		// Defaults + environment only
	default:
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	}

	cfg := &Config{
		Port:               firstPositive(raw.Server.Port, envOrDefaultInt("PORT", 8000)),
		StorageBackend:     firstNonEmpty(raw.Storage.Backend, envOrDefault("STORAGE_BACKEND", "file")),
		FilePath:           firstNonEmpty(raw.Storage.FilePath, envOrDefault("FILE_STORAGE_PATH", "./data/invoices.json")),
		DatabaseURL:        firstNonEmpty(raw.Storage.DatabaseURL, os.Getenv("DATABASE_URL")),
		RedisURL:           firstNonEmpty(raw.Storage.Redis.URL, envOrDefault("REDIS_URL", "redis://localhost:6379/0")),
		RedisKey:           firstNonEmpty(raw.Storage.Redis.Key, envOrDefault("REDIS_KEY", "invoicemock:emails")),
		InconsistencyRate:  floatOrDefault(raw.Generator.InconsistencyRate, envOrDefaultFloat("INCONSISTENCY_RATE", 0.3)),
		DuplicateRate:      floatOrDefault(raw.Generator.DuplicateRate, envOrDefaultFloat("DUPLICATE_RATE", 0.1)),
		HistorySize:        firstPositive(raw.Generator.HistorySize, envOrDefaultInt("HISTORY_SIZE", 1000)),
		MinPerRequest:      firstPositive(raw.Generator.MinPerRequest, envOrDefaultInt("MIN_PER_REQUEST", 2)),
		MaxPerRequest:      firstPositive(raw.Generator.MaxPerRequest, envOrDefaultInt("MAX_PER_REQUEST", 5)),
		AuthEnabled:        raw.Auth.Enabled || envOrDefaultBool("AUTH_ENABLED", false),
		APIKeys:            raw.Auth.APIKeys,
		NotifyURL:          firstNonEmpty(raw.Notify.URL, os.Getenv("NOTIFY_URL")),
		NotifyClientID:     firstNonEmpty(raw.Notify.ClientID, os.Getenv("NOTIFY_CLIENT_ID")),
		NotifyClientSecret: firstNonEmpty(raw.Notify.ClientSecret, os.Getenv("NOTIFY_CLIENT_SECRET")),
		NotifyTokenURL:     firstNonEmpty(raw.Notify.TokenURL, os.Getenv("NOTIFY_TOKEN_URL")),
	}

	if len(cfg.APIKeys) == 0 {
		if keys := os.Getenv("API_KEYS"); keys != "" {
			for _, k := range strings.Split(keys, ",") {
				if k = strings.TrimSpace(k); k != "" {
					cfg.APIKeys = append(cfg.APIKeys, k)
				}
			}
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case "file", "postgres", "redis":
	default:
		return fmt.Errorf("unknown storage backend %q (want file, postgres, or redis)", c.StorageBackend)
	}
	if c.StorageBackend == "postgres" && c.DatabaseURL == "" {
		return fmt.Errorf("postgres backend selected but DATABASE_URL is empty")
	}
	if c.InconsistencyRate < 0 || c.InconsistencyRate > 1 {
		return fmt.Errorf("inconsistency_rate %v outside [0,1]", c.InconsistencyRate)
	}
	if c.DuplicateRate < 0 || c.DuplicateRate > 1 {
		return fmt.Errorf("duplicate_rate %v outside [0,1]", c.DuplicateRate)
	}
	if c.MinPerRequest > c.MaxPerRequest {
		return fmt.Errorf("min_per_request %d exceeds max_per_request %d", c.MinPerRequest, c.MaxPerRequest)
	}
	if c.AuthEnabled && len(c.APIKeys) == 0 {
		return fmt.Errorf("auth enabled but no API keys configured")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envOrDefaultBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func floatOrDefault(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}
