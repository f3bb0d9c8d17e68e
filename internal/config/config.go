package config

import (
	"os"
	"os/user"
	"path/filepath"
	"time"
)

const (
	DefaultProjectMarker = "ORION_CORPORATION"
	DefaultNotifyTimeout = 5 * time.Second
	DefaultLogLevel      = "info"
)

// ValueFlags and BoolFlags list every flag owned by this package, so the
// CLI can strip them from its own command line.
var (
	ValueFlags = []string{"-c", "-config", "-env", "-r", "-d", "-u", "-l"}
	BoolFlags  = []string{"-y"}
)

// SoftwareConfig describes how to start one DCC application.
//
// Env values replace variables of the same name; PathEnv values are
// prepended to the existing variable with the OS list separator.
type SoftwareConfig struct {
	Executable string            `json:"executable"`
	Args       []string          `json:"args"`
	Env        map[string]string `json:"env"`
	PathEnv    map[string]string `json:"path_env"`
}

// MirrorConfig selects where published files are mirrored.
// Kind is one of "none", "local" or "s3".
type MirrorConfig struct {
	Kind           string `json:"kind"`
	LocalDir       string `json:"local_dir"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
	S3AccessKey    string `json:"s3_access_key"`
	S3SecretKey    string `json:"s3_secret_key"`
	S3Prefix       string `json:"s3_prefix"`
}

// Config holds runtime settings for orion.
type Config struct {
	ProjectRoot       string
	DatabasePath      string
	ProjectMarker     string
	AltRoots          []string
	User              string
	DiscordWebhookURL string
	NotifyTimeout     time.Duration
	LogLevel          string
	Software          map[string]SoftwareConfig
	Mirror            MirrorConfig
	AssumeYes         bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ProjectRoot = "."
	if wd, err := os.Getwd(); err == nil {
		c.ProjectRoot = wd
	}
	c.DatabasePath = ""
	c.ProjectMarker = DefaultProjectMarker
	c.User = currentUser()
	c.NotifyTimeout = DefaultNotifyTimeout
	c.LogLevel = DefaultLogLevel
	c.Software = map[string]SoftwareConfig{}
	c.Mirror = MirrorConfig{Kind: "none"}
}

// DBPath returns the database file, defaulting to
// <root>/60_config/data/project.db.
func (c *Config) DBPath() string {
	if c.DatabasePath != "" {
		return c.DatabasePath
	}
	return filepath.Join(c.ProjectRoot, "60_config", "data", "project.db")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON, the environment and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return filepath.Base(u.Username)
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}
