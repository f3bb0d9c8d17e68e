package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/orion/internal/flagx"
	"github.com/dmitrijs2005/orion/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. After parsing,
// non-empty values are copied into the runtime Config.
type JsonConfig struct {
	ProjectRoot       string                    `json:"project_root"`
	DatabasePath      string                    `json:"database_path"`
	ProjectMarker     string                    `json:"project_marker"`
	AltRoots          []string                  `json:"alt_roots"`
	User              string                    `json:"user"`
	DiscordWebhookURL string                    `json:"discord_webhook_url"`
	NotifyTimeout     timex.Duration            `json:"notify_timeout"`
	LogLevel          string                    `json:"log_level"`
	Software          map[string]SoftwareConfig `json:"software"`
	Mirror            *MirrorConfig             `json:"mirror"`
}

// parseJson overlays cfg with values from the file named by -c / -config.
// It panics on read or unmarshal errors; the entry point turns that into a
// fatal message.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.ProjectRoot, jc.ProjectRoot)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.ProjectMarker, jc.ProjectMarker)
	setString(&cfg.User, jc.User)
	setString(&cfg.DiscordWebhookURL, jc.DiscordWebhookURL)
	setString(&cfg.LogLevel, jc.LogLevel)

	if len(jc.AltRoots) > 0 {
		cfg.AltRoots = jc.AltRoots
	}
	if jc.NotifyTimeout.Duration > 0 {
		cfg.NotifyTimeout = jc.NotifyTimeout.Duration
	}
	if cfg.Software == nil {
		cfg.Software = map[string]SoftwareConfig{}
	}
	for name, sw := range jc.Software {
		cfg.Software[name] = sw
	}
	if jc.Mirror != nil {
		cfg.Mirror = *jc.Mirror
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
