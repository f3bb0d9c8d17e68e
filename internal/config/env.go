package config

import (
	"os"
	"strings"

	"github.com/dmitrijs2005/orion/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv loads the .env file named by -env (or ./.env when it exists)
// into the process environment and overlays ORION_* variables. Variables
// already set in the environment win over the file.
//
// ORI_ROOT_PATH is honoured as well, since DCC launch scripts export it.
func parseEnv(cfg *Config) {
	envFile := flagx.EnvFileFlags()
	if envFile == "" {
		if _, err := os.Stat(".env"); err == nil {
			envFile = ".env"
		}
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	}

	lookup(&cfg.ProjectRoot, "ORI_ROOT_PATH")
	lookup(&cfg.ProjectRoot, "ORION_ROOT")
	lookup(&cfg.DatabasePath, "ORION_DB")
	lookup(&cfg.ProjectMarker, "ORION_MARKER")
	lookup(&cfg.User, "ORION_USER")
	lookup(&cfg.DiscordWebhookURL, "ORION_DISCORD_WEBHOOK")
	lookup(&cfg.LogLevel, "ORION_LOG_LEVEL")
	lookup(&cfg.Mirror.S3AccessKey, "ORION_S3_ACCESS_KEY")
	lookup(&cfg.Mirror.S3SecretKey, "ORION_S3_SECRET_KEY")

	if v, ok := os.LookupEnv("ORION_ALT_ROOTS"); ok && v != "" {
		cfg.AltRoots = splitList(v)
	}
}

func lookup(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// splitList splits a ';'-separated list, dropping empty items. ';' is used
// on every platform because Windows roots contain ':'.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ";") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
