// Package config loads runtime configuration for the orion CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Optional .env file (-env, or ./.env when present) and ORION_*
//     environment variables.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-r string   project root
//	-d string   SQLite database file
//	-u string   user name recorded in sidecars and publishes
//	-l string   log level (debug, info, warn, error)
//	-y          answer yes to every repair confirmation
//
// # JSON schema
//
//	{
//	  "project_root": "P:/all_work/studentGroups/ORION_CORPORATION",
//	  "alt_roots": ["O:/"],
//	  "project_marker": "ORION_CORPORATION",
//	  "discord_webhook_url": "https://discord.com/api/webhooks/...",
//	  "notify_timeout": "5s",
//	  "software": {
//	    "nuke": {"executable": "C:/Program Files/Nuke15.1v1/Nuke15.1.exe", "args": ["--nukex"]}
//	  },
//	  "mirror": {"kind": "s3", "s3_bucket": "orion-publish", "s3_region": "us-east-1"}
//	}
//
// The Config value is built once by the entry point and passed to every
// component that needs it.
package config
