// Package models defines the typed records persisted by orion: shots,
// assets and publishes.
package models
