package models

// LegacyIDLength is the length above which a shot id is considered a
// long-form identifier (historically a UUID).
const LegacyIDLength = 20

// Shot is a time-bounded unit of work with a frame range.
//
// ShotPath is stored relative to the project root with forward slashes.
type Shot struct {
	ID              string `json:"id" yaml:"id"`
	Code            string `json:"code" yaml:"code"`
	FrameStart      int    `json:"frame_start" yaml:"frame_start"`
	FrameEnd        int    `json:"frame_end" yaml:"frame_end"`
	UserAssigned    string `json:"user_assigned" yaml:"user_assigned"`
	ShotPath        string `json:"shot_path" yaml:"shot_path"`
	Description     string `json:"description" yaml:"description"`
	DiscordThreadID string `json:"discord_thread_id,omitempty" yaml:"discord_thread_id,omitempty"`
	ThumbnailPath   string `json:"thumbnail_path,omitempty" yaml:"thumbnail_path,omitempty"`
}

// HasLegacyID reports whether the shot still carries a long-form id that
// differs from its code.
func (s *Shot) HasLegacyID() bool {
	return len(s.ID) > LegacyIDLength && s.ID != s.Code
}

// Default frame range for shots registered without one.
const (
	DefaultFrameStart = 1001
	DefaultFrameEnd   = 1100
)

// MigratedUser is recorded as the assignee of shots registered by the
// reconciler.
const MigratedUser = "Migrated"
