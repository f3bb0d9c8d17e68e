package models

import "time"

// Publish records one file copied into a task's .PUBLISHED folder.
type Publish struct {
	ID            int64     `json:"id" yaml:"id"`
	SourcePath    string    `json:"source_path" yaml:"source_path"`
	PublishedPath string    `json:"published_path" yaml:"published_path"`
	Digest        string    `json:"digest" yaml:"digest"`
	Size          int64     `json:"size" yaml:"size"`
	PublishedBy   string    `json:"published_by" yaml:"published_by"`
	PublishedAt   time.Time `json:"published_at" yaml:"published_at"`
	MirrorKey     string    `json:"mirror_key,omitempty" yaml:"mirror_key,omitempty"`
}
