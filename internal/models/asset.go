package models

// Asset is a reusable piece of content (character, prop, environment).
type Asset struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	Type          string `json:"type" yaml:"type"`
	Path          string `json:"path" yaml:"path"`
	Description   string `json:"description" yaml:"description"`
	ThumbnailPath string `json:"thumbnail_path,omitempty" yaml:"thumbnail_path,omitempty"`
	UserAssigned  string `json:"user_assigned,omitempty" yaml:"user_assigned,omitempty"`
}
