// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data structures shared between the CLI layer
// and the internal packages: API payloads and client settings.
package types

// User is the authenticated account returned by GET /me.
type User struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// Team is one entry from GET /teams.
type Team struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Note is a HackMD note. List responses omit Content; GET /notes/{id}
// includes it. Timestamps are millisecond epochs as the API returns them.
type Note struct {
	ID            string   `json:"id" yaml:"id"`
	Title         string   `json:"title" yaml:"title"`
	Content       string   `json:"content,omitempty" yaml:"content,omitempty"`
	Tags          []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	CreatedAt     int64    `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
	LastChangedAt int64    `json:"lastChangedAt,omitempty" yaml:"last_changed_at,omitempty"`
	PublishLink   string   `json:"publishLink,omitempty" yaml:"publish_link,omitempty"`
}
