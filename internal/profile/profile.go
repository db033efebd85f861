// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package profile persists named credential profiles and the active-profile
// pointer in a single JSON config file, and resolves the credential used by
// every API-calling command.
//
// The file lives at xdg.ConfigHome/hackmd/config.json and is rewritten
// whole on every mutation with owner-only permissions. Concurrent writers
// are not coordinated; the tool is single-user and interactive, so the
// last writer wins.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// DefaultBaseURL is the HackMD REST API root stored with every new profile.
const DefaultBaseURL = "https://api.hackmd.io/v1"

// configMode restricts the config file to owner read/write.
const configMode = os.FileMode(0o600)

var (
	// ErrEmptyToken is returned by Login when the token is blank after trimming.
	ErrEmptyToken = errors.New("token cannot be empty")

	// ErrNotAuthenticated is returned when no usable credential exists.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotConfigured is returned by SetValue before any login has created
	// the config file.
	ErrNotConfigured = errors.New("not configured")
)

// Credential is one API token plus the base URL it belongs to. Owned by
// its containing Config, never shared between profiles.
type Credential struct {
	APIToken   string `json:"api_token"`
	APIBaseURL string `json:"api_base_url"`
}

// Defaults holds user-set default values, currently only the team.
type Defaults struct {
	Team string `json:"team,omitempty"`
}

// Config is the persisted shape of the profile store. The flat
// APIToken/APIBaseURL pair is the pre-profile legacy format: read as a
// fallback, never written by current logic.
type Config struct {
	Profiles      map[string]Credential
	ActiveProfile string
	Defaults      Defaults

	APIToken   string
	APIBaseURL string

	// Extra preserves top-level scalar keys written by `config set` that
	// the struct does not model, so they survive load-rewrite cycles.
	Extra map[string]string
}

// configJSON is the fixed-field portion of the on-disk document.
type configJSON struct {
	Profiles      map[string]Credential `json:"profiles,omitempty"`
	ActiveProfile string                `json:"active_profile,omitempty"`
	Defaults      *Defaults             `json:"defaults,omitempty"`
	APIToken      string                `json:"api_token,omitempty"`
	APIBaseURL    string                `json:"api_base_url,omitempty"`
}

// reservedKeys are document keys owned by configJSON, excluded from Extra.
var reservedKeys = map[string]bool{
	"profiles": true, "active_profile": true, "defaults": true,
	"api_token": true, "api_base_url": true,
}

// MarshalJSON flattens the fixed fields and Extra into one JSON object.
func (c Config) MarshalJSON() ([]byte, error) {
	doc := make(map[string]json.RawMessage)

	fixed := configJSON{
		Profiles:      c.Profiles,
		ActiveProfile: c.ActiveProfile,
		APIToken:      c.APIToken,
		APIBaseURL:    c.APIBaseURL,
	}
	if c.Defaults != (Defaults{}) {
		fixed.Defaults = &c.Defaults
	}

	data, err := json.Marshal(fixed)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	for k, v := range c.Extra {
		if reservedKeys[k] {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		doc[k] = raw
	}
	return json.Marshal(doc)
}

// UnmarshalJSON splits the document into fixed fields and Extra. Unknown
// non-string values are ignored rather than failing the load.
func (c *Config) UnmarshalJSON(data []byte) error {
	var fixed configJSON
	if err := json.Unmarshal(data, &fixed); err != nil {
		return err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	c.Profiles = fixed.Profiles
	c.ActiveProfile = fixed.ActiveProfile
	c.APIToken = fixed.APIToken
	c.APIBaseURL = fixed.APIBaseURL
	if fixed.Defaults != nil {
		c.Defaults = *fixed.Defaults
	} else {
		c.Defaults = Defaults{}
	}

	c.Extra = nil
	for k, raw := range doc {
		if reservedKeys[k] {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]string)
		}
		c.Extra[k] = s
	}
	return nil
}

// Store reads and writes the profile config file. It holds no state
// beyond the path; every operation is a full load-merge-rewrite.
type Store struct {
	path string
}

// NewStore returns a Store backed by the config file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the per-user config location,
// typically ~/.config/hackmd/config.json.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "hackmd", "config.json")
}

// Path returns the config file location backing this store.
func (s *Store) Path() string {
	return s.path
}

// Load reads the config file. A missing file is not an error: it returns
// (nil, nil), meaning "unauthenticated".
func (s *Store) Load() (*Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", s.path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", s.path, err)
	}
	return &cfg, nil
}

// Save rewrites the whole config file via a temp file rename and restricts
// it to owner read/write.
func (s *Store) Save(cfg *Config) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing config: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Chmod(tmpPath, configMode); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("restricting config permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Login validates token, inserts or overwrites the named profile with the
// fixed base URL, points active_profile at it, and persists. The token is
// stored as given; only the trimmed form is validated. Remote verification
// is the caller's concern and must not roll back a persisted login.
func (s *Store) Login(token, profileName string) error {
	if strings.TrimSpace(token) == "" {
		return ErrEmptyToken
	}

	cfg, err := s.Load()
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]Credential)
	}

	cfg.Profiles[profileName] = Credential{
		APIToken:   token,
		APIBaseURL: DefaultBaseURL,
	}
	cfg.ActiveProfile = profileName

	return s.Save(cfg)
}

// Status reports the active profile name and a masked form of its token.
// It returns ErrNotAuthenticated when no config exists or the active
// profile has no entry in the profiles map.
func (s *Store) Status() (profileName, maskedToken string, err error) {
	cfg, err := s.Load()
	if err != nil {
		return "", "", err
	}
	if cfg == nil {
		return "", "", ErrNotAuthenticated
	}

	name := cfg.ActiveProfile
	if name == "" {
		name = "default"
	}
	cred, ok := cfg.Profiles[name]
	if !ok {
		return "", "", ErrNotAuthenticated
	}
	return name, MaskToken(cred.APIToken), nil
}

// ResolveActive returns the credential for the active profile, falling back
// to the legacy flat api_token field from the pre-profile format. It returns
// (nil, nil) when no usable credential exists; callers must treat that as
// not authenticated before making any API call.
func (s *Store) ResolveActive() (*Credential, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, nil
	}

	name := cfg.ActiveProfile
	if name == "" {
		name = "default"
	}
	if cred, ok := cfg.Profiles[name]; ok {
		return &cred, nil
	}

	if cfg.APIToken != "" {
		baseURL := cfg.APIBaseURL
		if baseURL == "" {
			baseURL = DefaultBaseURL
		}
		return &Credential{APIToken: cfg.APIToken, APIBaseURL: baseURL}, nil
	}
	return nil, nil
}

// SetValue sets a configuration key and re-persists the file. The key
// "default.team" nests under defaults; other keys become top-level scalars.
// Structured document keys (profiles, defaults) are rejected. It returns
// ErrNotConfigured when no config file exists yet.
func (s *Store) SetValue(key, value string) error {
	cfg, err := s.Load()
	if err != nil {
		return err
	}
	if cfg == nil {
		return ErrNotConfigured
	}

	switch key {
	case "default.team":
		cfg.Defaults.Team = value
	case "active_profile":
		cfg.ActiveProfile = value
	case "api_token":
		cfg.APIToken = value
	case "api_base_url":
		cfg.APIBaseURL = value
	default:
		// Structured keys like "profiles" would be dropped by MarshalJSON
		// if stashed in Extra; refuse them rather than pretend to persist.
		if reservedKeys[key] {
			return fmt.Errorf("key %q is managed by login and cannot be set directly", key)
		}
		if cfg.Extra == nil {
			cfg.Extra = make(map[string]string)
		}
		cfg.Extra[key] = value
	}

	return s.Save(cfg)
}

// MaskToken renders a token safe for display: long tokens keep the first 8
// and last 4 characters, anything of 12 characters or fewer collapses to
// a fixed mask. The raw token is never printed.
func MaskToken(token string) string {
	if len(token) > 12 {
		return token[:8] + "..." + token[len(token)-4:]
	}
	return "***"
}
