// Package template manages a directory of named markdown templates with
// flat {{identifier}} placeholders and renders them in a single
// substitution pass. It is not a general templating engine: no recursion,
// no expressions, unknown tokens stay literal.
package template

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Ext is the on-disk template file extension; name ⟷ name.md.
const Ext = ".md"

// ErrNotFound reports that no template file matches the requested name.
// A missing template is a normal negative result; callers check for it
// with errors.Is.
var ErrNotFound = errors.New("template not found")

// Engine stores and renders templates, one file per template in dir.
type Engine struct {
	dir string
}

// NewEngine returns an Engine over the given directory.
func NewEngine(dir string) *Engine {
	return &Engine{dir: dir}
}

// DefaultDir returns the per-user template location, ~/.hackmd/templates.
func DefaultDir() string {
	return filepath.Join(xdg.Home, ".hackmd", "templates")
}

// Dir returns the directory backing this engine.
func (e *Engine) Dir() string {
	return e.dir
}

// Initialize creates the template directory and seeds the built-in
// templates, writing each one only if no file of that name exists.
// It returns the sorted names actually written; running it again on a
// seeded directory returns an empty list and changes nothing.
func (e *Engine) Initialize() ([]string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating template directory: %w", err)
	}

	var created []string
	for name, content := range builtinTemplates {
		path := filepath.Join(e.dir, name+Ext)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("seeding template %s: %w", name, err)
		}
		created = append(created, name)
	}
	sort.Strings(created)
	return created, nil
}

// List returns the sorted names of every template in the directory,
// extension stripped. A missing directory yields an empty list.
func (e *Engine) List() ([]string, error) {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading template directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), Ext))
	}
	sort.Strings(names)
	return names, nil
}

// Get returns the raw stored content of the named template, or ErrNotFound.
func (e *Engine) Get(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(e.dir, name+Ext))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("reading template %s: %w", name, err)
	}
	return string(data), nil
}

// Render substitutes {{key}} tokens in the named template. The render
// context is the computed date/time defaults overlaid with vars, caller
// values winning on collision. Every occurrence of a context key is
// replaced; tokens with no context entry stay literal. Substitution is a
// single pass over the content, so values containing {{...}} are never
// re-interpreted.
func (e *Engine) Render(name string, vars map[string]string) (string, error) {
	content, err := e.Get(name)
	if err != nil {
		return "", err
	}

	ctx := defaultVars(time.Now())
	for k, v := range vars {
		ctx[k] = v
	}

	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{{"+k+"}}", ctx[k])
	}
	return strings.NewReplacer(pairs...).Replace(content), nil
}

// Save writes or overwrites the named template unconditionally and returns
// the storage path for caller confirmation messages.
func (e *Engine) Save(name, content string) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating template directory: %w", err)
	}
	path := filepath.Join(e.dir, name+Ext)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing template %s: %w", name, err)
	}
	return path, nil
}

// defaultVars computes the built-in render context for a point in time.
// start_date and end_date are empty placeholders for a caller-supplied
// date range.
func defaultVars(now time.Time) map[string]string {
	_, week := now.ISOWeek()
	return map[string]string{
		"date":        now.Format("2006-01-02"),
		"time":        now.Format("15:04"),
		"month":       now.Format("January"),
		"year":        fmt.Sprintf("%d", now.Year()),
		"week_number": fmt.Sprintf("%d", week),
		"start_date":  "",
		"end_date":    "",
	}
}
