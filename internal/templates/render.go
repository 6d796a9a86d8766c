// Package templates handles HTML fragment rendering for Datastar SSE
// responses. Fragments ship embedded; a disk directory can override them
// for dev hot-reload.
package templates

import (
	"bytes"
	"embed"
	"html/template"
	"path/filepath"
	"sync"
)

//go:embed fragments/*.html
var embedded embed.FS

// funcMap provides common template functions.
var funcMap = template.FuncMap{
	// dict creates a map from key-value pairs, useful for passing multiple values to nested templates
	"dict": func(values ...any) map[string]any {
		if len(values)%2 != 0 {
			return nil
		}
		m := make(map[string]any, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				continue
			}
			m[key] = values[i+1]
		}
		return m
	},
}

// Renderer manages HTML fragment templates.
type Renderer struct {
	templates *template.Template
	mu        sync.RWMutex
}

// New creates a renderer from the embedded fragments. If fragmentsDir is
// non-empty, templates found there override the embedded ones.
func New(fragmentsDir string) (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(embedded, "fragments/*.html")
	if err != nil {
		return nil, err
	}
	if fragmentsDir != "" {
		pattern := filepath.Join(fragmentsDir, "*.html")
		if overridden, err := tmpl.ParseGlob(pattern); err == nil {
			tmpl = overridden
		}
	}
	return &Renderer{templates: tmpl}, nil
}

// Render renders a named template to a string.
func (r *Renderer) Render(name string, data any) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToBuffer renders a named template to a buffer.
func (r *Renderer) RenderToBuffer(buf *bytes.Buffer, name string, data any) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.templates.ExecuteTemplate(buf, name, data)
}

// MustRender renders a template and panics on error.
// Use only when you're certain the template exists.
func (r *Renderer) MustRender(name string, data any) string {
	s, err := r.Render(name, data)
	if err != nil {
		panic(err)
	}
	return s
}

// Reload reloads override templates from disk (useful for dev hot-reload).
func (r *Renderer) Reload(fragmentsDir string) error {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(embedded, "fragments/*.html")
	if err != nil {
		return err
	}
	if fragmentsDir != "" {
		pattern := filepath.Join(fragmentsDir, "*.html")
		if overridden, err := tmpl.ParseGlob(pattern); err == nil {
			tmpl = overridden
		}
	}

	r.mu.Lock()
	r.templates = tmpl
	r.mu.Unlock()

	return nil
}
