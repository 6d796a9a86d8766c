// Package humastar bridges Huma (REST/OpenAPI) with Datastar (SSE/hypermedia).
//
// It provides:
//   - SSE: Huma streaming → Datastar SSE protocol via [SSE] and [NewSSE]
//   - Signals: Type-safe Datastar signal parsing via [Signals] and [SignalsInput]
//   - Handler: Embeddable base for editor-style SSE handlers via [Handler]
package humastar

import (
	"bytes"
	"encoding/json"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/gazawayj/planetgis/internal/templates"
)

// Handler is an embeddable base for Huma handlers that produce Datastar SSE
// responses. It holds a [templates.Renderer] and provides convenience methods
// to create streams and render fragments.
type Handler struct {
	Renderer *templates.Renderer
}

// Stream returns a Huma StreamResponse that calls fn with a ready SSE helper.
func (h *Handler) Stream(fn func(sse SSE)) *huma.StreamResponse {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			fn(NewSSE(humaCtx))
		},
	}
}

// RenderList renders items with a named template, or an empty state if none.
func (h *Handler) RenderList(tmpl string, items []any, emptyTitle, emptyMsg string) string {
	var buf bytes.Buffer
	if len(items) == 0 {
		h.Renderer.RenderToBuffer(&buf, "empty-state", map[string]string{
			"Title": emptyTitle, "Message": emptyMsg,
		})
	} else {
		for _, item := range items {
			h.Renderer.RenderToBuffer(&buf, tmpl, item)
		}
	}
	return buf.String()
}

// SSE wraps a Datastar SSE generator with convenience methods for common
// patterns: error/success signals, inner/outer element patching.
type SSE struct {
	*datastar.ServerSentEventGenerator
}

// NewSSE creates a Datastar SSE helper from a Huma streaming context.
func NewSSE(ctx huma.Context) SSE {
	r, w := humago.Unwrap(ctx)
	return SSE{datastar.NewSSE(w, r)}
}

// Patch sends HTML to replace inner content at a CSS selector.
func (s SSE) Patch(html, selector string) {
	s.PatchElements(html,
		datastar.WithSelector(selector),
		datastar.WithModeInner(),
		datastar.WithViewTransitions(),
	)
}

// Replace replaces outer HTML at a CSS selector.
func (s SSE) Replace(html, selector string) {
	s.PatchElements(html,
		datastar.WithSelector(selector),
		datastar.WithModeOuter(),
		datastar.WithViewTransitions(),
	)
}

// Error sends an error signal to the UI.
func (s SSE) Error(msg string) {
	s.MarshalAndPatchSignals(map[string]any{"error": msg})
}

// Success sends a success signal to the UI.
func (s SSE) Success(msg string) {
	s.MarshalAndPatchSignals(map[string]any{"success": msg})
}

// Signals sends arbitrary signals to the UI.
func (s SSE) Signals(signals map[string]any) {
	s.MarshalAndPatchSignals(signals)
}

// Signals provides type-safe access to Datastar signal values.
// Datastar sends all signals as a flat JSON object in the request body.
type Signals map[string]any

// ParseSignals parses Datastar signals from a raw request body.
func ParseSignals(body []byte) (Signals, error) {
	var signals Signals
	if err := json.Unmarshal(body, &signals); err != nil {
		return nil, err
	}
	return signals, nil
}

// String returns a string signal value, or empty string if not found.
func (s Signals) String(key string) string {
	if v, ok := s[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

// Bool returns a bool signal value, or false if not found.
func (s Signals) Bool(key string) bool {
	if v, ok := s[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// Has returns true if the signal key exists (even if zero-valued).
func (s Signals) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// EmptyInput is a shared input struct for handlers with no parameters.
type EmptyInput struct{}

// SignalsInput is an input struct for handlers that receive Datastar signals.
type SignalsInput struct {
	RawBody []byte
}

// Parse parses the signals from the raw body.
func (i *SignalsInput) Parse() (Signals, error) {
	return ParseSignals(i.RawBody)
}

// MustParse parses signals or returns a Huma 400 error.
func (i *SignalsInput) MustParse() (Signals, error) {
	signals, err := ParseSignals(i.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid request data: " + err.Error())
	}
	return signals, nil
}
