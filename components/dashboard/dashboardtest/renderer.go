package dashboardtest

import (
	"fmt"
	"io"
	"sync"
)

// Renderer is a template-free dashboard.Renderer. Region payloads render as
// a div carrying the region id, state kind and seq; pages render as
// "<template-name>".
type Renderer struct {
	mu    sync.Mutex
	calls map[string]int
}

// Render satisfies dashboard.Renderer.
func (r *Renderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.mu.Lock()
	if r.calls == nil {
		r.calls = map[string]int{}
	}
	r.calls[name]++
	r.mu.Unlock()

	html := fmt.Sprintf("<%s>", name)
	if view, ok := data.(map[string]any); ok && view["region"] != nil {
		html = fmt.Sprintf(`<div id="%v" class="state-%v" data-seq="%v"></div>`, view["region"], view["kind"], view["seq"])
	}
	for _, w := range out {
		if w != nil {
			_, _ = io.WriteString(w, html)
		}
	}
	return html, nil
}

// Calls reports how often a template was rendered.
func (r *Renderer) Calls(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[name]
}
