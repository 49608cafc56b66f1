package dashboard

import "io"

// Renderer is the template engine contract used by the controller. When out
// is provided the markup is also written to it.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}
