package dashboard

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	defaultPageTemplate   = "dashboard.html"
	defaultRegionTemplate = "partials/region.html"
	defaultPageTitle      = "API Dashboard"
)

// Live update channels the page can subscribe to.
const (
	LiveSSE       = "sse"
	LiveWebSocket = "ws"
)

// ControllerOptions configures the page controller.
type ControllerOptions struct {
	Service        *Service
	Bootstrap      *Bootstrap
	Renderer       Renderer
	Cache          RegionCache
	Template       string
	RegionTemplate string
	Title          string
	// BasePath prefixes the trigger, region and event URLs used by the page.
	BasePath string
	// Live selects how the page follows region updates: LiveSSE (default)
	// reads /events, LiveWebSocket reads /ws.
	Live string
}

// Controller turns region state into page and fragment markup.
type Controller struct {
	service        *Service
	bootstrap      *Bootstrap
	renderer       Renderer
	cache          RegionCache
	template       string
	regionTemplate string
	title          string
	basePath       string
	live           string
}

// NewController wires the service and renderer into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultPageTemplate
	}
	if opts.RegionTemplate == "" {
		opts.RegionTemplate = defaultRegionTemplate
	}
	if opts.Title == "" {
		opts.Title = defaultPageTitle
	}
	if opts.Cache == nil {
		opts.Cache = noopRegionCache{}
	}
	if opts.Live != LiveWebSocket {
		opts.Live = LiveSSE
	}
	return &Controller{
		service:        opts.Service,
		bootstrap:      opts.Bootstrap,
		renderer:       opts.Renderer,
		cache:          opts.Cache,
		template:       opts.Template,
		regionTemplate: opts.RegionTemplate,
		title:          opts.Title,
		basePath:       strings.TrimRight(opts.BasePath, "/"),
		live:           opts.Live,
	}
}

// RenderPage writes the full dashboard page with every region's current markup.
func (c *Controller) RenderPage(ctx context.Context, out io.Writer) error {
	if c.renderer == nil {
		return fmt.Errorf("dashboard: renderer not configured")
	}
	view, err := c.PageView(ctx)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render(c.template, view, out)
	return err
}

// RenderRegion writes the markup of a single region.
func (c *Controller) RenderRegion(_ context.Context, code string, out io.Writer) error {
	if c.service == nil {
		return fmt.Errorf("dashboard: service not configured")
	}
	snap, err := c.service.RegionSnapshot(code)
	if err != nil {
		return err
	}
	html, err := c.regionHTML(snap)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, html)
	return err
}

// PageView builds the template payload for the dashboard page.
func (c *Controller) PageView(ctx context.Context) (map[string]any, error) {
	if c.service == nil {
		return nil, fmt.Errorf("dashboard: service not configured")
	}
	snapshots := c.service.Snapshot()
	widgets := make([]map[string]any, 0, len(snapshots))
	for _, snap := range snapshots {
		html, err := c.regionHTML(snap)
		if err != nil {
			return nil, err
		}
		w, _ := c.service.Widget(snap.Widget)
		entry := map[string]any{
			"code":        snap.Widget,
			"name":        snap.Name,
			"region":      snap.Region,
			"input_field": snap.InputField,
			"input_value": c.inputValue(ctx, w),
			"triggers":    c.triggerViews(snap.Widget),
			"region_html": html,
		}
		if c.bootstrap != nil {
			if enter, ok := c.bootstrap.EnterTrigger(snap.Widget); ok {
				entry["enter_trigger"] = enter.ID
			}
		}
		if w != nil {
			entry["description"] = w.def.Description
			entry["category"] = w.def.Category
		}
		widgets = append(widgets, entry)
	}
	return map[string]any{
		"title":       c.title,
		"widgets":     widgets,
		"trigger_url": c.basePath + "/triggers",
		"events_url":  c.basePath + "/events",
		"region_url":  c.basePath + "/widgets",
		"ws_url":      c.basePath + "/ws",
		"live":        c.live,
	}, nil
}

func (c *Controller) inputValue(ctx context.Context, w *Widget) string {
	if w == nil {
		return ""
	}
	if w.Code() == WidgetMovies {
		if key, ok, err := c.service.Credential(ctx); err == nil && ok {
			return key
		}
		return ""
	}
	return w.def.DefaultInput
}

func (c *Controller) triggerViews(code string) []map[string]any {
	if c.bootstrap == nil {
		return nil
	}
	triggers := c.bootstrap.WidgetTriggers(code)
	out := make([]map[string]any, 0, len(triggers))
	for _, trig := range triggers {
		label := trig.Label
		if label == "" {
			label = "Refresh"
		}
		out = append(out, map[string]any{
			"id":    trig.ID,
			"kind":  string(trig.Kind),
			"label": label,
		})
	}
	return out
}

func (c *Controller) regionHTML(snap RegionSnapshot) (string, error) {
	if c.renderer == nil {
		return "", fmt.Errorf("dashboard: renderer not configured")
	}
	return c.cache.GetOrRender(snap.Widget, snap.State.Seq, func() (string, error) {
		html, err := c.renderer.Render(c.regionTemplate, RegionView(snap))
		if err != nil {
			return "", fmt.Errorf("dashboard: render region %s: %w", snap.Widget, err)
		}
		return html, nil
	})
}

// RegionView flattens a region snapshot into the payload of the region template.
func RegionView(snap RegionSnapshot) map[string]any {
	state := snap.State
	view := map[string]any{
		"widget":  snap.Widget,
		"region":  snap.Region,
		"kind":    string(state.Kind),
		"message": state.Message,
		"seq":     state.Seq,
		"busy":    state.Kind == StateLoading,
	}
	if !state.UpdatedAt.IsZero() {
		view["updated_at"] = state.UpdatedAt.Format(time.RFC3339)
	}
	if state.Fragment != nil {
		view["fragment"] = fragmentView(*state.Fragment)
	}
	return view
}

func fragmentView(f Fragment) map[string]any {
	out := map[string]any{
		"title":       f.Title,
		"subtitle":    f.Subtitle,
		"lines":       f.Lines,
		"attribution": f.Attribution,
	}
	if f.Image != nil {
		out["image"] = map[string]any{"url": f.Image.URL, "alt": f.Image.Alt}
	}
	if f.Link != nil {
		out["link"] = map[string]any{"url": f.Link.URL, "label": f.Link.Label}
	}
	if len(f.Items) > 0 {
		items := make([]map[string]any, 0, len(f.Items))
		for _, item := range f.Items {
			items = append(items, map[string]any{
				"title":     item.Title,
				"meta":      item.Meta,
				"image_url": item.ImageURL,
			})
		}
		out["items"] = items
	}
	return out
}
