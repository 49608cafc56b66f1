package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	router "github.com/goliatone/go-router"

	dashboard "github.com/goliatone/go-apidash/components/dashboard"
	"github.com/goliatone/go-apidash/components/dashboard/commands"
	"github.com/goliatone/go-apidash/components/dashboard/httpapi"
	"github.com/goliatone/go-apidash/components/dashboard/queries"
)

// Config wires go-router with the dashboard controller, executor, and hooks.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *dashboard.Controller
	API        httpapi.Executor
	Broadcast  *dashboard.BroadcastHook
	// BasePath mounts every route under a group; empty mounts at the root.
	BasePath string
	Routes   RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML        string
	Widgets     string
	Widget      string
	Region      string
	Trigger     string
	Credentials string
	WebSocket   string
}

type triggerPayload struct {
	Input string `json:"input"`
	Wait  bool   `json:"wait"`
}

type credentialPayload struct {
	Value string `json:"value"`
}

// Register mounts dashboard routes (HTML, JSON, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	group := cfg.Router
	if base := strings.TrimRight(cfg.BasePath, "/"); base != "" {
		group = cfg.Router.Group(base)
	}

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		var buf bytes.Buffer
		if err := cfg.Controller.RenderPage(ctx.Context(), &buf); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Region, router.WrapHandler(func(ctx router.Context) error {
		var buf bytes.Buffer
		if err := cfg.Controller.RenderRegion(ctx.Context(), ctx.Param("code"), &buf); err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, routes)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, routes RouteConfig) {
	r.Get(routes.Widgets, router.WrapHandler(func(ctx router.Context) error {
		var input queries.SnapshotInput
		if raw := ctx.Query("widget"); raw != "" {
			input.Widgets = strings.Split(raw, ",")
		}
		snaps, err := api.Snapshot(ctx.Context(), input)
		if err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, httpapi.SnapshotResponse{
			Widgets:              snaps,
			CredentialConfigured: api.CredentialConfigured(ctx.Context()),
		})
	}))

	r.Get(routes.Widget, router.WrapHandler(func(ctx router.Context) error {
		snap, err := api.Region(ctx.Context(), queries.RegionInput{Widget: ctx.Param("code")})
		if err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, snap)
	}))

	r.Post(routes.Trigger, router.WrapHandler(func(ctx router.Context) error {
		var payload triggerPayload
		if body := ctx.Body(); len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
		}
		wait := payload.Wait
		if raw := ctx.Query("wait"); raw != "" {
			wait, _ = strconv.ParseBool(raw)
		}
		var result dashboard.TriggerResult
		err := api.FireTrigger(ctx.Context(), commands.FireTriggerInput{
			Trigger: ctx.Param("id"),
			Input:   payload.Input,
			Wait:    wait,
			Result:  func(res dashboard.TriggerResult) { result = res },
		})
		if err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		resp := httpapi.TriggerResponse{TriggerResult: result}
		if !wait {
			return ctx.JSON(http.StatusAccepted, resp)
		}
		if result.Message == "" {
			if snap, err := api.Region(ctx.Context(), queries.RegionInput{Widget: result.Widget}); err == nil {
				resp.State = &snap.State
			}
		}
		return ctx.JSON(http.StatusOK, resp)
	}))

	r.Post(routes.Credentials, router.WrapHandler(func(ctx router.Context) error {
		var payload credentialPayload
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		var message string
		err := api.SaveCredential(ctx.Context(), commands.SaveCredentialInput{
			Value: payload.Value,
			Saved: func(msg string) { message = msg },
		})
		if err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"message": message})
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, unsubscribe := hook.Subscribe()
		defer unsubscribe()

		ctx, cancel := context.WithCancel(ws.Context())
		defer cancel()
		go func() {
			defer cancel()
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ctx.Done():
				return ws.Close()
			}
		}
	})
}

func statusFor(err error) int {
	switch {
	case dashboard.IsUnknownWidget(err), dashboard.IsUnknownTrigger(err):
		return http.StatusNotFound
	case dashboard.KindOf(err) == dashboard.KindInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]any{
		"error":   err.Error(),
		"status":  status,
		"message": dashboard.UserMessage(err),
	})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/"
	}
	if routes.Widgets == "" {
		routes.Widgets = "/widgets"
	}
	if routes.Widget == "" {
		routes.Widget = "/widgets/:code"
	}
	if routes.Region == "" {
		routes.Region = "/widgets/:code/region"
	}
	if routes.Trigger == "" {
		routes.Trigger = "/triggers/:id"
	}
	if routes.Credentials == "" {
		routes.Credentials = "/credentials"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
