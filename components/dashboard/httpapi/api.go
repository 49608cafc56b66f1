package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	gocommand "github.com/goliatone/go-command"
	"github.com/rs/zerolog"

	dashboard "github.com/goliatone/go-apidash/components/dashboard"
	"github.com/goliatone/go-apidash/components/dashboard/commands"
	"github.com/goliatone/go-apidash/components/dashboard/queries"
)

// CredentialStatus reports whether the movie key has been stored.
type CredentialStatus interface {
	CredentialConfigured(ctx context.Context) bool
}

// Handlers exposes the dashboard over net/http, backed by shared commands and
// queries. Nil collaborators disable their routes.
type Handlers struct {
	Controller  *dashboard.Controller
	Broadcast   *dashboard.BroadcastHook
	Trigger     gocommand.Commander[commands.FireTriggerInput]
	Credential  gocommand.Commander[commands.SaveCredentialInput]
	Region      gocommand.Querier[queries.RegionInput, dashboard.RegionSnapshot]
	Snapshot    gocommand.Querier[queries.SnapshotInput, []dashboard.RegionSnapshot]
	Credentials CredentialStatus
	Metrics     http.Handler
	Logger      *zerolog.Logger
}

// SnapshotResponse is the body of GET /widgets.
type SnapshotResponse struct {
	Widgets              []dashboard.RegionSnapshot `json:"widgets"`
	CredentialConfigured bool                       `json:"credential_configured"`
}

// TriggerResponse is the body of POST /triggers/{id}. State is set when the
// caller waited for the refresh.
type TriggerResponse struct {
	dashboard.TriggerResult
	State *dashboard.WidgetState `json:"state,omitempty"`
}

type triggerRequest struct {
	Input string `json:"input"`
}

type credentialRequest struct {
	Value string `json:"value"`
}

type credentialResponse struct {
	Message string `json:"message"`
}

// Routes mounts every dashboard endpoint on a chi router.
func (h *Handlers) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	if h.Controller != nil {
		router.Get("/", h.HandlePage)
		router.Get("/widgets/{code}/region", h.HandleRegionHTML)
	}
	if h.Snapshot != nil {
		router.Get("/widgets", h.HandleSnapshot)
	}
	if h.Region != nil {
		router.Get("/widgets/{code}", h.HandleRegion)
	}
	if h.Trigger != nil {
		router.Post("/triggers/{id}", h.HandleTrigger)
	}
	if h.Credential != nil {
		router.Post("/credentials", h.HandleSaveCredential)
	}
	if h.Broadcast != nil {
		router.Get("/events", h.Broadcast.ServeSSE)
		router.Get("/ws", h.Broadcast.ServeWebSocket)
	}
	if h.Metrics != nil {
		router.Get("/metrics", h.Metrics.ServeHTTP)
	}
	return router
}

// HandlePage renders the full dashboard page.
func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.Controller.RenderPage(r.Context(), &buf); err != nil {
		h.respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondHTML(w, buf.Bytes())
}

// HandleRegionHTML renders the markup of a single region.
func (h *Handlers) HandleRegionHTML(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	var buf bytes.Buffer
	if err := h.Controller.RenderRegion(r.Context(), code, &buf); err != nil {
		h.respondError(w, statusFor(err), err)
		return
	}
	respondHTML(w, buf.Bytes())
}

// HandleSnapshot returns every region, optionally filtered by ?widget=.
func (h *Handlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.Snapshot.Query(r.Context(), queries.SnapshotInput{Widgets: r.URL.Query()["widget"]})
	if err != nil {
		h.respondError(w, statusFor(err), err)
		return
	}
	resp := SnapshotResponse{Widgets: snaps}
	if h.Credentials != nil {
		resp.CredentialConfigured = h.Credentials.CredentialConfigured(r.Context())
	}
	respondJSON(w, http.StatusOK, resp)
}

// HandleRegion returns the state of one region.
func (h *Handlers) HandleRegion(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	snap, err := h.Region.Query(r.Context(), queries.RegionInput{Widget: code})
	if err != nil {
		h.respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// HandleTrigger fires a bound trigger. Without ?wait=true the refresh runs in
// the background and the response is 202.
func (h *Handlers) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	var payload triggerRequest
	if err := decodeOptional(r.Body, &payload); err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))

	var result dashboard.TriggerResult
	err := h.Trigger.Execute(r.Context(), commands.FireTriggerInput{
		Trigger: chi.URLParam(r, "id"),
		Input:   payload.Input,
		Wait:    wait,
		Result:  func(res dashboard.TriggerResult) { result = res },
	})
	if err != nil {
		h.respondError(w, statusFor(err), err)
		return
	}

	resp := TriggerResponse{TriggerResult: result}
	status := http.StatusAccepted
	if wait {
		status = http.StatusOK
		if h.Region != nil && result.Message == "" {
			if snap, err := h.Region.Query(r.Context(), queries.RegionInput{Widget: result.Widget}); err == nil {
				resp.State = &snap.State
			}
		}
	}
	respondJSON(w, status, resp)
}

// HandleSaveCredential stores the movie API key.
func (h *Handlers) HandleSaveCredential(w http.ResponseWriter, r *http.Request) {
	var payload credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}
	var message string
	err := h.Credential.Execute(r.Context(), commands.SaveCredentialInput{
		Value: payload.Value,
		Saved: func(msg string) { message = msg },
	})
	if err != nil {
		h.respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, credentialResponse{Message: message})
}

func decodeOptional(body io.Reader, target any) error {
	if body == nil {
		return nil
	}
	if err := json.NewDecoder(body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
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

func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Referrer-Policy", "no-referrer")
}

func respondHTML(w http.ResponseWriter, body []byte) {
	setSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

// respondError sends a structured JSON error. Message is safe to show to a
// viewer; Error carries the full chain.
func (h *Handlers) respondError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError && h.Logger != nil {
		h.Logger.Error().Err(err).Int("status", status).Msg("dashboard request failed")
	}
	respondJSON(w, status, struct {
		Error   string `json:"error"`
		Status  int    `json:"status"`
		Message string `json:"message"`
	}{
		Error:   err.Error(),
		Status:  status,
		Message: dashboard.UserMessage(err),
	})
}
