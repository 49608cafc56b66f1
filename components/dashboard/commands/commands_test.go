package commands

import (
	"context"
	"errors"
	"testing"

	dashboard "github.com/goliatone/go-apidash/components/dashboard"
)

type stubRefresher struct {
	sync, async int
	lastInput   string
	err         error
}

func (s *stubRefresher) Refresh(_ context.Context, _ string, input string) error {
	s.sync++
	s.lastInput = input
	return s.err
}

func (s *stubRefresher) RefreshAsync(_ context.Context, _ string, input string) error {
	s.async++
	s.lastInput = input
	return s.err
}

type stubFirer struct {
	fired, synced int
	err           error
}

func (s *stubFirer) Fire(_ context.Context, id, _ string) (dashboard.TriggerResult, error) {
	s.fired++
	return dashboard.TriggerResult{Trigger: id, Widget: dashboard.WidgetDog}, s.err
}

func (s *stubFirer) FireSync(_ context.Context, id, _ string) (dashboard.TriggerResult, error) {
	s.synced++
	return dashboard.TriggerResult{Trigger: id, Widget: dashboard.WidgetDog, Message: "done"}, s.err
}

type stubSaver struct {
	value string
	err   error
}

func (s *stubSaver) SaveCredential(_ context.Context, value string) (string, error) {
	s.value = value
	return "saved", s.err
}

type stubTelemetry struct {
	calls int
}

func (s *stubTelemetry) Record(context.Context, string, map[string]any) {
	s.calls++
}

func TestRefreshWidgetCommand(t *testing.T) {
	service := &stubRefresher{}
	telemetry := &stubTelemetry{}
	cmd := NewRefreshWidgetCommand(service, telemetry)

	if err := cmd.Execute(context.Background(), RefreshWidgetInput{Widget: dashboard.WidgetWeather, Input: "Oslo"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if err := cmd.Execute(context.Background(), RefreshWidgetInput{Widget: dashboard.WidgetWeather, Wait: true}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.async != 1 || service.sync != 1 {
		t.Fatalf("expected one async and one sync refresh, got %d/%d", service.async, service.sync)
	}
	if telemetry.calls != 2 {
		t.Fatalf("expected telemetry per refresh, got %d", telemetry.calls)
	}
}

func TestRefreshWidgetCommandValidates(t *testing.T) {
	if err := NewRefreshWidgetCommand(nil, nil).Execute(context.Background(), RefreshWidgetInput{Widget: "dog"}); err == nil {
		t.Fatalf("expected error without service")
	}
	if err := NewRefreshWidgetCommand(&stubRefresher{}, nil).Execute(context.Background(), RefreshWidgetInput{}); err == nil {
		t.Fatalf("expected error without widget code")
	}
	service := &stubRefresher{err: errors.New("unknown")}
	if err := NewRefreshWidgetCommand(service, nil).Execute(context.Background(), RefreshWidgetInput{Widget: "x"}); err == nil {
		t.Fatalf("expected service error to surface")
	}
}

func TestFireTriggerCommand(t *testing.T) {
	firer := &stubFirer{}
	cmd := NewFireTriggerCommand(firer, nil)
	var result dashboard.TriggerResult

	err := cmd.Execute(context.Background(), FireTriggerInput{
		Trigger: "refresh-dog",
		Wait:    true,
		Result:  func(r dashboard.TriggerResult) { result = r },
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if firer.synced != 1 || firer.fired != 0 {
		t.Fatalf("expected a synchronous fire")
	}
	if result.Message != "done" {
		t.Fatalf("expected result callback, got %+v", result)
	}
	if err := cmd.Execute(context.Background(), FireTriggerInput{Trigger: "refresh-dog"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if firer.fired != 1 {
		t.Fatalf("expected an async fire")
	}
	if err := cmd.Execute(context.Background(), FireTriggerInput{}); err == nil {
		t.Fatalf("expected error without trigger id")
	}
}

func TestSaveCredentialCommand(t *testing.T) {
	saver := &stubSaver{}
	var message string
	cmd := NewSaveCredentialCommand(saver, nil)
	if err := cmd.Execute(context.Background(), SaveCredentialInput{Value: "key", Saved: func(m string) { message = m }}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if saver.value != "key" || message != "saved" {
		t.Fatalf("expected credential to be saved, got %q/%q", saver.value, message)
	}

	saver.err = dashboard.ErrEmptyCredential
	if err := cmd.Execute(context.Background(), SaveCredentialInput{}); !dashboard.IsEmptyCredential(err) {
		t.Fatalf("expected empty credential error, got %v", err)
	}
}

func TestCommandsAgainstService(t *testing.T) {
	svc := dashboard.NewService(dashboard.Options{Widgets: []string{dashboard.WidgetMovies}})
	boot := dashboard.NewBootstrap(svc)
	if _, err := boot.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if err := NewFireTriggerCommand(boot, nil).Execute(context.Background(), FireTriggerInput{Trigger: "refresh-movies", Wait: true}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	state, err := svc.State(dashboard.WidgetMovies)
	if err != nil {
		t.Fatalf("State returned error: %v", err)
	}
	if state.Kind != dashboard.StatePrompt {
		t.Fatalf("expected prompt without a key, got %s", state.Kind)
	}
	if err := NewRefreshWidgetCommand(svc, nil).Execute(context.Background(), RefreshWidgetInput{Widget: "nope", Wait: true}); !dashboard.IsUnknownWidget(err) {
		t.Fatalf("expected unknown widget error, got %v", err)
	}
}
