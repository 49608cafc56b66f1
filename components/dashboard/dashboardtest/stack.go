package dashboardtest

import (
	"context"
	"testing"

	dashboard "github.com/goliatone/go-apidash/components/dashboard"
)

// Stack is a fully wired dashboard talking to a fake upstream. The initial
// loads have settled by the time NewStack returns.
type Stack struct {
	Upstream   *Upstream
	Service    *dashboard.Service
	Bootstrap  *dashboard.Bootstrap
	Controller *dashboard.Controller
	Broadcast  *dashboard.BroadcastHook
	Renderer   *Renderer
}

// NewStack builds the stack. configure may adjust the service options before
// the service is created.
func NewStack(t testing.TB, configure ...func(*dashboard.Options)) *Stack {
	t.Helper()
	upstream := NewUpstream(t)
	broadcast := dashboard.NewBroadcastHook()
	t.Cleanup(broadcast.Close)

	opts := dashboard.Options{
		Endpoints:   upstream.Endpoints(),
		RefreshHook: broadcast,
	}
	for _, fn := range configure {
		fn(&opts)
	}
	service := dashboard.NewService(opts)
	boot := dashboard.NewBootstrap(service)
	loads, err := boot.Start(context.Background())
	if err != nil {
		t.Fatalf("bootstrap start: %v", err)
	}
	loads.Wait()

	renderer := &Renderer{}
	controller := dashboard.NewController(dashboard.ControllerOptions{
		Service:   service,
		Bootstrap: boot,
		Renderer:  renderer,
	})
	return &Stack{
		Upstream:   upstream,
		Service:    service,
		Bootstrap:  boot,
		Controller: controller,
		Broadcast:  broadcast,
		Renderer:   renderer,
	}
}
