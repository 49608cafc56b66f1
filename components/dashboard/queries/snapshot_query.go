package queries

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-apidash/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// SnapshotInput optionally restricts the snapshot to a set of widgets.
type SnapshotInput struct {
	Widgets []string `json:"widgets,omitempty"`
}

type snapshotService interface {
	Snapshot() []dashboard.RegionSnapshot
}

// SnapshotQuery reads every mounted region in display order.
type SnapshotQuery struct {
	service snapshotService
}

// NewSnapshotQuery builds the query.
func NewSnapshotQuery(service snapshotService) *SnapshotQuery {
	return &SnapshotQuery{service: service}
}

var _ gocommand.Querier[SnapshotInput, []dashboard.RegionSnapshot] = (*SnapshotQuery)(nil)

// Query returns the region snapshots, filtered by input.Widgets when set.
func (q *SnapshotQuery) Query(_ context.Context, input SnapshotInput) ([]dashboard.RegionSnapshot, error) {
	if q.service == nil {
		return nil, errors.New("snapshot query requires service")
	}
	all := q.service.Snapshot()
	if len(input.Widgets) == 0 {
		return all, nil
	}
	wanted := make(map[string]struct{}, len(input.Widgets))
	for _, code := range input.Widgets {
		wanted[code] = struct{}{}
	}
	out := make([]dashboard.RegionSnapshot, 0, len(input.Widgets))
	for _, snap := range all {
		if _, ok := wanted[snap.Widget]; ok {
			out = append(out, snap)
		}
	}
	return out, nil
}
