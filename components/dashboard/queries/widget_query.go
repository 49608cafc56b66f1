package queries

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-apidash/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// RegionInput identifies one widget region.
type RegionInput struct {
	Widget string `json:"widget"`
}

type regionService interface {
	RegionSnapshot(code string) (dashboard.RegionSnapshot, error)
}

// RegionQuery reads the current state of a single region.
type RegionQuery struct {
	service regionService
}

// NewRegionQuery builds the query.
func NewRegionQuery(service regionService) *RegionQuery {
	return &RegionQuery{service: service}
}

var _ gocommand.Querier[RegionInput, dashboard.RegionSnapshot] = (*RegionQuery)(nil)

// Query returns the region snapshot of the widget.
func (q *RegionQuery) Query(_ context.Context, input RegionInput) (dashboard.RegionSnapshot, error) {
	if q.service == nil {
		return dashboard.RegionSnapshot{}, errors.New("region query requires service")
	}
	return q.service.RegionSnapshot(input.Widget)
}
