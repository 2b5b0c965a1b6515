package http

import (
	"context"
	"io"
	"time"

	"github.com/marcojr93/cntrackerv1/internal/register"
	"github.com/marcojr93/cntrackerv1/internal/services"
	"github.com/marcojr93/cntrackerv1/pkg/contracts/domain"
)

// DashboardProvider computes the dashboard views
type DashboardProvider interface {
	Dashboard(ctx context.Context, sel services.Selection) (*services.Dashboard, error)
	Map(ctx context.Context, sel services.Selection, country string) (*services.MapSummary, error)
	Records(ctx context.Context) ([]domain.ParsedShipment, error)
	Weeks(now time.Time) services.WeekCatalog
	Months(now time.Time) services.MonthCatalog
}

// RegisterManager loads and replaces the served register
type RegisterManager interface {
	Snapshot() (*register.Snapshot, error)
	Reload(ctx context.Context) (register.Stats, error)
	Upload(ctx context.Context, name string, r io.Reader) (register.Stats, error)
}
