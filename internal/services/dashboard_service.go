package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/marcojr93/cntrackerv1/internal/calendar"
	"github.com/marcojr93/cntrackerv1/internal/dataprocessing"
	"github.com/marcojr93/cntrackerv1/internal/geo"
	"github.com/marcojr93/cntrackerv1/internal/infrastructure"
	"github.com/marcojr93/cntrackerv1/internal/register"
	"github.com/marcojr93/cntrackerv1/pkg/contracts/domain"
)

// AllCountries disables the selected-country detail on the map
const AllCountries = "All Countries"

// RegisterReader provides the currently loaded register
type RegisterReader interface {
	Snapshot() (*register.Snapshot, error)
}

// Dashboard is the KPI and forecast view for a selection
type Dashboard struct {
	WeekIndex     int                     `json:"week_index"`
	PreviousWeek  int                     `json:"previous_week_index"`
	NextWeek      int                     `json:"next_week_index"`
	Week          domain.WeekWindow       `json:"week"`
	Period        domain.AnalysisPeriod   `json:"period"`
	Metrics       domain.AggregateMetrics `json:"metrics"`
	MonthPeriod   domain.AnalysisPeriod   `json:"month_period"`
	MonthMetrics  domain.AggregateMetrics `json:"month_metrics"`
	Series        []domain.ChartPoint     `json:"series"`
	Empty         bool                    `json:"empty"`
	Now           time.Time               `json:"now"`
	RegisterSince time.Time               `json:"register_loaded_at"`
}

// MapSummary is the per-country view for a selection
type MapSummary struct {
	WeekIndex  int                      `json:"week_index"`
	Period     domain.AnalysisPeriod    `json:"period"`
	Countries  []domain.CountryCount    `json:"countries"`
	Selected   string                   `json:"selected_country,omitempty"`
	Containers []domain.ContainerDetail `json:"containers,omitempty"`
	Total      int                      `json:"total"`
	Empty      bool                     `json:"empty"`
}

// WeekCatalog lists the selectable weeks
type WeekCatalog struct {
	Weeks        []domain.WeekWindow `json:"weeks"`
	CurrentIndex int                 `json:"current_index"`
}

// MonthCatalog lists the selectable months
type MonthCatalog struct {
	Months       []domain.MonthOption `json:"months"`
	DefaultIndex int                  `json:"default_index"`
}

// DashboardService computes dashboard views from the loaded register
type DashboardService struct {
	register RegisterReader
	catalog  *calendar.Catalog
	months   []domain.MonthOption
	tracer   trace.Tracer
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewDashboardService creates a dashboard service. tracer and metrics may be nil.
func NewDashboardService(reg RegisterReader, catalog *calendar.Catalog, tracer trace.Tracer, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DashboardService {
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.InstrumentationName)
	}
	return &DashboardService{
		register: reg,
		catalog:  catalog,
		months:   calendar.MonthOptions(catalog.Years()),
		tracer:   tracer,
		metrics:  metrics,
		logger:   infrastructure.WithComponent(logger, "dashboard_service"),
		now:      time.Now,
	}
}

// Dashboard computes period KPIs, month KPIs and the forecast series
func (s *DashboardService) Dashboard(ctx context.Context, sel Selection) (_ *Dashboard, err error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.compute")
	start := time.Now()
	granularity := string(sel.Granularity)
	defer func() {
		s.metrics.RecordComputation(ctx, "dashboard", granularity, time.Since(start), err)
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
		span.End()
	}()

	snap, err := s.register.Snapshot()
	if err != nil {
		return nil, err
	}
	r, err := resolveSelection(s.catalog, sel, s.now)
	if err != nil {
		return nil, err
	}
	granularity = string(r.period.Granularity)
	span.SetAttributes(
		attribute.String("dashboard.week", r.week.Label),
		attribute.String("dashboard.granularity", granularity),
		attribute.String("dashboard.period", r.period.Label),
	)

	agg, err := dataprocessing.Aggregate(snap.Records, r.period, r.now)
	if err != nil {
		return nil, err
	}
	monthAgg, err := dataprocessing.Aggregate(snap.Records, r.month, r.now)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "dashboard computed",
		slog.String("period", r.period.Label),
		slog.Int("records", len(agg.Records)),
		slog.Int("ships", agg.Metrics.ShipCount),
		slog.Int("trucks", agg.Metrics.TruckCount))

	return &Dashboard{
		WeekIndex:     r.weekIndex,
		PreviousWeek:  s.catalog.Step(r.weekIndex, -1),
		NextWeek:      s.catalog.Step(r.weekIndex, 1),
		Week:          r.week,
		Period:        agg.Period,
		Metrics:       agg.Metrics,
		MonthPeriod:   monthAgg.Period,
		MonthMetrics:  monthAgg.Metrics,
		Series:        agg.Series,
		Empty:         agg.Empty(),
		Now:           r.now,
		RegisterSince: snap.Stats.LoadedAt,
	}, nil
}

// Map computes per-country counts for the selection. A country other than
// "" or AllCountries adds the matching container rows.
func (s *DashboardService) Map(ctx context.Context, sel Selection, country string) (_ *MapSummary, err error) {
	ctx, span := s.tracer.Start(ctx, "map.compute")
	start := time.Now()
	granularity := string(sel.Granularity)
	defer func() {
		s.metrics.RecordComputation(ctx, "map", granularity, time.Since(start), err)
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
		span.End()
	}()

	snap, err := s.register.Snapshot()
	if err != nil {
		return nil, err
	}
	r, err := resolveSelection(s.catalog, sel, s.now)
	if err != nil {
		return nil, err
	}
	granularity = string(r.period.Granularity)

	included := dataprocessing.FilterPeriod(snap.Records, r.period)
	summary := &MapSummary{
		WeekIndex: r.weekIndex,
		Period:    r.period,
		Countries: geo.Annotate(dataprocessing.CountryCounts(included)),
		Empty:     len(included) == 0,
	}

	country = strings.TrimSpace(country)
	if country != "" && !strings.EqualFold(country, AllCountries) {
		summary.Selected = country
		summary.Containers = dataprocessing.ContainersFor(included, country)
		summary.Total = len(summary.Containers)
	} else {
		summary.Total = len(included)
	}
	span.SetAttributes(
		attribute.Int("map.countries", len(summary.Countries)),
		attribute.String("map.selected", summary.Selected),
	)

	return summary, nil
}

// Records returns the parsed rows of the loaded register in sheet order
func (s *DashboardService) Records(ctx context.Context) ([]domain.ParsedShipment, error) {
	snap, err := s.register.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Records, nil
}

// Weeks returns the week catalog and the index of the week containing now
func (s *DashboardService) Weeks(now time.Time) WeekCatalog {
	if now.IsZero() {
		now = s.now()
	}
	return WeekCatalog{
		Weeks:        s.catalog.Weeks(),
		CurrentIndex: s.catalog.IndexOf(now),
	}
}

// Months returns the month options and the index of the month of now
func (s *DashboardService) Months(now time.Time) MonthCatalog {
	if now.IsZero() {
		now = s.now()
	}
	return MonthCatalog{
		Months:       append([]domain.MonthOption(nil), s.months...),
		DefaultIndex: calendar.DefaultMonthIndex(s.months, now),
	}
}
