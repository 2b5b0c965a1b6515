package dataprocessing

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	apierrors "github.com/marcojr93/cntrackerv1/internal/errors"
	"github.com/marcojr93/cntrackerv1/pkg/contracts/domain"
)

// ErrInvalidPeriod is returned when a period starts after it ends
var ErrInvalidPeriod = errors.New("invalid period: start after end")

// barFloor keeps same-day deliveries visible as a sliver on the chart
const barFloor = 0.1

const secondsPerDay = 24 * 60 * 60

// Aggregate filters records to the period and computes KPIs and the
// delivery forecast series relative to the calendar date of now.
func Aggregate(records []domain.ParsedShipment, period domain.AnalysisPeriod, now time.Time) (domain.Aggregation, error) {
	if period.Start.After(period.End) {
		return domain.Aggregation{}, apierrors.NewAppError(apierrors.ErrTypeValidation,
			fmt.Sprintf("period %s to %s", period.Start.Format(time.DateOnly), period.End.Format(time.DateOnly)),
			ErrInvalidPeriod)
	}

	included := FilterPeriod(records, period)
	sortByDeliveryDesc(included)

	result := domain.Aggregation{
		Period:  period,
		Metrics: Metrics(included),
		Series:  make([]domain.ChartPoint, 0, len(included)),
		Records: included,
	}

	today := dateOnly(now)
	for _, rec := range included {
		result.Series = append(result.Series, chartPoint(rec, today))
	}

	return result, nil
}

// FilterPeriod returns the date-bearing records inside the period, bounds inclusive
func FilterPeriod(records []domain.ParsedShipment, period domain.AnalysisPeriod) []domain.ParsedShipment {
	out := make([]domain.ParsedShipment, 0)
	for _, rec := range records {
		if rec.DeliveryDate == nil {
			continue
		}
		if period.Contains(*rec.DeliveryDate) {
			out = append(out, rec)
		}
	}
	return out
}

// Metrics counts ships and trucks and sums the valid amounts
func Metrics(records []domain.ParsedShipment) domain.AggregateMetrics {
	m := domain.AggregateMetrics{TotalAmount: decimal.Zero}
	for _, rec := range records {
		if rec.TransportMode == domain.TransportTruck {
			m.TruckCount++
		} else {
			m.ShipCount++
		}
		if rec.Amount.Valid {
			m.TotalAmount = m.TotalAmount.Add(rec.Amount.Decimal)
		}
	}
	return m
}

// DaysUntil returns the whole days from today to date, negative when past
func DaysUntil(date, today time.Time) int {
	return int((dateOnly(date).Unix() - dateOnly(today).Unix()) / secondsPerDay)
}

// BarMagnitude is days unless it is too short to draw, then ±0.1
func BarMagnitude(days int) float64 {
	v := float64(days)
	if math.Abs(v) < barFloor {
		if days >= 0 {
			return barFloor
		}
		return -barFloor
	}
	return v
}

// ChartLabel formats the y-axis label of a forecast bar
func ChartLabel(rec domain.ParsedShipment) string {
	return fmt.Sprintf("%s %s - %s - %s", rec.TransportMode.Glyph(), rec.PONumber, rec.Product, rec.Supplier)
}

func chartPoint(rec domain.ParsedShipment, today time.Time) domain.ChartPoint {
	days := DaysUntil(*rec.DeliveryDate, today)
	overdue := days < 0
	color := domain.ColorOnSchedule
	if overdue {
		color = domain.ColorOverdue
	}
	return domain.ChartPoint{
		Label:            ChartLabel(rec),
		PONumber:         rec.PONumber,
		DeliveryDate:     *rec.DeliveryDate,
		DaysUntilArrival: days,
		Amount:           rec.Amount,
		TransportMode:    rec.TransportMode,
		BarMagnitude:     BarMagnitude(days),
		Overdue:          overdue,
		Color:            color,
	}
}

// sortByDeliveryDesc orders latest deliveries first, ties by sheet row
func sortByDeliveryDesc(records []domain.ParsedShipment) {
	sort.SliceStable(records, func(i, j int) bool {
		di, dj := *records[i].DeliveryDate, *records[j].DeliveryDate
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return records[i].Row < records[j].Row
	})
}
