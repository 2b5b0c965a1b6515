package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Chart colors for the delivery forecast
const (
	ColorOverdue    = "#8B0000"
	ColorOnSchedule = "steelblue"
)

// AggregateMetrics are the KPI values for a filtered record set
type AggregateMetrics struct {
	ShipCount   int             `json:"ship_count"`
	TruckCount  int             `json:"truck_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Total returns the number of records counted
func (m AggregateMetrics) Total() int {
	return m.ShipCount + m.TruckCount
}

// ChartPoint is one bar of the delivery forecast series
type ChartPoint struct {
	Label            string              `json:"label"`
	PONumber         string              `json:"po_number"`
	DeliveryDate     time.Time           `json:"delivery_date"`
	DaysUntilArrival int                 `json:"days_until_arrival"`
	Amount           decimal.NullDecimal `json:"amount"`
	TransportMode    TransportMode       `json:"transport_mode"`
	BarMagnitude     float64             `json:"bar_magnitude"`
	Overdue          bool                `json:"overdue"`
	Color            string              `json:"color"`
}

// Aggregation is the result of filtering a record set to a period
type Aggregation struct {
	Period  AnalysisPeriod   `json:"period"`
	Metrics AggregateMetrics `json:"metrics"`
	Series  []ChartPoint     `json:"series"`
	Records []ParsedShipment `json:"-"`
}

// Empty reports whether nothing is scheduled in the period
func (a Aggregation) Empty() bool {
	return len(a.Records) == 0
}

// CountryCount is the number of scheduled containers for a destination
type CountryCount struct {
	Country   string   `json:"country"`
	Count     int      `json:"count"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// ContainerDetail is a row of the selected-country table on the map view
type ContainerDetail struct {
	ContainerID      string              `json:"container_id"`
	DeliveryDateText string              `json:"delivery_date_text"`
	Amount           decimal.NullDecimal `json:"amount"`
	DeliveryDate     *time.Time          `json:"delivery_date"`
	Supplier         string              `json:"supplier"`
	Product          string              `json:"product"`
}
