package exporter

import (
	"io"
	"strconv"

	"github.com/marcojr93/cntrackerv1/pkg/contracts/domain"
)

// Column headers of the exported tables
var (
	SeriesHeaders    = []string{"Label", "PO", "Delivery Date", "Days Until Arrival", "Transport", "Amount", "Overdue"}
	CountryHeaders   = []string{"Country", "Container Count", "Latitude", "Longitude"}
	ContainerHeaders = []string{"Container ID", "Destination", "Amount", "Delivery Date", "Supplier", "Product"}
)

// SeriesRecords converts chart points to CSV rows in series order
func SeriesRecords(series []domain.ChartPoint) [][]string {
	records := make([][]string, 0, len(series))
	for _, p := range series {
		records = append(records, []string{
			p.Label,
			p.PONumber,
			formatDate(p.DeliveryDate),
			strconv.Itoa(p.DaysUntilArrival),
			string(p.TransportMode),
			formatAmount(p.Amount),
			formatBool(p.Overdue),
		})
	}
	return records
}

// CountryRecords converts a per-country summary to CSV rows
func CountryRecords(counts []domain.CountryCount) [][]string {
	records := make([][]string, 0, len(counts))
	for _, c := range counts {
		records = append(records, []string{
			c.Country,
			strconv.Itoa(c.Count),
			formatCoordinate(c.Latitude),
			formatCoordinate(c.Longitude),
		})
	}
	return records
}

// ContainerRecords converts selected-country rows to CSV rows
func ContainerRecords(details []domain.ContainerDetail) [][]string {
	records := make([][]string, 0, len(details))
	for _, d := range details {
		records = append(records, []string{
			d.ContainerID,
			d.DeliveryDateText,
			formatAmount(d.Amount),
			formatDatePtr(d.DeliveryDate),
			d.Supplier,
			d.Product,
		})
	}
	return records
}

// WriteSeries writes the delivery forecast series
func WriteSeries(w io.Writer, series []domain.ChartPoint) error {
	return Write(w, WriteOptions{Headers: SeriesHeaders, Records: SeriesRecords(series)})
}

// WriteCountries writes the per-country summary
func WriteCountries(w io.Writer, counts []domain.CountryCount) error {
	return Write(w, WriteOptions{Headers: CountryHeaders, Records: CountryRecords(counts)})
}

// WriteContainers writes the selected-country detail table
func WriteContainers(w io.Writer, details []domain.ContainerDetail) error {
	return Write(w, WriteOptions{Headers: ContainerHeaders, Records: ContainerRecords(details)})
}
