package dataprocessing

import (
	"sort"
	"strings"

	"github.com/marcojr93/cntrackerv1/pkg/contracts/domain"
)

// CountryCounts groups records by destination country, largest first.
// Names are grouped case-insensitively under the first spelling seen. Blank
// countries are skipped; equal counts are ordered by name.
func CountryCounts(records []domain.ParsedShipment) []domain.CountryCount {
	index := make(map[string]int)
	out := make([]domain.CountryCount, 0)
	for _, rec := range records {
		country := strings.TrimSpace(rec.DestinationCountry)
		if country == "" {
			continue
		}
		key := strings.ToLower(country)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, domain.CountryCount{Country: country})
		}
		out[i].Count++
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Country < out[j].Country
	})
	return out
}

// ContainersFor lists the records shipped to a country (case-insensitive)
func ContainersFor(records []domain.ParsedShipment, country string) []domain.ContainerDetail {
	country = strings.TrimSpace(country)
	out := make([]domain.ContainerDetail, 0)
	for _, rec := range records {
		if !strings.EqualFold(strings.TrimSpace(rec.DestinationCountry), country) {
			continue
		}
		out = append(out, domain.ContainerDetail{
			ContainerID:      rec.ContainerID,
			DeliveryDateText: rec.DeliveryDateText,
			Amount:           rec.Amount,
			DeliveryDate:     rec.DeliveryDate,
			Supplier:         rec.Supplier,
			Product:          rec.Product,
		})
	}
	return out
}
