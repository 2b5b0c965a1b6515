package dataprocessing

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/marcojr93/cntrackerv1/pkg/contracts/domain"
)

// groupedAmount matches comma thousands grouping such as "1,250.50"
var groupedAmount = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// ParseAmount coerces an amount cell to a decimal. Commas are accepted only
// as thousands separators; anything else non-numeric, decimal commas
// included, yields an invalid NullDecimal.
func ParseAmount(text string) decimal.NullDecimal {
	text = strings.TrimSpace(text)
	if groupedAmount.MatchString(text) {
		text = strings.ReplaceAll(text, ",", "")
	}
	if text == "" || strings.Contains(text, ",") {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// ParseShipment derives the delivery date, amount and transport mode of a record.
// It never fails: malformed cells become nil or invalid values.
func ParseShipment(rec domain.ShipmentRecord, classifier Classifier) domain.ParsedShipment {
	parsed := domain.ParsedShipment{
		ShipmentRecord: rec,
		Amount:         ParseAmount(rec.AmountText),
		TransportMode:  classifier.Classify(rec.TransportIndicator),
	}
	if date, ok := ParseDeliveryDate(rec.DeliveryDateText); ok {
		parsed.DeliveryDate = &date
	}
	return parsed
}

// Normalize parses every record in order
func Normalize(records []domain.ShipmentRecord, classifier Classifier) []domain.ParsedShipment {
	out := make([]domain.ParsedShipment, 0, len(records))
	for _, rec := range records {
		out = append(out, ParseShipment(rec, classifier))
	}
	return out
}

// QualityReport counts the data problems absorbed during normalisation
type QualityReport struct {
	Rows             int `json:"rows"`
	UnparsableDates  int `json:"unparsable_dates"`
	MissingDates     int `json:"missing_dates"`
	NonNumericAmount int `json:"non_numeric_amounts"`
	Ships            int `json:"ships"`
	Trucks           int `json:"trucks"`
}

// Assess summarises a normalised record set. Blank date cells are counted
// as missing, non-blank ones that failed to parse as unparsable.
func Assess(records []domain.ParsedShipment) QualityReport {
	report := QualityReport{Rows: len(records)}
	for _, rec := range records {
		if rec.DeliveryDate == nil {
			if strings.TrimSpace(rec.DeliveryDateText) == "" {
				report.MissingDates++
			} else {
				report.UnparsableDates++
			}
		}
		if !rec.Amount.Valid && strings.TrimSpace(rec.AmountText) != "" {
			report.NonNumericAmount++
		}
		if rec.TransportMode == domain.TransportTruck {
			report.Trucks++
		} else {
			report.Ships++
		}
	}
	return report
}
