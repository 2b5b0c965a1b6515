package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransportMode identifies how a container reaches its destination
type TransportMode string

const (
	TransportShip  TransportMode = "ship"
	TransportTruck TransportMode = "truck"
)

// Glyph returns the symbol used in chart labels for the mode
func (m TransportMode) Glyph() string {
	if m == TransportTruck {
		return "🚛"
	}
	return "🚢"
}

// ShipmentRecord is one register row after positional extraction.
// Blank or missing cells are represented by the empty string.
type ShipmentRecord struct {
	Row                int    `json:"row"`
	Supplier           string `json:"supplier"`
	PONumber           string `json:"po_number"`
	Product            string `json:"product"`
	ContainerID        string `json:"container_id"`
	DestinationCountry string `json:"destination_country"`
	DeliveryDateText   string `json:"delivery_date_text"`
	TransportIndicator string `json:"transport_indicator"`
	AmountText         string `json:"amount_text"`
}

// ParsedShipment is a ShipmentRecord with its derived fields.
// DeliveryDate is nil when the date text could not be parsed and Amount is
// invalid when the amount text is not numeric.
type ParsedShipment struct {
	ShipmentRecord
	DeliveryDate  *time.Time          `json:"delivery_date"`
	Amount        decimal.NullDecimal `json:"amount"`
	TransportMode TransportMode       `json:"transport_mode"`
}

// HasDeliveryDate reports whether the delivery date text was parsed
func (p ParsedShipment) HasDeliveryDate() bool {
	return p.DeliveryDate != nil
}

// RuleKind names a truck detection heuristic
type RuleKind string

const (
	// RuleDoorDelivery marks a record as truck when the indicator equals a door delivery marker.
	RuleDoorDelivery RuleKind = "door_delivery"
	// RuleBlankShipping marks a record as truck when the shipping column is blank or a dash.
	RuleBlankShipping RuleKind = "blank_shipping"
)

// ClassificationRule configures how the transport indicator is read
type ClassificationRule struct {
	Kind         RuleKind `json:"kind" yaml:"kind" validate:"required,oneof=door_delivery blank_shipping"`
	Marker       string   `json:"marker,omitempty" yaml:"marker"`
	Placeholders []string `json:"placeholders,omitempty" yaml:"placeholders"`
}

// FieldLayout maps register columns (0-based) to record fields
type FieldLayout struct {
	Name              string             `json:"name" yaml:"name" validate:"required"`
	SupplierIndex     int                `json:"supplier_index" yaml:"supplier_index" validate:"min=0"`
	PONumberIndex     int                `json:"po_number_index" yaml:"po_number_index" validate:"min=0"`
	ProductIndex      int                `json:"product_index" yaml:"product_index" validate:"min=0"`
	ContainerIndex    int                `json:"container_index" yaml:"container_index" validate:"min=0"`
	CountryIndex      int                `json:"country_index" yaml:"country_index" validate:"min=0"`
	DeliveryDateIndex int                `json:"delivery_date_index" yaml:"delivery_date_index" validate:"min=0"`
	TransportIndex    int                `json:"transport_index" yaml:"transport_index" validate:"min=0"`
	AmountIndex       int                `json:"amount_index" yaml:"amount_index" validate:"min=0"`
	Rule              ClassificationRule `json:"rule" yaml:"rule" validate:"required"`
}

// Extract builds a ShipmentRecord from a row of cell values.
// Cells beyond the end of a short row read as blank.
func (l FieldLayout) Extract(row int, cells []string) ShipmentRecord {
	return ShipmentRecord{
		Row:                row,
		Supplier:           cellAt(cells, l.SupplierIndex),
		PONumber:           cellAt(cells, l.PONumberIndex),
		Product:            cellAt(cells, l.ProductIndex),
		ContainerID:        cellAt(cells, l.ContainerIndex),
		DestinationCountry: cellAt(cells, l.CountryIndex),
		DeliveryDateText:   cellAt(cells, l.DeliveryDateIndex),
		TransportIndicator: cellAt(cells, l.TransportIndex),
		AmountText:         cellAt(cells, l.AmountIndex),
	}
}

// MaxIndex returns the highest column index referenced by the layout
func (l FieldLayout) MaxIndex() int {
	max := 0
	for _, idx := range []int{
		l.SupplierIndex, l.PONumberIndex, l.ProductIndex, l.ContainerIndex,
		l.CountryIndex, l.DeliveryDateIndex, l.TransportIndex, l.AmountIndex,
	} {
		if idx > max {
			max = idx
		}
	}
	return max
}

func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}
