package dataprocessing

import (
	"fmt"
	"strings"

	"github.com/marcojr93/cntrackerv1/pkg/contracts/domain"
)

// Preset layout names
const (
	LayoutSoon     = "soon"
	LayoutShipping = "shipping"
)

// identity columns shared by both known register variants:
// A supplier, B PO, E product, F container, J country, T delivery date.
func baseLayout(name string) domain.FieldLayout {
	return domain.FieldLayout{
		Name:              name,
		SupplierIndex:     0,
		PONumberIndex:     1,
		ProductIndex:      4,
		ContainerIndex:    5,
		CountryIndex:      9,
		DeliveryDateIndex: 19,
		TransportIndex:    20,
	}
}

// Presets returns the built-in register layouts keyed by name
func Presets() map[string]domain.FieldLayout {
	soon := baseLayout(LayoutSoon)
	soon.AmountIndex = 23
	soon.Rule = domain.ClassificationRule{Kind: domain.RuleDoorDelivery, Marker: DefaultDoorMarker}

	shipping := baseLayout(LayoutShipping)
	shipping.AmountIndex = 22
	shipping.Rule = domain.ClassificationRule{Kind: domain.RuleBlankShipping, Placeholders: DefaultPlaceholders}

	return map[string]domain.FieldLayout{
		LayoutSoon:     soon,
		LayoutShipping: shipping,
	}
}

// ResolveLayout finds a layout by name among the custom layouts first,
// then the presets. Matching ignores case.
func ResolveLayout(name string, custom []domain.FieldLayout) (domain.FieldLayout, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = LayoutSoon
	}
	for _, l := range custom {
		if strings.ToLower(l.Name) == key {
			return l, nil
		}
	}
	if l, ok := Presets()[key]; ok {
		return l, nil
	}
	return domain.FieldLayout{}, fmt.Errorf("unknown field layout %q", name)
}
