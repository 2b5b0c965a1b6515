package dataprocessing

import (
	"fmt"
	"strings"

	"github.com/marcojr93/cntrackerv1/pkg/contracts/domain"
)

// DefaultDoorMarker is the indicator value that marks door delivery by truck
const DefaultDoorMarker = "TO DOOR"

// DefaultPlaceholders are the values treated as an empty shipping column
var DefaultPlaceholders = []string{"-", "–", "—"}

// Classifier assigns a transport mode from the raw indicator cell.
// The zero value classifies everything as ship.
type Classifier struct {
	kind         domain.RuleKind
	marker       string
	placeholders map[string]struct{}
}

// NewClassifier builds a classifier for the rule. Unknown rule kinds are rejected.
func NewClassifier(rule domain.ClassificationRule) (Classifier, error) {
	c := Classifier{kind: rule.Kind}

	switch rule.Kind {
	case domain.RuleDoorDelivery:
		c.marker = strings.ToUpper(strings.TrimSpace(rule.Marker))
		if c.marker == "" {
			c.marker = DefaultDoorMarker
		}
	case domain.RuleBlankShipping:
		placeholders := rule.Placeholders
		if len(placeholders) == 0 {
			placeholders = DefaultPlaceholders
		}
		c.placeholders = make(map[string]struct{}, len(placeholders))
		for _, p := range placeholders {
			c.placeholders[strings.TrimSpace(p)] = struct{}{}
		}
	default:
		return Classifier{}, fmt.Errorf("unknown classification rule %q", rule.Kind)
	}

	return c, nil
}

// Classify returns the transport mode for a raw indicator value
func (c Classifier) Classify(value string) domain.TransportMode {
	value = strings.TrimSpace(value)

	switch c.kind {
	case domain.RuleDoorDelivery:
		if value != "" && strings.ToUpper(value) == c.marker {
			return domain.TransportTruck
		}
	case domain.RuleBlankShipping:
		if value == "" {
			return domain.TransportTruck
		}
		if _, ok := c.placeholders[value]; ok {
			return domain.TransportTruck
		}
	}

	return domain.TransportShip
}

// Kind returns the rule the classifier applies
func (c Classifier) Kind() domain.RuleKind {
	return c.kind
}
