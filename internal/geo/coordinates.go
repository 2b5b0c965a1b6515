// Package geo places destination countries on the map view.
//
// Lookups go through a static table of country centroids keyed by upper-cased
// name, so "germany", "Germany" and "GERMANY " all resolve. Aliases such as
// USA and UK share a point with their long names.
package geo

import (
	"sort"
	"strings"

	"github.com/marcojr93/cntrackerv1/pkg/contracts/domain"
)

// Point is a latitude/longitude pair in decimal degrees
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

var centroids = map[string]Point{
	"USA":            {39.8283, -98.5795},
	"UNITED STATES":  {39.8283, -98.5795},
	"CANADA":         {56.1304, -106.3468},
	"BRAZIL":         {-14.2350, -51.9253},
	"GERMANY":        {51.1657, 10.4515},
	"FRANCE":         {46.6034, 1.8883},
	"ITALY":          {41.8719, 12.5674},
	"SPAIN":          {40.4637, -3.7492},
	"UK":             {55.3781, -3.4360},
	"UNITED KINGDOM": {55.3781, -3.4360},
	"JAPAN":          {36.2048, 138.2529},
	"CHINA":          {35.8617, 104.1954},
	"INDIA":          {20.5937, 78.9629},
	"AUSTRALIA":      {-25.2744, 133.7751},
	"MEXICO":         {23.6345, -102.5528},
	"ARGENTINA":      {-38.4161, -63.6167},
	"RUSSIA":         {61.5240, 105.3188},
	"SOUTH KOREA":    {35.9078, 127.7669},
	"NETHERLANDS":    {52.1326, 5.2913},
	"BELGIUM":        {50.5039, 4.4699},
	"SWEDEN":         {60.1282, 18.6435},
	"NORWAY":         {60.4720, 8.4689},
	"DENMARK":        {56.2639, 9.5018},
	"FINLAND":        {61.9241, 25.7482},
	"POLAND":         {51.9194, 19.1451},
	"TURKEY":         {38.9637, 35.2433},
	"SOUTH AFRICA":   {-30.5595, 22.9375},
	"EGYPT":          {26.0975, 30.0444},
	"THAILAND":       {15.8700, 100.9925},
	"VIETNAM":        {14.0583, 108.2772},
	"SINGAPORE":      {1.3521, 103.8198},
	"MALAYSIA":       {4.2105, 101.9758},
	"INDONESIA":      {-0.7893, 113.9213},
	"PHILIPPINES":    {12.8797, 121.7740},
	"CHILE":          {-35.6751, -71.5430},
	"PERU":           {-9.1900, -75.0152},
	"COLOMBIA":       {4.5709, -74.2973},
	"VENEZUELA":      {6.4238, -66.5897},
}

// Lookup returns the centroid of a country, ignoring case and padding
func Lookup(country string) (Point, bool) {
	p, ok := centroids[strings.ToUpper(strings.TrimSpace(country))]
	return p, ok
}

// Annotate fills in coordinates on a copy of counts. Countries missing from
// the table keep nil coordinates and are still returned.
func Annotate(counts []domain.CountryCount) []domain.CountryCount {
	out := make([]domain.CountryCount, len(counts))
	for i, c := range counts {
		if p, ok := Lookup(c.Country); ok {
			lat, lon := p.Latitude, p.Longitude
			c.Latitude, c.Longitude = &lat, &lon
		}
		out[i] = c
	}
	return out
}

// Known lists the table keys in alphabetical order
func Known() []string {
	names := make([]string, 0, len(centroids))
	for name := range centroids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
