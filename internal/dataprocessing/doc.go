// Package dataprocessing turns container register workbooks into dashboard
// figures.
//
// # Pipeline
//
//  1. Parser: ParseFile / ParseReader read one worksheet with excelize and
//     map the configured column layout onto raw ShipmentRecords.
//  2. Normalize: delivery dates are parsed from the register's free text
//     ("Week July 28th, 2025", "2025-07-28", Excel serials), amounts become
//     decimals and the layout's classification rule assigns ship or truck.
//  3. Aggregate: records are filtered to an analysis period and reduced to
//     KPIs and the forecast series; CountryCounts and ContainersFor feed the
//     map view.
//
// # Usage
//
//	opts := dataprocessing.LoadOptions{Layout: dataprocessing.Presets()[dataprocessing.LayoutSoon]}
//	reg, err := dataprocessing.ParseFile("register.xlsx", opts)
//	if err != nil {
//	    return err
//	}
//	classifier, _ := dataprocessing.NewClassifier(opts.Layout.Rule)
//	parsed := dataprocessing.Normalize(reg.Records, classifier)
//	agg, err := dataprocessing.Aggregate(parsed, period, time.Now())
//
// Rows whose delivery date cannot be parsed are kept with a nil date: they
// count in Assess but never fall inside a period.
//
// All functions are pure and safe for concurrent use.
package dataprocessing
