// Package exporter writes dashboard tables as CSV.
//
// Output starts with a UTF-8 byte order mark by default so that Excel opens
// accented supplier names and the chart glyphs correctly. Amounts are written
// with two decimals and dates as YYYY-MM-DD.
//
//	err := exporter.WriteSeries(w, agg.Series)
//	err = exporter.WriteCountries(w, counts)
package exporter
