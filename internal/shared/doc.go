// Package shared holds code used by several packages that belongs to none
// of them. Today that is only the testutil subpackage: a slog capture
// handler for asserting on log output and an excelize-based generator for
// register workbooks.
package shared
