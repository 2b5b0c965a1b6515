// Package register holds the container register currently served by the
// dashboard.
//
// A Store loads the workbook named by the configured source (a file, or the
// newest .xlsx in a directory), or one uploaded by a user, normalises its
// rows and keeps the result in memory. Readers take a Snapshot, which is
// never modified after it is published; a reload or upload swaps in a new
// one. Concurrent reloads are collapsed into a single read of the source.
package register
