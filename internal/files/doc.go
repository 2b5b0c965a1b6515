// Package files locates and stores container register workbooks.
//
// Discovery resolves the configured register source: a workbook path is
// used directly, a directory yields its most recently modified .xlsx file.
// Manager keeps uploaded workbooks under timestamped names and prunes old
// ones.
//
//	d := files.NewDiscovery("")
//	src, err := d.Locate("data")        // newest data/*.xlsx
//
//	m := files.NewManager("data/uploads", logger)
//	path, err := m.Save(header.Filename, body)
package files
