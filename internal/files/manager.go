package files

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	apierrors "github.com/marcojr93/cntrackerv1/internal/errors"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Manager stores uploaded register workbooks in one directory
type Manager struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewManager creates a new upload store rooted at dir
func NewManager(dir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		dir:    dir,
		logger: logger.With(slog.String("component", "upload_store")),
		now:    time.Now,
	}
}

// Dir returns the upload directory
func (m *Manager) Dir() string {
	return m.dir
}

// SafeName reduces a client file name to a plain base name
func SafeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.TrimLeft(base, "._")
	if base == "" {
		base = "register" + WorkbookExt
	}
	return base
}

// Save writes r to a timestamped file in the upload directory. The data is
// staged in a temp file and renamed, so readers never see a partial workbook.
func (m *Manager) Save(name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return "", apierrors.NewStorageError("create upload directory", err).WithContext("dir", m.dir)
	}

	tmp, err := os.CreateTemp(m.dir, ".upload-*")
	if err != nil {
		return "", apierrors.NewStorageError("create upload file", err).WithContext("dir", m.dir)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	dest := filepath.Join(m.dir, fmt.Sprintf("%s_%s", m.now().UTC().Format("20060102T150405"), SafeName(name)))
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", apierrors.NewStorageError("store upload", err).WithContext("path", dest)
	}

	m.logger.Info("upload stored",
		slog.String("path", dest),
		slog.Int64("size_bytes", written))
	return dest, nil
}

// Prune deletes all but the newest keep workbooks in the upload directory
func (m *Manager) Prune(keep int) (int, error) {
	files, err := NewDiscovery("").FindWorkbooks(m.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, apierrors.NewStorageError("list uploads", err)
	}
	if keep < 0 {
		keep = 0
	}

	removed := 0
	for _, f := range files[min(keep, len(files)):] {
		if err := os.Remove(f.Path); err != nil {
			m.logger.Warn("failed to prune upload", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		removed++
	}
	if removed > 0 {
		m.logger.Debug("uploads pruned", slog.Int("removed", removed), slog.Int("kept", keep))
	}
	return removed, nil
}
