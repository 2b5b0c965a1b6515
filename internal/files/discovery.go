package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apierrors "github.com/marcojr93/cntrackerv1/internal/errors"
)

// WorkbookExt is the only register format excelize can open
const WorkbookExt = ".xlsx"

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Discovery locates register workbooks
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance. Relative paths are
// resolved against basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(path string) string {
	if filepath.IsAbs(path) || d.basePath == "" {
		return path
	}
	return filepath.Join(d.basePath, path)
}

// IsWorkbookName reports whether name looks like a register workbook. Office
// lock files ("~$name.xlsx") are excluded.
func IsWorkbookName(name string) bool {
	base := filepath.Base(name)
	return strings.EqualFold(filepath.Ext(base), WorkbookExt) && !strings.HasPrefix(base, "~$")
}

// FindWorkbooks lists the workbooks in dir, newest first. Ties on
// modification time are broken by name.
func (d *Discovery) FindWorkbooks(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !IsWorkbookName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// Locate resolves a register source: a workbook path is returned as is, a
// directory yields its newest workbook.
func (d *Discovery) Locate(path string) (FileInfo, error) {
	fullPath := d.resolve(path)

	info, err := os.Stat(fullPath)
	if os.IsNotExist(err) {
		return FileInfo{}, apierrors.NewNotFoundError(fmt.Sprintf("register source %s", fullPath))
	}
	if err != nil {
		return FileInfo{}, apierrors.NewStorageError("stat register source", err).WithContext("path", fullPath)
	}

	if !info.IsDir() {
		if !IsWorkbookName(info.Name()) {
			return FileInfo{}, apierrors.NewAppValidationError(fmt.Sprintf("%s is not an %s workbook", fullPath, WorkbookExt))
		}
		return FileInfo{Path: fullPath, Name: info.Name(), Size: info.Size(), ModTime: info.ModTime()}, nil
	}

	files, err := d.FindWorkbooks(fullPath)
	if err != nil {
		return FileInfo{}, apierrors.NewStorageError("list register directory", err).WithContext("path", fullPath)
	}
	if len(files) == 0 {
		return FileInfo{}, apierrors.NewNotFoundError(fmt.Sprintf("%s workbook in %s", WorkbookExt, fullPath))
	}
	return files[0], nil
}
