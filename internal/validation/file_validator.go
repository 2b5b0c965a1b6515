package validation

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	apierrors "github.com/marcojr93/cntrackerv1/internal/errors"
	"github.com/marcojr93/cntrackerv1/internal/files"
)

// zipMagic opens every .xlsx file (Office Open XML is a zip container)
var zipMagic = []byte("PK\x03\x04")

// FileValidator checks register workbooks before they are parsed
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateUploadName rejects client file names that are not .xlsx workbooks
func (v *FileValidator) ValidateUploadName(name string) error {
	if name == "" {
		return apierrors.ErrValidation("file", "file name is required")
	}
	if !files.IsWorkbookName(name) {
		v.logger.Warn("upload rejected by name",
			slog.String("file", name),
			slog.String("extension", filepath.Ext(name)))
		return apierrors.NewWithDetails(
			apierrors.ErrUnsupportedUpload.StatusCode,
			apierrors.ErrUnsupportedUpload.ErrorCode,
			apierrors.ErrUnsupportedUpload.Message,
			map[string]string{"file": name},
		)
	}
	return nil
}

// ValidateWorkbookContent sniffs the zip signature of r. The returned
// reader replays the sniffed bytes and must be used instead of r.
func (v *FileValidator) ValidateWorkbookContent(r io.Reader) (io.Reader, error) {
	head := make([]byte, len(zipMagic))
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, apierrors.InvalidRequestWithError(err)
	}
	if n < len(zipMagic) || !bytes.Equal(head, zipMagic) {
		v.logger.Warn("upload rejected by content", slog.Int("bytes_read", n))
		return nil, apierrors.NewWithDetails(
			apierrors.ErrUnsupportedUpload.StatusCode,
			apierrors.ErrUnsupportedUpload.ErrorCode,
			"File content is not an .xlsx workbook",
			nil,
		)
	}
	return io.MultiReader(bytes.NewReader(head[:n]), r), nil
}

// ValidateWorkbookFile checks that path is a readable .xlsx workbook
func (v *FileValidator) ValidateWorkbookFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return apierrors.NewNotFoundError(fmt.Sprintf("workbook %s", path))
	}
	if err != nil {
		return apierrors.NewStorageError("stat workbook", err).WithContext("path", path)
	}
	if info.IsDir() {
		return apierrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a workbook", path))
	}
	if !files.IsWorkbookName(path) {
		return apierrors.NewAppValidationError(fmt.Sprintf("%s is not an %s workbook", path, files.WorkbookExt))
	}

	f, err := os.Open(path)
	if err != nil {
		return apierrors.NewStorageError("open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	if _, err := v.ValidateWorkbookContent(f); err != nil {
		return apierrors.NewParsingError(fmt.Sprintf("%s is not a valid workbook", path), err)
	}

	v.logger.Debug("workbook validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures dir exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("failed to create directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apierrors.NewStorageError("create directory", err).WithContext("dir", dir)
	}

	probe, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		v.logger.Error("directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apierrors.NewStorageError("directory is not writable", err).WithContext("dir", dir)
	}
	probe.Close()
	os.Remove(probe.Name())

	return nil
}
