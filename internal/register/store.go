package register

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/marcojr93/cntrackerv1/internal/dataprocessing"
	apierrors "github.com/marcojr93/cntrackerv1/internal/errors"
	"github.com/marcojr93/cntrackerv1/internal/files"
	"github.com/marcojr93/cntrackerv1/internal/infrastructure"
	"github.com/marcojr93/cntrackerv1/internal/validation"
	"github.com/marcojr93/cntrackerv1/pkg/contracts/domain"
)

// Load sources recorded in Stats and metrics
const (
	SourceFile   = "file"
	SourceUpload = "upload"
)

// ErrNotLoaded is the cause of the error returned while no register is held
var ErrNotLoaded = errors.New("register not loaded")

// DefaultKeepUploads is how many uploaded workbooks survive a prune
const DefaultKeepUploads = 10

// Stats describes the register currently held
type Stats struct {
	Source   string    `json:"source"`
	Path     string    `json:"path"`
	Sheet    string    `json:"sheet"`
	Layout   string    `json:"layout"`
	Headers  []string  `json:"headers"`
	LoadedAt time.Time `json:"loaded_at"`
	dataprocessing.QualityReport
}

// Snapshot is an immutable view of the loaded register
type Snapshot struct {
	Records []domain.ParsedShipment
	Stats   Stats
}

// Options configures a Store
type Options struct {
	// Source is a workbook path or a directory searched for the newest workbook
	Source      string
	Load        dataprocessing.LoadOptions
	Uploads     *files.Manager
	KeepUploads int
	Validator   *validation.FileValidator
	Tracer      trace.Tracer
	Metrics     *infrastructure.BusinessMetrics
	Logger      *slog.Logger
	Now         func() time.Time
}

// Store owns the loaded register
type Store struct {
	opts       Options
	classifier dataprocessing.Classifier
	discovery  *files.Discovery
	logger     *slog.Logger
	tracer     trace.Tracer

	group singleflight.Group

	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewStore creates an empty store. Nothing is read until Reload or Upload.
func NewStore(opts Options) (*Store, error) {
	classifier, err := dataprocessing.NewClassifier(opts.Load.Layout.Rule)
	if err != nil {
		return nil, apierrors.NewConfigError("invalid classification rule", err).
			WithContext("layout", opts.Load.Layout.Name)
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.KeepUploads <= 0 {
		opts.KeepUploads = DefaultKeepUploads
	}
	if opts.Validator == nil {
		opts.Validator = validation.NewFileValidator(opts.Logger)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.InstrumentationName)
	}

	return &Store{
		opts:       opts,
		classifier: classifier,
		discovery:  files.NewDiscovery(""),
		logger:     infrastructure.WithComponent(opts.Logger, "register"),
		tracer:     tracer,
	}, nil
}

// Snapshot returns the loaded register, or an UNAVAILABLE error wrapping
// ErrNotLoaded when nothing has been loaded yet.
func (s *Store) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, apierrors.NewUnavailableError("no container register has been loaded", ErrNotLoaded)
	}
	return s.snapshot, nil
}

// Loaded reports whether a register is held
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot != nil
}

// Reload re-reads the configured source. Callers arriving while a reload
// is in flight share its result.
func (s *Store) Reload(ctx context.Context) (Stats, error) {
	v, err, shared := s.group.Do("reload", func() (interface{}, error) {
		if s.opts.Source == "" {
			return Stats{}, apierrors.NewConfigError("no register source configured", nil)
		}
		src, err := s.discovery.Locate(s.opts.Source)
		if err != nil {
			return Stats{}, err
		}
		return s.LoadFile(ctx, src.Path, SourceFile)
	})
	if shared {
		s.logger.DebugContext(ctx, "reload shared with concurrent caller")
	}
	if err != nil {
		return Stats{}, err
	}
	return v.(Stats), nil
}

// LoadFile parses the workbook at path and publishes it. On failure the
// previous register is kept.
func (s *Store) LoadFile(ctx context.Context, path, source string) (stats Stats, err error) {
	ctx, span := s.tracer.Start(ctx, "register.load", trace.WithAttributes(
		attribute.String("register.source", source),
		attribute.String("register.path", path),
		attribute.String("register.layout", s.opts.Load.Layout.Name),
	))
	start := time.Now()
	defer func() {
		s.opts.Metrics.RecordRegisterLoad(ctx, source, stats.Rows, stats.UnparsableDates, time.Since(start), err)
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
		span.End()
	}()

	if err := s.opts.Validator.ValidateWorkbookFile(path); err != nil {
		s.logger.WarnContext(ctx, "register workbook rejected",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return Stats{}, err
	}

	reg, err := dataprocessing.ParseFile(path, s.opts.Load)
	if err != nil {
		s.logger.ErrorContext(ctx, "register load failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return Stats{}, err
	}

	records := dataprocessing.Normalize(reg.Records, s.classifier)
	stats = Stats{
		Source:        source,
		Path:          path,
		Sheet:         reg.Sheet,
		Layout:        s.opts.Load.Layout.Name,
		Headers:       reg.Headers,
		LoadedAt:      s.opts.Now(),
		QualityReport: dataprocessing.Assess(records),
	}

	s.mu.Lock()
	s.snapshot = &Snapshot{Records: records, Stats: stats}
	s.mu.Unlock()

	span.SetAttributes(
		attribute.Int("register.rows", stats.Rows),
		attribute.Int("register.unparsable_dates", stats.UnparsableDates),
	)
	s.logger.InfoContext(ctx, "register loaded",
		slog.String("source", source),
		slog.String("path", path),
		slog.String("sheet", stats.Sheet),
		slog.Int("rows", stats.Rows),
		slog.Int("unparsable_dates", stats.UnparsableDates),
		slog.Int("missing_dates", stats.MissingDates),
		slog.Int("non_numeric_amounts", stats.NonNumericAmount),
		slog.Duration("duration", time.Since(start)))

	return stats, nil
}

// Upload stores a user-supplied workbook and makes it the current register.
// A workbook that fails to load is removed again and the previous register
// stays in place.
func (s *Store) Upload(ctx context.Context, name string, r io.Reader) (Stats, error) {
	if s.opts.Uploads == nil {
		return Stats{}, apierrors.NewConfigError("uploads are not configured", nil)
	}
	if err := s.opts.Validator.ValidateUploadName(name); err != nil {
		return Stats{}, err
	}
	body, err := s.opts.Validator.ValidateWorkbookContent(r)
	if err != nil {
		return Stats{}, err
	}

	path, err := s.opts.Uploads.Save(name, body)
	if err != nil {
		return Stats{}, err
	}

	stats, err := s.LoadFile(ctx, path, SourceUpload)
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			s.logger.WarnContext(ctx, "failed to remove rejected upload",
				slog.String("path", path),
				slog.String("error", rmErr.Error()))
		}
		return Stats{}, err
	}

	if removed, err := s.opts.Uploads.Prune(s.opts.KeepUploads); err != nil {
		s.logger.WarnContext(ctx, "upload prune failed", slog.String("error", err.Error()))
	} else if removed > 0 {
		s.logger.DebugContext(ctx, "old uploads pruned", slog.Int("removed", removed))
	}

	return stats, nil
}
