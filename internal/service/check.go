package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"plagcheck/internal/cache"
	"plagcheck/internal/extract"
	"plagcheck/internal/metrics"
	"plagcheck/internal/model"
	"plagcheck/internal/report"
	"plagcheck/internal/repository"
	"plagcheck/internal/similarity"
	"plagcheck/internal/storage"
	"plagcheck/internal/suggest"
)

var (
	ErrFilesRequired       = errors.New("please upload both the document and the folder")
	ErrUnsupportedDocument = errors.New("main document cannot be read")
	ErrIDRequired          = errors.New("id is required")
	ErrNotFound            = errors.New("report not found")
)

const (
	defaultWorkers = 4
	defaultLimit   = 10
	maxLimit       = 100
)

// ReportListResult is a page of report summaries.
type ReportListResult struct {
	Items []model.Report `json:"data"`
	Total int            `json:"total"`
}

// CheckService runs plagiarism checks and manages the stored reports.
type CheckService interface {
	// Check compares main against every folder file, archives the uploads and stores the
	// report. Results keep the folder order.
	Check(ctx context.Context, main model.UploadedFile, folder []model.UploadedFile) (*model.Report, error)
	List(ctx context.Context, limit, offset int) (*ReportListResult, error)
	Get(ctx context.Context, id string) (*model.Report, error)
	// MainDocument streams the archived main document of a report.
	MainDocument(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error)
	// Delete removes the archived objects, then the report row.
	Delete(ctx context.Context, id string) error
}

// Option customises a CheckService.
type Option func(*checkService)

// WithCache enables the comparison cache.
func WithCache(c cache.ComparisonCache) Option {
	return func(s *checkService) { s.cache = c }
}

func WithMetrics(m *metrics.CheckMetrics) Option {
	return func(s *checkService) { s.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *checkService) { s.log = l }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *checkService) { s.tracer = tp.Tracer("plagcheck/service") }
}

// WithWorkers bounds how many folder files are compared at once.
func WithWorkers(n int) Option {
	return func(s *checkService) {
		if n > 0 {
			s.workers = n
		}
	}
}

type checkService struct {
	store     storage.Storage
	repo      repository.ReportRepository
	suggester suggest.Suggester
	cache     cache.ComparisonCache
	metrics   *metrics.CheckMetrics
	log       *zap.Logger
	tracer    trace.Tracer
	workers   int

	now   func() time.Time
	newID func() string
}

// NewCheckService builds the service. A nil suggester means the heuristic one.
func NewCheckService(store storage.Storage, repo repository.ReportRepository, sg suggest.Suggester, opts ...Option) CheckService {
	if sg == nil {
		sg = suggest.Heuristic{}
	}
	s := &checkService{
		store:     store,
		repo:      repo,
		suggester: sg,
		log:       zap.NewNop(),
		tracer:    otel.Tracer("plagcheck/service"),
		workers:   defaultWorkers,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *checkService) Check(ctx context.Context, main model.UploadedFile, folder []model.UploadedFile) (*model.Report, error) {
	ctx, span := s.tracer.Start(ctx, "CheckService.Check", trace.WithAttributes(
		attribute.String("plagcheck.main_document", main.Name),
		attribute.Int("plagcheck.folder_files", len(folder)),
	))
	defer span.End()

	rep, err := s.check(ctx, main, folder)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("plagcheck.report_id", rep.ID))
	return rep, nil
}

func (s *checkService) check(ctx context.Context, main model.UploadedFile, folder []model.UploadedFile) (*model.Report, error) {
	if main.Name == "" || len(folder) == 0 {
		s.metrics.Check(metrics.OutcomeRejected)
		return nil, ErrFilesRequired
	}

	mainText, err := extract.Text(main)
	if err != nil {
		s.metrics.Check(metrics.OutcomeUnsupported)
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedDocument, err)
	}

	results, err := s.compareAll(ctx, mainText, folder)
	if err != nil {
		s.metrics.Check(metrics.OutcomeFailed)
		return nil, err
	}

	rep := &model.Report{
		ID:                s.newID(),
		MainDocument:      main.Name,
		AveragePercentage: report.Average(results),
		FileCount:         len(results),
		Files:             results,
		CreatedAt:         s.now(),
	}
	rep.StoragePrefix = storage.ReportPrefix(rep.ID)

	stored, err := s.persist(ctx, rep, main, folder)
	if err != nil {
		s.metrics.Check(metrics.OutcomeFailed)
		return nil, err
	}

	s.metrics.Check(metrics.OutcomeSuccess)
	s.log.Info("check_completed",
		zap.String("report_id", stored.ID),
		zap.String("main_document", stored.MainDocument),
		zap.Int("file_count", stored.FileCount),
		zap.Float64("average_percentage", stored.AveragePercentage),
	)
	return stored, nil
}

func (s *checkService) compareAll(ctx context.Context, mainText string, folder []model.UploadedFile) ([]model.FileResult, error) {
	results := make([]model.FileResult, len(folder))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, f := range folder {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.compareOne(gctx, mainText, f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compare folder: %w", err)
	}
	return results, nil
}

func (s *checkService) compareOne(ctx context.Context, mainText string, f model.UploadedFile) model.FileResult {
	text, err := extract.Text(f)
	if err != nil {
		s.metrics.FileError()
		s.log.Debug("file_unreadable", zap.String("file_name", f.Name), zap.Error(err))
		return model.FileResult{FileName: f.Name, Error: err.Error()}
	}

	res := s.score(ctx, mainText, text)

	suggestions, err := s.suggester.Suggest(ctx, res.Matches)
	if err != nil {
		s.log.Warn("suggestions_failed", zap.String("file_name", f.Name), zap.Error(err))
		suggestions, _ = suggest.Heuristic{}.Suggest(ctx, res.Matches)
	}

	s.metrics.FilePercentage(res.Percentage)
	return model.FileResult{
		FileName:             f.Name,
		PlagiarismPercentage: model.Percent(res.Percentage),
		Matches:              res.Matches,
		Suggestions:          suggestions,
	}
}

// score consults the cache before comparing. Cache failures only cost a recompute.
func (s *checkService) score(ctx context.Context, mainText, text string) similarity.Result {
	if s.cache == nil {
		return similarity.Compare(mainText, text)
	}

	res, ok, err := s.cache.Get(ctx, mainText, text)
	if err != nil {
		s.log.Warn("cache_get_failed", zap.Error(err))
	}
	s.metrics.CacheLookup(ok)
	if ok {
		return res
	}

	res = similarity.Compare(mainText, text)
	if err := s.cache.Set(ctx, mainText, text, res); err != nil {
		s.log.Warn("cache_set_failed", zap.Error(err))
	}
	return res
}

// persist archives the uploads and saves the row. Objects already written are removed
// when a later step fails.
func (s *checkService) persist(ctx context.Context, rep *model.Report, main model.UploadedFile, folder []model.UploadedFile) (*model.Report, error) {
	var written []string
	put := func(key string, f model.UploadedFile) error {
		info, err := s.store.Put(ctx, key, bytes.NewReader(f.Data), storage.PutObjectOptions{
			Size:        int64(len(f.Data)),
			ContentType: f.ContentType,
			Metadata:    map[string]string{"original-filename": f.Name, "report-id": rep.ID},
		})
		if err != nil {
			return err
		}
		written = append(written, info.Key)
		return nil
	}

	err := put(storage.MainKey(rep.ID, main.Name), main)
	for i := 0; err == nil && i < len(folder); i++ {
		err = put(storage.FolderKey(rep.ID, i, folder[i].Name), folder[i])
	}
	if err != nil {
		if rbErr := s.rollback(ctx, written); rbErr != nil {
			return nil, fmt.Errorf("upload to storage: %v; rollback delete failed: %v", err, rbErr)
		}
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	stored, err := s.repo.Create(ctx, rep)
	if err != nil {
		if rbErr := s.rollback(ctx, written); rbErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, rbErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *checkService) rollback(ctx context.Context, keys []string) error {
	var errs []error
	for _, k := range keys {
		if err := s.store.Delete(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *checkService) List(ctx context.Context, limit, offset int) (*ReportListResult, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ReportListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *checkService) Get(ctx context.Context, id string) (*model.Report, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	rep, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return rep, err
}

func (s *checkService) MainDocument(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	rep, err := s.Get(ctx, id)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	rc, info, err := s.store.Get(ctx, storage.MainKey(rep.ID, rep.MainDocument))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, storage.ObjectInfo{}, ErrNotFound
	}
	return rc, info, err
}

func (s *checkService) Delete(ctx context.Context, id string) error {
	rep, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	// objects first: a surviving row still points at whatever is left
	n, err := s.store.DeletePrefix(ctx, rep.StoragePrefix)
	if err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.log.Info("report_deleted", zap.String("report_id", id), zap.Int("objects", n))
	return nil
}
