package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-report-portal/internal/analytics"
	"github.com/noah-isme/faculty-report-portal/internal/dto"
	"github.com/noah-isme/faculty-report-portal/internal/models"
	"github.com/noah-isme/faculty-report-portal/internal/repository"
	"github.com/noah-isme/faculty-report-portal/pkg/export"
	"github.com/noah-isme/faculty-report-portal/pkg/jobs"
	"github.com/noah-isme/faculty-report-portal/pkg/storage"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
)

// ExportJobType tags export jobs on the queue.
const ExportJobType = "export"

type collectionSource interface {
	Collections(ctx context.Context, session *models.Session, kind ViewKind) (models.Collections, error)
}

// ExportJobStore is the export job ledger.
type ExportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type artifactStore interface {
	Save(name string, payload []byte) (string, error)
	Read(name string) ([]byte, error)
	Delete(name string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type workbookRenderer interface {
	Render(sheets []export.Dataset) ([]byte, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix        string
	ResultTTL        time.Duration
	CleanupInterval  time.Duration
	SubmissionTarget int
	TrendWeeks       int
}

// ExportRequest asks for one dataset of a view in one format.
type ExportRequest struct {
	Session *models.Session
	Kind    ViewKind
	Dataset string
	Format  export.Format
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Bytes       []byte
	Filename    string
	ContentType string
}

// ExportSnapshot is the job payload: the view's collections at request time.
type ExportSnapshot struct {
	Data    models.Collections
	User    models.UserProfile
	Dataset string
	Format  export.Format
}

// ExportDownload is a resolved download token.
type ExportDownload struct {
	ExportFile
	ExpiresAt time.Time
}

// ExportService renders view collections to files, synchronously or through
// the job queue.
type ExportService struct {
	views   collectionSource
	repo    ExportJobStore
	queue   jobDispatcher
	store   artifactStore
	signer  *storage.SignedURLSigner
	xlsx    workbookRenderer
	csv     csvRenderer
	pdf     pdfRenderer
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ExportConfig
	now     func() time.Time
}

// ExportServiceParams groups constructor dependencies.
type ExportServiceParams struct {
	Views   collectionSource
	Repo    ExportJobStore
	Store   artifactStore
	Signer  *storage.SignedURLSigner
	Metrics *MetricsService
	Logger  *zap.Logger
	Config  ExportConfig
}

// NewExportService constructs an ExportService. The queue is attached with
// SetQueue once the worker exists.
func NewExportService(params ExportServiceParams) *ExportService {
	cfg := params.Config
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.SubmissionTarget <= 0 {
		cfg.SubmissionTarget = analytics.DefaultSubmissionTarget
	}
	if cfg.TrendWeeks <= 0 {
		cfg.TrendWeeks = analytics.DefaultTrendWeeks
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		views:   params.Views,
		repo:    params.Repo,
		store:   params.Store,
		signer:  params.Signer,
		xlsx:    export.NewXLSXExporter(),
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		metrics: params.Metrics,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// SetQueue attaches the dispatcher used by CreateJob.
func (s *ExportService) SetQueue(queue jobDispatcher) {
	s.queue = queue
}

// Export renders a dataset of the session's view for immediate download.
func (s *ExportService) Export(ctx context.Context, req ExportRequest) (*ExportFile, error) {
	if err := s.checkRequest(req.Dataset, req.Format); err != nil {
		return nil, err
	}
	data, err := s.views.Collections(ctx, req.Session, req.Kind)
	if err != nil {
		return nil, err
	}
	file, err := s.Render(ExportSnapshot{Data: data, User: req.Session.User, Dataset: req.Dataset, Format: req.Format})
	s.metrics.RecordExport(req.Dataset, string(req.Format), exportOutcome(err))
	return file, err
}

func (s *ExportService) checkRequest(dataset string, format export.Format) error {
	if !ValidDataset(dataset) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown export dataset %q", dataset))
	}
	if !format.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if format != export.FormatXLSX && multiSheet(dataset) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s export needs the xlsx format", dataset))
	}
	return nil
}

// Render builds the snapshot's sheets and encodes them. NO_DATA is
// returned before any rendering; render failures become EXPORT_FAILED.
func (s *ExportService) Render(snap ExportSnapshot) (*ExportFile, error) {
	sheets, err := newSheetBuilder(snap.Data, snap.User, s.cfg.SubmissionTarget, s.cfg.TrendWeeks).build(snap.Dataset)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch snap.Format {
	case export.FormatXLSX:
		payload, err = s.xlsx.Render(sheets)
	case export.FormatCSV:
		payload, err = s.csv.Render(sheets[0])
	case export.FormatPDF:
		payload, err = s.pdf.Render(sheets[0], sheets[0].Name)
	default:
		err = fmt.Errorf("unsupported format %s", snap.Format)
	}
	if err != nil {
		return nil, exportFailed(snap.Dataset, err)
	}
	return &ExportFile{
		Bytes:       payload,
		Filename:    export.Filename(snap.Dataset, snap.User.Username, s.now(), snap.Format),
		ContentType: snap.Format.ContentType(),
	}, nil
}

func exportFailed(dataset string, err error) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrExportFailed.Code, appErrors.ErrExportFailed.Status,
		fmt.Sprintf("failed to export %s: %v", dataset, err))
}

func exportOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, appErrors.ErrNoData):
		return "no_data"
	default:
		return "error"
	}
}

// CreateJob snapshots the view, records the job and enqueues it. The data
// precondition is checked here so a job is never queued without rows.
func (s *ExportService) CreateJob(ctx context.Context, session *models.Session, kind ViewKind, req dto.ExportJobRequest) (*dto.ExportJobResponse, error) {
	format := export.Format(req.Format)
	if format == "" {
		format = export.FormatXLSX
	}
	if err := s.checkRequest(req.Dataset, format); err != nil {
		return nil, err
	}
	data, err := s.views.Collections(ctx, session, kind)
	if err != nil {
		return nil, err
	}
	snap := ExportSnapshot{Data: data, User: session.User, Dataset: req.Dataset, Format: format}
	if _, err := newSheetBuilder(snap.Data, snap.User, s.cfg.SubmissionTarget, s.cfg.TrendWeeks).build(snap.Dataset); err != nil {
		s.metrics.RecordExport(req.Dataset, string(format), exportOutcome(err))
		return nil, err
	}

	job := &models.ExportJob{
		Dataset:   req.Dataset,
		Format:    string(format),
		Status:    models.ExportStatusQueued,
		CreatedBy: session.User.Username,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if s.queue == nil {
		err = errors.New("export queue not configured")
	} else {
		err = s.queue.Enqueue(jobs.Job{ID: job.ID, Type: ExportJobType, Payload: snap})
	}
	if err != nil {
		s.markFailed(ctx, job.ID, "failed to enqueue job")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return &dto.ExportJobResponse{ID: job.ID, Status: job.Status}, nil
}

// GetJob returns job status to its owner or to a reviewer.
func (s *ExportService) GetJob(ctx context.Context, id string, session *models.Session) (*dto.ExportJobStatusResponse, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.CreatedBy != session.User.Username && !session.User.Role.Reviewer() {
		return nil, appErrors.ErrForbidden
	}
	resp := &dto.ExportJobStatusResponse{
		ID:         job.ID,
		Dataset:    job.Dataset,
		Format:     job.Format,
		Status:     job.Status,
		CreatedAt:  job.CreatedAt,
		FinishedAt: job.FinishedAt,
	}
	if job.ResultURL != nil && *job.ResultURL != "" {
		resp.DownloadURL = job.ResultURL
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp, nil
}

// ResolveDownload validates a signed token and reads the stored artifact.
func (s *ExportService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	grant, err := s.signer.Verify(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.loadJob(ctx, grant.JobID)
	if err != nil {
		return nil, err
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	payload, err := s.store.Read(grant.Artifact)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file no longer available")
	}
	return &ExportDownload{
		ExportFile: ExportFile{
			Bytes:       payload,
			Filename:    path.Base(grant.Artifact),
			ContentType: export.Format(job.Format).ContentType(),
		},
		ExpiresAt: grant.ExpiresAt,
	}, nil
}

func (s *ExportService) loadJob(ctx context.Context, id string) (*models.ExportJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	return job, nil
}

// Generate renders a queued job, stores the file and returns the signed
// download URL.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob, snap ExportSnapshot) (string, error) {
	file, err := s.Render(snap)
	s.metrics.RecordExport(snap.Dataset, string(snap.Format), exportOutcome(err))
	if err != nil {
		return "", err
	}
	rel, err := s.store.Save(path.Join(job.ID, file.Filename), file.Bytes)
	if err != nil {
		return "", exportFailed(snap.Dataset, err)
	}
	token, _, err := s.signer.Issue(job.ID, rel)
	if err != nil {
		return "", exportFailed(snap.Dataset, err)
	}
	return strings.TrimRight(s.cfg.APIPrefix, "/") + "/exports/download/" + token, nil
}

func (s *ExportService) markFailed(ctx context.Context, id, msg string) {
	status := models.ExportStatusFailed
	now := s.now().UTC()
	if err := s.repo.Update(ctx, id, repository.UpdateExportJobParams{
		Status:       &status,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); err != nil {
		s.logger.Sugar().Warnw("failed to mark export job failed", "job_id", id, "error", err)
	}
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ExportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired(ctx)
			}
		}
	}()
}

// CleanupExpired deletes artifacts of jobs finished before the result TTL
// and any stray files older than it.
func (s *ExportService) CleanupExpired(ctx context.Context) {
	cutoff := s.now().Add(-s.cfg.ResultTTL)
	finished, err := s.repo.ListFinishedBefore(ctx, cutoff, 100)
	if err != nil {
		s.logger.Sugar().Warnw("cleanup list failed", "error", err)
		return
	}
	for _, job := range finished {
		if job.ResultURL == nil {
			continue
		}
		grant, err := s.signer.Verify(path.Base(*job.ResultURL), true)
		if err != nil {
			continue
		}
		if err := s.store.Delete(grant.Artifact); err != nil {
			s.logger.Sugar().Warnw("cleanup delete failed", "job_id", job.ID, "error", err)
		}
	}
	removed, err := s.store.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Sugar().Warnw("filesystem cleanup failed", "error", err)
		return
	}
	if len(removed) > 0 {
		s.logger.Sugar().Infow("expired exports removed", "files", len(removed))
	}
}

type exportGenerator interface {
	Generate(ctx context.Context, job *models.ExportJob, snap ExportSnapshot) (string, error)
}

// ExportWorker bridges queue jobs to ExportService.
type ExportWorker struct {
	repo     ExportJobStore
	exporter exportGenerator
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportWorker constructs a worker.
func NewExportWorker(repo ExportJobStore, exporter exportGenerator, logger *zap.Logger) *ExportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportWorker{repo: repo, exporter: exporter, logger: logger, now: time.Now}
}

// Handle processes a queue job. A returned error lets the queue retry.
func (w *ExportWorker) Handle(ctx context.Context, job jobs.Job) error {
	snap, ok := job.Payload.(ExportSnapshot)
	if !ok {
		w.fail(ctx, job.ID, "export job carried no snapshot")
		return nil
	}
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	processing := models.ExportStatusProcessing
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &processing}); err != nil {
		return err
	}

	url, err := w.exporter.Generate(ctx, record, snap)
	if err != nil {
		if errors.Is(err, appErrors.ErrNoData) {
			w.fail(ctx, job.ID, appErrors.FromError(err).Message)
			return nil
		}
		msg := err.Error()
		queued := models.ExportStatusQueued
		if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &queued, ErrorMessage: &msg}); updateErr != nil {
			w.logger.Sugar().Warnw("failed to mark export job queued", "job_id", job.ID, "error", updateErr)
		}
		return err
	}

	finished := models.ExportStatusFinished
	now := w.now().UTC()
	cleared := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:       &finished,
		ResultURL:    &url,
		ErrorMessage: &cleared,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark export job finished", "job_id", job.ID, "error", err)
		return err
	}
	return nil
}

// DeadLetter marks a job failed once the queue gives up on it.
func (w *ExportWorker) DeadLetter(ctx context.Context, job jobs.Job, err error) {
	w.fail(ctx, job.ID, err.Error())
}

func (w *ExportWorker) fail(ctx context.Context, id, msg string) {
	status := models.ExportStatusFailed
	now := w.now().UTC()
	if err := w.repo.Update(ctx, id, repository.UpdateExportJobParams{
		Status:       &status,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark export job failed", "job_id", id, "error", err)
	}
}
