package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lexsightllc/video-transcriber-app/internal/client"
	"github.com/lexsightllc/video-transcriber-app/internal/config"
	"github.com/lexsightllc/video-transcriber-app/internal/media"
	"github.com/lexsightllc/video-transcriber-app/internal/model"
	"github.com/lexsightllc/video-transcriber-app/internal/store"
	"github.com/lexsightllc/video-transcriber-app/internal/worker"
)

// ErrNotCompleted is returned when a result is requested for a job that
// has not reached the completed state.
var ErrNotCompleted = errors.New("job not completed")

// TranscriptionService accepts uploads, registers jobs, and spawns one
// orchestrator goroutine per job.
type TranscriptionService struct {
	cfg       *config.Config
	jobs      *store.JobStore
	validator *media.Validator
	extractor client.AudioExtractor
	engine    client.SpeechEngine
	notifier  worker.Notifier
}

// NewTranscriptionService wires the service. notifier may be nil.
func NewTranscriptionService(
	cfg *config.Config,
	jobs *store.JobStore,
	validator *media.Validator,
	extractor client.AudioExtractor,
	engine client.SpeechEngine,
	notifier worker.Notifier,
) *TranscriptionService {
	return &TranscriptionService{
		cfg:       cfg,
		jobs:      jobs,
		validator: validator,
		extractor: extractor,
		engine:    engine,
		notifier:  notifier,
	}
}

// Submit validates the upload, stores a private copy named by the job
// id, registers the job, and starts its background worker. Validation
// failures return before any file is written.
func (s *TranscriptionService) Submit(ctx context.Context, req *model.SubmitJobRequest, filename string, file io.Reader, size int64) (*model.SubmitJobResponse, error) {
	tier := req.ModelTier
	if tier == "" {
		tier = s.cfg.Transcriber.DefaultModelTier
	}
	if !model.IsValidModelTier(tier) {
		return nil, model.NewCategoryError(model.ErrInvalidInput, fmt.Sprintf("unknown model tier %q", tier), nil)
	}
	lang := req.Language
	if lang == "" {
		lang = model.LanguageAuto
	}
	if !model.IsValidLanguage(lang) {
		return nil, model.NewCategoryError(model.ErrInvalidInput, fmt.Sprintf("unsupported language %q", lang), nil)
	}

	if err := s.validator.Check(filename, size); err != nil {
		return nil, err
	}

	jobID := uuid.New().String()
	inputPath, err := s.saveUpload(jobID, filename, file)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	job := &model.Job{
		ID:        jobID,
		InputPath: inputPath,
		ModelTier: tier,
		Language:  lang,
		Status:    model.JobStatusQueued,
		CreatedAt: now,
	}
	if err := s.jobs.Create(job); err != nil {
		os.Remove(inputPath)
		return nil, fmt.Errorf("failed to register job: %w", err)
	}

	// One orchestrator per job, one goroutine per job. Jobs run to a
	// terminal state; cancellation is a known gap.
	w := worker.NewTranscriber(s.jobs, s.validator, s.extractor, s.engine, s.notifier, worker.Options{
		ResultsDir:  s.cfg.Storage.ResultsDir,
		RemoveInput: true,
	})
	go w.Run(context.Background(), jobID)

	return &model.SubmitJobResponse{
		JobID:     jobID,
		Status:    model.JobStatusQueued,
		ModelTier: tier,
		Language:  lang,
		CreatedAt: now,
	}, nil
}

// GetStatus returns the current status of a job.
func (s *TranscriptionService) GetStatus(ctx context.Context, jobID string) (*model.JobStatusResponse, error) {
	job, err := s.jobs.Get(jobID)
	if err != nil {
		return nil, err
	}
	return &model.JobStatusResponse{
		JobID:       job.ID,
		Status:      job.Status,
		Progress:    job.Progress,
		CurrentStep: job.CurrentStep,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
	}, nil
}

// GetResult returns the segments and SRT text of a completed job.
func (s *TranscriptionService) GetResult(ctx context.Context, jobID string) (*model.JobResultResponse, error) {
	job, err := s.jobs.Get(jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusCompleted || job.Result == nil {
		return nil, ErrNotCompleted
	}
	return &model.JobResultResponse{
		JobID:            job.ID,
		Segments:         job.Result.Segments,
		SRT:              job.Result.SRT,
		DetectedLanguage: job.Result.DetectedLanguage,
	}, nil
}

// ResultFilePath returns the on-disk subtitle file of a completed job.
func (s *TranscriptionService) ResultFilePath(ctx context.Context, jobID string) (string, error) {
	job, err := s.jobs.Get(jobID)
	if err != nil {
		return "", err
	}
	if job.Status != model.JobStatusCompleted {
		return "", ErrNotCompleted
	}
	path := filepath.Join(s.cfg.Storage.ResultsDir, job.ID+".srt")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("subtitle file missing: %w", err)
	}
	return path, nil
}

// RemoveArtifacts deletes a job's result file; used by the retention
// janitor when a terminal job is evicted.
func (s *TranscriptionService) RemoveArtifacts(job *model.Job) {
	path := filepath.Join(s.cfg.Storage.ResultsDir, job.ID+".srt")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to remove %s: %v", path, err)
	}
}

// saveUpload streams the upload into the upload directory under a name
// derived from the job id, keeping the original extension.
func (s *TranscriptionService) saveUpload(jobID, filename string, file io.Reader) (string, error) {
	if err := os.MkdirAll(s.cfg.Storage.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	inputPath := filepath.Join(s.cfg.Storage.UploadDir, jobID+ext)

	out, err := os.Create(inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(inputPath)
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	return inputPath, nil
}
