// Package worker drives one transcription job through its state machine:
// validate → extract audio → transcribe → format → terminal state, with
// fixed progress milestones and a cleanup guarantee on every exit path.
package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/lexsightllc/video-transcriber-app/internal/client"
	"github.com/lexsightllc/video-transcriber-app/internal/media"
	"github.com/lexsightllc/video-transcriber-app/internal/model"
	"github.com/lexsightllc/video-transcriber-app/internal/store"
	"github.com/lexsightllc/video-transcriber-app/internal/subtitle"
)

// Progress milestones per transition. The model does not expose
// intra-inference progress, so reporting is coarse.
const (
	progressExtractStart    = 10
	progressTranscribeStart = 40
	progressFormatStart     = 90
	progressComplete        = 100
)

// Notifier receives job transitions. *websocket.Hub satisfies this; the
// CLI plugs in a printing implementation.
type Notifier interface {
	BroadcastProgress(jobID string, progress int, status model.JobStatus, step string)
	BroadcastComplete(jobID string, result interface{})
	BroadcastError(jobID string, jobErr model.JobError)
}

// Options tune per-front-end behavior of the orchestrator.
type Options struct {
	// ResultsDir, when set, receives <jobID>.srt for completed jobs.
	ResultsDir string
	// RemoveInput deletes the input file at cleanup. Set for uploaded
	// copies the job owns; leave unset when the caller owns the file.
	RemoveInput bool
}

// Transcriber is the job orchestrator: the only component that mutates a
// job record, sequencing the adapters for one job at a time.
type Transcriber struct {
	store     *store.JobStore
	validator *media.Validator
	extractor client.AudioExtractor
	engine    client.SpeechEngine
	notifier  Notifier
	opts      Options
}

// NewTranscriber wires the orchestrator. notifier may be nil.
func NewTranscriber(
	jobs *store.JobStore,
	validator *media.Validator,
	extractor client.AudioExtractor,
	engine client.SpeechEngine,
	notifier Notifier,
	opts Options,
) *Transcriber {
	return &Transcriber{
		store:     jobs,
		validator: validator,
		extractor: extractor,
		engine:    engine,
		notifier:  notifier,
		opts:      opts,
	}
}

// Run executes the whole pipeline for one job. It blocks for the
// duration of the job; callers wanting a background job run it in its
// own goroutine. Temporary files are removed before the job becomes
// observable as terminal, regardless of outcome.
func (w *Transcriber) Run(ctx context.Context, jobID string) {
	log.Printf("starting transcription job %s", jobID)

	result, err := w.process(ctx, jobID)
	if err != nil {
		jobErr := model.Categorize(err)
		w.fail(jobID, jobErr)
		log.Printf("job %s failed (%s): %s", jobID, jobErr.Category, jobErr.Message)
		return
	}

	w.complete(jobID, result)
	log.Printf("job %s completed with %d segments", jobID, len(result.Segments))
}

// process runs validation and the three pipeline stages. It mutates the
// job record only through forward transitions and leaves terminal
// states to the caller so cleanup always happens first.
func (w *Transcriber) process(ctx context.Context, jobID string) (result *model.JobResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = model.NewCategoryError(model.ErrInternal, fmt.Sprintf("unexpected panic: %v", r), nil)
		}
	}()

	job, err := w.store.Get(jobID)
	if err != nil {
		return nil, err
	}

	// Rejection happens before any temporary artifact exists.
	if err := w.validator.CheckFile(job.InputPath); err != nil {
		if w.opts.RemoveInput {
			w.removeQuietly(job.InputPath)
		}
		return nil, err
	}

	tempDir, err := os.MkdirTemp("", "transcribe-"+jobID+"-")
	if err != nil {
		if w.opts.RemoveInput {
			w.removeQuietly(job.InputPath)
		}
		return nil, model.NewCategoryError(model.ErrInternal, "cannot create temporary workspace", err)
	}
	defer w.cleanup(job.InputPath, tempDir)

	w.transition(jobID, model.JobStatusExtractingAudio, progressExtractStart, "Extracting audio track")
	audioPath, _, err := w.extractor.Extract(ctx, job.InputPath, tempDir)
	if err != nil {
		return nil, err
	}
	if _, uerr := w.store.Update(jobID, func(j *model.Job) { j.AudioPath = audioPath }); uerr != nil {
		return nil, uerr
	}

	w.transition(jobID, model.JobStatusTranscribing, progressTranscribeStart, "Transcribing audio (this can take a while)")
	out, err := w.engine.Transcribe(ctx, audioPath, job.ModelTier, job.Language)
	if err != nil {
		return nil, err
	}

	w.transition(jobID, model.JobStatusFormatting, progressFormatStart, "Formatting subtitles")
	result = &model.JobResult{
		Segments: out.Segments,
		SRT:      subtitle.FormatSRT(out.Segments),
	}
	if job.Language == model.LanguageAuto {
		result.DetectedLanguage = out.DetectedLanguage
	}

	if w.opts.ResultsDir != "" {
		if err := w.writeResultFile(jobID, result.SRT); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// cleanup removes the job's input copy and intermediate audio exactly
// once. It runs before the terminal state is stored.
func (w *Transcriber) cleanup(inputPath, tempDir string) {
	if err := os.RemoveAll(tempDir); err != nil {
		log.Printf("failed to remove temp dir %s: %v", tempDir, err)
	}
	if w.opts.RemoveInput {
		w.removeQuietly(inputPath)
	}
}

func (w *Transcriber) removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to remove %s: %v", path, err)
	}
}

func (w *Transcriber) writeResultFile(jobID, srt string) error {
	if err := os.MkdirAll(w.opts.ResultsDir, 0o755); err != nil {
		return model.NewCategoryError(model.ErrInternal, "cannot create results directory", err)
	}
	path := filepath.Join(w.opts.ResultsDir, jobID+".srt")
	if err := os.WriteFile(path, []byte(srt), 0o644); err != nil {
		return model.NewCategoryError(model.ErrInternal, "cannot write subtitle file", err)
	}
	return nil
}

// transition advances the job one state forward and bumps progress.
// Progress never decreases while the job is non-terminal.
func (w *Transcriber) transition(jobID string, status model.JobStatus, progress int, step string) {
	job, err := w.store.Update(jobID, func(j *model.Job) {
		if !model.CanTransition(j.Status, status) {
			return
		}
		j.Status = status
		if progress > j.Progress {
			j.Progress = progress
		}
		j.CurrentStep = step
		if j.StartedAt == nil {
			now := time.Now()
			j.StartedAt = &now
		}
	})
	if err != nil {
		log.Printf("failed to update job %s: %v", jobID, err)
		return
	}
	if w.notifier != nil {
		w.notifier.BroadcastProgress(jobID, job.Progress, job.Status, job.CurrentStep)
	}
}

func (w *Transcriber) complete(jobID string, result *model.JobResult) {
	job, err := w.store.Update(jobID, func(j *model.Job) {
		j.Status = model.JobStatusCompleted
		j.Progress = progressComplete
		j.CurrentStep = "Done"
		j.Result = result
		now := time.Now()
		j.CompletedAt = &now
	})
	if err != nil {
		log.Printf("failed to complete job %s: %v", jobID, err)
		return
	}
	if w.notifier != nil {
		w.notifier.BroadcastProgress(jobID, job.Progress, job.Status, job.CurrentStep)
		w.notifier.BroadcastComplete(jobID, result)
	}
}

// fail freezes progress at its last value and records the category.
func (w *Transcriber) fail(jobID string, jobErr model.JobError) {
	_, err := w.store.Update(jobID, func(j *model.Job) {
		j.Status = model.JobStatusFailed
		j.Error = &jobErr
		now := time.Now()
		j.CompletedAt = &now
	})
	if err != nil {
		log.Printf("failed to mark job %s failed: %v", jobID, err)
		return
	}
	if w.notifier != nil {
		w.notifier.BroadcastError(jobID, jobErr)
	}
}
