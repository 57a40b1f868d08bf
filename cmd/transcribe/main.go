package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lexsightllc/video-transcriber-app/internal/client"
	"github.com/lexsightllc/video-transcriber-app/internal/config"
	"github.com/lexsightllc/video-transcriber-app/internal/media"
	"github.com/lexsightllc/video-transcriber-app/internal/model"
	"github.com/lexsightllc/video-transcriber-app/internal/store"
	"github.com/lexsightllc/video-transcriber-app/internal/worker"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		modelFlag  string
		langFlag   string
		outputFlag string
	)

	cmd := &cobra.Command{
		Use:   "transcribe <input-video>",
		Short: "Transcribe a video file into an SRT subtitle file",
		Long: `Transcribe extracts the audio track of a video file, runs it through
a whisper speech-recognition model, and writes a timestamped SRT
subtitle file next to the input (or to --output).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(args[0], modelFlag, langFlag, outputFlag)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&modelFlag, "model", "", "model tier: "+tierList())
	cmd.Flags().StringVar(&langFlag, "lang", string(model.LanguageAuto), "language code or auto")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "output SRT path (default: <input>.srt)")

	return cmd
}

func run(inputPath, modelFlag, langFlag, outputPath string) error {
	// The CLI is quiet except for progress and errors.
	log.SetOutput(os.Stderr)
	log.SetFlags(0)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("internal_error: %v", err)
	}

	tier := cfg.Transcriber.DefaultModelTier
	if modelFlag != "" {
		tier = model.ModelTier(modelFlag)
	}
	if !model.IsValidModelTier(tier) {
		return fmt.Errorf("invalid_input: unknown model tier %q (choose from %s)", tier, tierList())
	}

	lang := model.Language(langFlag)
	if !model.IsValidLanguage(lang) {
		return fmt.Errorf("invalid_input: unsupported language %q", lang)
	}

	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".srt"
	}

	jobs := store.NewJobStore(time.Hour)
	job := &model.Job{
		ID:        uuid.New().String(),
		InputPath: inputPath,
		ModelTier: tier,
		Language:  lang,
		Status:    model.JobStatusQueued,
		CreatedAt: time.Now(),
	}
	if err := jobs.Create(job); err != nil {
		return fmt.Errorf("internal_error: %v", err)
	}

	validator := media.NewValidator(cfg.Storage.AllowedExtensions, cfg.Storage.MaxUploadBytes)
	extractor := client.NewFFmpegExtractor(cfg.Transcriber.FFmpegPath)
	engine := client.NewWhisperEngine(cfg.Transcriber.WhisperPath, cfg.Transcriber.ModelsDir)

	// The input file belongs to the caller; only intermediates are removed.
	w := worker.NewTranscriber(jobs, validator, extractor, engine, &stderrNotifier{}, worker.Options{})
	w.Run(context.Background(), job.ID)

	done, err := jobs.Get(job.ID)
	if err != nil {
		return fmt.Errorf("internal_error: %v", err)
	}
	if done.Status == model.JobStatusFailed {
		return fmt.Errorf("%s: %s", done.Error.Category, done.Error.Message)
	}

	if err := os.WriteFile(outputPath, []byte(done.Result.SRT), 0o644); err != nil {
		return fmt.Errorf("internal_error: cannot write %s: %v", outputPath, err)
	}

	fmt.Fprintf(os.Stderr, "Wrote %d cues to %s\n", len(done.Result.Segments), outputPath)
	if done.Result.DetectedLanguage != "" {
		fmt.Fprintf(os.Stderr, "Detected language: %s\n", done.Result.DetectedLanguage)
	}
	return nil
}

// stderrNotifier prints progress milestones for terminal users.
type stderrNotifier struct{}

func (n *stderrNotifier) BroadcastProgress(jobID string, progress int, status model.JobStatus, step string) {
	fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", progress, step)
}

func (n *stderrNotifier) BroadcastComplete(jobID string, result interface{}) {}

func (n *stderrNotifier) BroadcastError(jobID string, jobErr model.JobError) {}

func tierList() string {
	parts := make([]string, 0, len(model.ValidModelTiers))
	for _, t := range model.ValidModelTiers {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ", ")
}
