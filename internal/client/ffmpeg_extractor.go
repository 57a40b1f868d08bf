package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lexsightllc/video-transcriber-app/internal/model"
)

// extractSampleRate is the sample rate whisper models expect.
const extractSampleRate = 16000

// AudioExtractor produces a mono audio file from a validated video file.
type AudioExtractor interface {
	Extract(ctx context.Context, videoPath, outDir string) (audioPath string, sampleRate int, err error)
}

// FFmpegExtractor extracts the audio track of a video via the ffmpeg
// binary. All failure modes surface as a single extraction_failed
// category with the underlying message attached; retry decisions belong
// to the caller.
type FFmpegExtractor struct {
	binPath string
	runner  commandRunner
}

// NewFFmpegExtractor creates an extractor invoking the given ffmpeg binary.
func NewFFmpegExtractor(binPath string) *FFmpegExtractor {
	return &FFmpegExtractor{
		binPath: binPath,
		runner:  &execRunner{},
	}
}

// Extract decodes videoPath into a 16 kHz mono WAV file under outDir and
// returns its path and sample rate.
func (e *FFmpegExtractor) Extract(ctx context.Context, videoPath, outDir string) (string, int, error) {
	info, err := os.Stat(videoPath)
	if err != nil {
		return "", 0, model.NewCategoryError(model.ErrExtractionFailed, "cannot access media file", err)
	}
	if info.Size() == 0 {
		return "", 0, model.NewCategoryError(model.ErrExtractionFailed, "media file is empty", nil)
	}

	audioPath := filepath.Join(outDir, "audio-16k-mono.wav")
	args := buildFFmpegArgs(videoPath, audioPath)

	result, runErr := e.runner.Run(ctx, e.binPath, args...)
	if runErr != nil {
		msg := fmt.Sprintf("ffmpeg failed (exit=%d): %s", result.ExitCode, strings.TrimSpace(tail(result.Stderr, 400)))
		return "", 0, model.NewCategoryError(model.ErrExtractionFailed, msg, runErr)
	}

	out, err := os.Stat(audioPath)
	if err != nil {
		return "", 0, model.NewCategoryError(model.ErrExtractionFailed, "ffmpeg completed but audio output is missing", err)
	}
	if out.Size() == 0 {
		return "", 0, model.NewCategoryError(model.ErrExtractionFailed, "media has no decodable audio track", nil)
	}

	return audioPath, extractSampleRate, nil
}

// buildFFmpegArgs assembles the audio extraction invocation: drop video,
// downmix to mono, resample to 16 kHz PCM WAV.
func buildFFmpegArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", extractSampleRate),
		"-f", "wav",
		outputPath,
	}
}
