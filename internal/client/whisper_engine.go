package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lexsightllc/video-transcriber-app/internal/model"
)

// TranscribeOutput is the ordered segment sequence produced by the
// speech engine, plus the detected language when auto-detect was asked.
type TranscribeOutput struct {
	Segments         []model.Segment
	DetectedLanguage model.Language
}

// SpeechEngine converts an extracted audio file into timed segments.
type SpeechEngine interface {
	Transcribe(ctx context.Context, audioPath string, tier model.ModelTier, lang model.Language) (*TranscribeOutput, error)
}

// WhisperEngine runs whisper.cpp as an external process and parses its
// JSON transcript. The model weights file is resolved from the tier name
// inside modelsDir.
type WhisperEngine struct {
	binPath   string
	modelsDir string
	runner    commandRunner
}

// NewWhisperEngine creates an engine invoking the given whisper.cpp binary
// with models stored under modelsDir.
func NewWhisperEngine(binPath, modelsDir string) *WhisperEngine {
	return &WhisperEngine{
		binPath:   binPath,
		modelsDir: modelsDir,
		runner:    &execRunner{},
	}
}

// ModelPath returns the expected weights file for a tier.
func (e *WhisperEngine) ModelPath(tier model.ModelTier) string {
	return filepath.Join(e.modelsDir, fmt.Sprintf("ggml-%s.bin", tier))
}

// Transcribe runs inference on audioPath and returns ordered segments.
// Missing or unreadable weights are fatal for the job; detected memory
// exhaustion is reported as its own category so callers can suggest a
// smaller model tier.
func (e *WhisperEngine) Transcribe(ctx context.Context, audioPath string, tier model.ModelTier, lang model.Language) (*TranscribeOutput, error) {
	modelPath := e.ModelPath(tier)
	if _, err := os.Stat(modelPath); err != nil {
		msg := fmt.Sprintf("model weights not found for tier %q: %s", tier, modelPath)
		return nil, model.NewCategoryError(model.ErrTranscriptionFailed, msg, err)
	}

	outBase := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	args := buildWhisperArgs(modelPath, audioPath, outBase, lang)

	result, runErr := e.runner.Run(ctx, e.binPath, args...)
	if runErr != nil {
		stderr := strings.TrimSpace(tail(result.Stderr, 400))
		if isMemoryExhaustion(result.Stderr) {
			msg := fmt.Sprintf("model tier %q ran out of memory: %s", tier, stderr)
			return nil, model.NewCategoryError(model.ErrResourceExhausted, msg, runErr)
		}
		msg := fmt.Sprintf("whisper failed (exit=%d): %s", result.ExitCode, stderr)
		return nil, model.NewCategoryError(model.ErrTranscriptionFailed, msg, runErr)
	}

	jsonPath := outBase + ".json"
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, model.NewCategoryError(model.ErrTranscriptionFailed, "whisper completed but transcript JSON is missing", err)
	}

	out, err := parseWhisperJSON(data)
	if err != nil {
		return nil, model.NewCategoryError(model.ErrTranscriptionFailed, "cannot parse whisper transcript", err)
	}
	return out, nil
}

// buildWhisperArgs assembles the whisper.cpp invocation with JSON output.
func buildWhisperArgs(modelPath, audioPath, outBase string, lang model.Language) []string {
	args := []string{
		"-m", modelPath,
		"-f", audioPath,
		"-oj",
		"-of", outBase,
	}
	if lang == model.LanguageAuto {
		args = append(args, "-l", "auto")
	} else if lang != "" {
		args = append(args, "-l", string(lang))
	}
	return args
}

// whisperTranscript mirrors the whisper.cpp -oj output shape. Offsets
// are milliseconds from the start of the audio.
type whisperTranscript struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseWhisperJSON(data []byte) (*TranscribeOutput, error) {
	var raw whisperTranscript
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	out := &TranscribeOutput{
		DetectedLanguage: model.Language(raw.Result.Language),
	}
	for _, seg := range raw.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		out.Segments = append(out.Segments, model.Segment{
			Start: float64(seg.Offsets.From) / 1000,
			End:   float64(seg.Offsets.To) / 1000,
			Text:  text,
		})
	}
	return out, nil
}

// isMemoryExhaustion sniffs allocator failures in whisper.cpp stderr.
func isMemoryExhaustion(stderr string) bool {
	s := strings.ToLower(stderr)
	return strings.Contains(s, "out of memory") ||
		strings.Contains(s, "failed to allocate") ||
		strings.Contains(s, "cannot allocate memory")
}
