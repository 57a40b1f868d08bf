package client

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lexsightllc/video-transcriber-app/internal/model"
)

// fakeRunner records invocations and optionally simulates output files.
type fakeRunner struct {
	calls   [][]string
	result  commandResult
	err     error
	onRun   func(name string, args []string)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.onRun != nil {
		f.onRun(name, args)
	}
	return f.result, f.err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func assertCategory(t *testing.T, err error, want model.ErrorCategory) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	ce, ok := model.AsCategoryError(err)
	if !ok {
		t.Fatalf("expected CategoryError, got %T: %v", err, err)
	}
	if ce.Category != want {
		t.Errorf("expected category %s, got %s", want, ce.Category)
	}
}

func TestFFmpegExtract_Success(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "input.mp4")
	writeFile(t, videoPath, "fake video bytes")

	runner := &fakeRunner{
		onRun: func(name string, args []string) {
			// ffmpeg writes the output path given as the last argument
			writeFile(t, args[len(args)-1], "fake wav bytes")
		},
	}
	ext := NewFFmpegExtractor("ffmpeg")
	ext.runner = runner

	audioPath, rate, err := ext.Extract(context.Background(), videoPath, dir)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if rate != 16000 {
		t.Errorf("expected sample rate 16000, got %d", rate)
	}
	if _, err := os.Stat(audioPath); err != nil {
		t.Errorf("expected audio file at %s: %v", audioPath, err)
	}

	if len(runner.calls) != 1 {
		t.Fatalf("expected 1 ffmpeg invocation, got %d", len(runner.calls))
	}
	call := runner.calls[0]
	if call[0] != "ffmpeg" {
		t.Errorf("expected ffmpeg binary, got %s", call[0])
	}
	joined := ""
	for _, a := range call {
		joined += a + " "
	}
	for _, want := range []string{"-vn", "-ac 1", "-ar 16000", "-f wav"} {
		if !containsArgs(call, want) {
			t.Errorf("expected args to contain %q, got %s", want, joined)
		}
	}
}

// containsArgs checks a space-separated flag pair appears in order.
func containsArgs(call []string, pair string) bool {
	for i := range call {
		candidate := call[i]
		for j := i + 1; j < len(call) && len(candidate) < len(pair); j++ {
			candidate += " " + call[j]
		}
		if candidate == pair {
			return true
		}
	}
	return false
}

func TestFFmpegExtract_MissingInput(t *testing.T) {
	ext := NewFFmpegExtractor("ffmpeg")
	ext.runner = &fakeRunner{}

	_, _, err := ext.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"), t.TempDir())
	assertCategory(t, err, model.ErrExtractionFailed)
}

func TestFFmpegExtract_EmptyInput(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "corrupt.mp4")
	writeFile(t, videoPath, "")

	runner := &fakeRunner{}
	ext := NewFFmpegExtractor("ffmpeg")
	ext.runner = runner

	_, _, err := ext.Extract(context.Background(), videoPath, dir)
	assertCategory(t, err, model.ErrExtractionFailed)
	if len(runner.calls) != 0 {
		t.Error("ffmpeg must not run for a zero-length input")
	}
}

func TestFFmpegExtract_CommandFailure(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "input.mkv")
	writeFile(t, videoPath, "fake video bytes")

	ext := NewFFmpegExtractor("ffmpeg")
	ext.runner = &fakeRunner{
		result: commandResult{Stderr: "Invalid data found when processing input", ExitCode: 1},
		err:    errors.New("exit status 1"),
	}

	_, _, err := ext.Extract(context.Background(), videoPath, dir)
	assertCategory(t, err, model.ErrExtractionFailed)
	ce, _ := model.AsCategoryError(err)
	if ce.Message == "" {
		t.Error("expected underlying ffmpeg message to be attached")
	}
}

func TestFFmpegExtract_NoOutputProduced(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "input.webm")
	writeFile(t, videoPath, "fake video bytes")

	// Runner succeeds but writes nothing.
	ext := NewFFmpegExtractor("ffmpeg")
	ext.runner = &fakeRunner{}

	_, _, err := ext.Extract(context.Background(), videoPath, dir)
	assertCategory(t, err, model.ErrExtractionFailed)
}
