package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/lexsightllc/video-transcriber-app/internal/client"
	"github.com/lexsightllc/video-transcriber-app/internal/config"
	"github.com/lexsightllc/video-transcriber-app/internal/handler"
	"github.com/lexsightllc/video-transcriber-app/internal/media"
	"github.com/lexsightllc/video-transcriber-app/internal/model"
	"github.com/lexsightllc/video-transcriber-app/internal/service"
	"github.com/lexsightllc/video-transcriber-app/internal/store"
)

// fakeExtractor mimics ffmpeg: it rejects empty inputs and otherwise
// produces a small audio file in the job's temp workspace.
type fakeExtractor struct{}

func (f *fakeExtractor) Extract(ctx context.Context, videoPath, outDir string) (string, int, error) {
	info, err := os.Stat(videoPath)
	if err != nil {
		return "", 0, model.NewCategoryError(model.ErrExtractionFailed, "cannot access media file", err)
	}
	if info.Size() == 0 {
		return "", 0, model.NewCategoryError(model.ErrExtractionFailed, "media file is empty", nil)
	}
	audioPath := filepath.Join(outDir, "audio-16k-mono.wav")
	if err := os.WriteFile(audioPath, []byte("fake wav"), 0o644); err != nil {
		return "", 0, err
	}
	return audioPath, 16000, nil
}

// fakeEngine returns a canned transcript. When gate is non-nil it blocks
// until the gate is closed, letting tests observe in-flight jobs.
type fakeEngine struct {
	gate chan struct{}
}

func (f *fakeEngine) Transcribe(ctx context.Context, audioPath string, tier model.ModelTier, lang model.Language) (*client.TranscribeOutput, error) {
	if f.gate != nil {
		<-f.gate
	}
	out := &client.TranscribeOutput{
		Segments: []model.Segment{
			{Start: 0, End: 2.5, Text: "Hello there."},
			{Start: 2.5, End: 5.0, Text: "This is a test."},
		},
	}
	if lang == model.LanguageAuto {
		out.DetectedLanguage = model.LanguageEN
	}
	return out, nil
}

// testApp holds all components needed for testing
type testApp struct {
	app        *fiber.App
	cfg        *config.Config
	jobs       *store.JobStore
	resultsDir string
}

// setupApp creates a Fiber app identical to main.go but with fake media
// adapters and per-test storage directories.
func setupApp(t *testing.T, engine client.SpeechEngine) *testApp {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", Env: "test", LogLevel: "error"},
		Storage: config.StorageConfig{
			UploadDir:         filepath.Join(dir, "uploads"),
			ResultsDir:        filepath.Join(dir, "results"),
			MaxUploadBytes:    10 * 1024 * 1024,
			AllowedExtensions: []string{"mp4", "mov", "avi", "mkv", "webm"},
		},
		Transcriber: config.TranscriberConfig{
			DefaultModelTier: model.ModelTierBase,
			ModelsDir:        filepath.Join(dir, "models"),
			WhisperPath:      "whisper-cli",
			FFmpegPath:       "ffmpeg",
		},
		Jobs:      config.JobsConfig{RetentionHours: 24},
		RateLimit: config.RateLimitConfig{UploadsPerHour: 10000},
	}

	if engine == nil {
		engine = &fakeEngine{}
	}

	validate := validator.New()
	jobs := store.NewJobStore(24 * time.Hour)
	inputValidator := media.NewValidator(cfg.Storage.AllowedExtensions, cfg.Storage.MaxUploadBytes)
	svc := service.NewTranscriptionService(cfg, jobs, inputValidator, &fakeExtractor{}, engine, nil)
	h := handler.NewTranscriptionHandler(svc, validate)

	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.Storage.MaxUploadBytes) + 1024*1024,
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	api.Post("/jobs", h.Submit)
	api.Get("/jobs/:jobId", h.Status)
	api.Get("/jobs/:jobId/result", h.Result)
	api.Get("/jobs/:jobId/download", h.Download)

	return &testApp{app: app, cfg: cfg, jobs: jobs, resultsDir: cfg.Storage.ResultsDir}
}

// uploadRequest builds a multipart submission with the given file name,
// content, and form fields.
func uploadRequest(t *testing.T, fileName string, content []byte, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, "/api/jobs", &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string) (*http.Response, error) {
	req, err := http.NewRequest(method, path, nil)
	if err != nil {
		return nil, err
	}
	return app.Test(req, -1)
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// waitForTerminal polls the status endpoint until the job finishes.
func waitForTerminal(t *testing.T, ta *testApp, jobID string) map[string]interface{} {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := doRequest(ta.app, http.MethodGet, "/api/jobs/"+jobID)
		if err != nil {
			t.Fatalf("status request failed: %v", err)
		}
		status := parseJSON(t, resp)
		s, _ := status["status"].(string)
		if model.JobStatus(s).IsTerminal() {
			return status
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("job %s did not reach a terminal state", jobID)
	return nil
}

// submitAndWait uploads a file and waits for the job to finish.
func submitAndWait(t *testing.T, ta *testApp, fileName string, content []byte, fields map[string]string) (string, map[string]interface{}) {
	t.Helper()

	resp, err := ta.app.Test(uploadRequest(t, fileName, content, fields), -1)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	assertStatus(t, resp, http.StatusAccepted)
	body := parseJSON(t, resp)
	jobID, _ := body["jobId"].(string)
	if jobID == "" {
		t.Fatal("expected 'jobId' in response")
	}
	return jobID, waitForTerminal(t, ta, jobID)
}
