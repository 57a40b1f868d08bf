package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/lexsightllc/video-transcriber-app/internal/model"
)

type Config struct {
	Server      ServerConfig
	Storage     StorageConfig
	Transcriber TranscriberConfig
	Jobs        JobsConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type StorageConfig struct {
	UploadDir         string
	ResultsDir        string
	MaxUploadBytes    int64
	AllowedExtensions []string
}

type TranscriberConfig struct {
	DefaultModelTier model.ModelTier
	ModelsDir        string
	WhisperPath      string
	FFmpegPath       string
}

type JobsConfig struct {
	RetentionHours int
}

type RateLimitConfig struct {
	UploadsPerHour int
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("storage.upload_dir", "UPLOAD_DIR")
	_ = viper.BindEnv("storage.results_dir", "RESULTS_DIR")
	_ = viper.BindEnv("storage.max_upload_bytes", "MAX_UPLOAD_BYTES")
	_ = viper.BindEnv("storage.allowed_extensions", "ALLOWED_EXTENSIONS")
	_ = viper.BindEnv("transcriber.default_model_tier", "DEFAULT_MODEL_TIER")
	_ = viper.BindEnv("transcriber.models_dir", "MODELS_DIR")
	_ = viper.BindEnv("transcriber.whisper_path", "WHISPER_PATH")
	_ = viper.BindEnv("transcriber.ffmpeg_path", "FFMPEG_PATH")
	_ = viper.BindEnv("jobs.retention_hours", "JOB_RETENTION_HOURS")
	_ = viper.BindEnv("ratelimit.uploads_per_hour", "UPLOADS_PER_HOUR")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("storage.upload_dir", "uploads")
	viper.SetDefault("storage.results_dir", "results")
	viper.SetDefault("storage.max_upload_bytes", int64(500*1024*1024))
	viper.SetDefault("storage.allowed_extensions", "mp4,mov,avi,mkv,webm")
	viper.SetDefault("transcriber.default_model_tier", "base")
	viper.SetDefault("transcriber.models_dir", "models")
	viper.SetDefault("transcriber.whisper_path", "whisper-cli")
	viper.SetDefault("transcriber.ffmpeg_path", "ffmpeg")
	viper.SetDefault("jobs.retention_hours", 24)
	viper.SetDefault("ratelimit.uploads_per_hour", 50)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:     viper.GetString("server.port"),
			Env:      viper.GetString("server.env"),
			LogLevel: viper.GetString("server.log_level"),
		},
		Storage: StorageConfig{
			UploadDir:         viper.GetString("storage.upload_dir"),
			ResultsDir:        viper.GetString("storage.results_dir"),
			MaxUploadBytes:    viper.GetInt64("storage.max_upload_bytes"),
			AllowedExtensions: splitList(viper.GetString("storage.allowed_extensions")),
		},
		Transcriber: TranscriberConfig{
			DefaultModelTier: model.ModelTier(viper.GetString("transcriber.default_model_tier")),
			ModelsDir:        viper.GetString("transcriber.models_dir"),
			WhisperPath:      viper.GetString("transcriber.whisper_path"),
			FFmpegPath:       viper.GetString("transcriber.ffmpeg_path"),
		},
		Jobs: JobsConfig{
			RetentionHours: viper.GetInt("jobs.retention_hours"),
		},
		RateLimit: RateLimitConfig{
			UploadsPerHour: viper.GetInt("ratelimit.uploads_per_hour"),
		},
	}

	if !model.IsValidModelTier(cfg.Transcriber.DefaultModelTier) {
		return nil, fmt.Errorf("invalid default model tier: %s", cfg.Transcriber.DefaultModelTier)
	}

	return cfg, nil
}

// splitList parses a comma-separated value into trimmed lowercase entries.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
