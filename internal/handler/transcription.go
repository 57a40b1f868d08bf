package handler

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/lexsightllc/video-transcriber-app/internal/model"
	"github.com/lexsightllc/video-transcriber-app/internal/service"
	"github.com/lexsightllc/video-transcriber-app/internal/store"
	"github.com/lexsightllc/video-transcriber-app/pkg/response"
)

type TranscriptionHandler struct {
	service   *service.TranscriptionService
	validator *validator.Validate
}

func NewTranscriptionHandler(svc *service.TranscriptionService, v *validator.Validate) *TranscriptionHandler {
	return &TranscriptionHandler{
		service:   svc,
		validator: v,
	}
}

// Submit handles POST /api/jobs
// @Summary      Submit transcription job
// @Description  Upload a video file and start an asynchronous transcription job
// @Tags         Jobs
// @Accept       multipart/form-data
// @Produce      json
// @Param        file     formData file   true  "Video file (mp4, mov, avi, mkv, webm; max 500MB)"
// @Param        model    formData string false "Model tier (tiny, base, small, medium, large, large-v2)"
// @Param        language formData string false "Language code or auto"
// @Success      202 {object} model.SubmitJobResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/jobs [post]
func (h *TranscriptionHandler) Submit(c *fiber.Ctx) error {
	req := model.SubmitJobRequest{
		ModelTier: model.ModelTier(c.FormValue("model")),
		Language:  model.Language(c.FormValue("language")),
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.ValidationError(c, "A video file is required", nil)
	}

	f, err := file.Open()
	if err != nil {
		return response.ServiceError(c, "Failed to open uploaded file")
	}
	defer f.Close()

	result, err := h.service.Submit(c.Context(), &req, file.Filename, f, file.Size)
	if err != nil {
		if ce, ok := model.AsCategoryError(err); ok && ce.Category == model.ErrInvalidInput {
			return response.ValidationError(c, ce.Message, map[string]interface{}{
				"category": ce.Category,
			})
		}
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, result)
}

// Status handles GET /api/jobs/:jobId
// @Summary      Get job status
// @Description  Get the current status, progress, and error of a transcription job
// @Tags         Jobs
// @Produce      json
// @Param        jobId path string true "Job ID"
// @Success      200 {object} model.JobStatusResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/jobs/{jobId} [get]
func (h *TranscriptionHandler) Status(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.GetStatus(c.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFound(c, "Job not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// Result handles GET /api/jobs/:jobId/result
// @Summary      Get job result
// @Description  Get the segments and SRT text of a completed job
// @Tags         Jobs
// @Produce      json
// @Param        jobId path string true "Job ID"
// @Success      200 {object} model.JobResultResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/jobs/{jobId}/result [get]
func (h *TranscriptionHandler) Result(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.GetResult(c.Context(), jobID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return response.NotFound(c, "Job not found")
		case errors.Is(err, service.ErrNotCompleted):
			return response.Conflict(c, "Job has not completed")
		default:
			return response.ServiceError(c, err.Error())
		}
	}

	return response.OK(c, result)
}

// Download handles GET /api/jobs/:jobId/download
// @Summary      Download subtitle file
// @Description  Download the SRT file of a completed job
// @Tags         Jobs
// @Produce      application/x-subrip
// @Param        jobId path string true "Job ID"
// @Success      200 {file} file
// @Failure      404 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse
// @Router       /api/jobs/{jobId}/download [get]
func (h *TranscriptionHandler) Download(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	path, err := h.service.ResultFilePath(c.Context(), jobID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return response.NotFound(c, "Job not found")
		case errors.Is(err, service.ErrNotCompleted):
			return response.Conflict(c, "Job has not completed")
		default:
			return response.ServiceError(c, err.Error())
		}
	}

	c.Set(fiber.HeaderContentType, "application/x-subrip")
	return c.Download(path, fmt.Sprintf("%s.srt", jobID))
}

// formatValidationErrors formats validator errors for response
func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}
