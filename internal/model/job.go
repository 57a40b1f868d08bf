package model

import "time"

// Segment is a single timed unit of recognized speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// JobResult holds the output of a completed transcription job.
type JobResult struct {
	Segments         []Segment `json:"segments"`
	SRT              string    `json:"srt"`
	DetectedLanguage Language  `json:"detectedLanguage,omitempty"`
}

// JobError holds the failure category and message of a failed job.
type JobError struct {
	Category ErrorCategory `json:"category"`
	Message  string        `json:"message"`
}

// Job represents one transcription request tracked from submission to
// terminal state. Exactly one of Result/Error is set once the status is
// terminal; neither is set before then.
type Job struct {
	ID          string     `json:"id"`
	InputPath   string     `json:"-"`
	AudioPath   string     `json:"-"`
	ModelTier   ModelTier  `json:"modelTier"`
	Language    Language   `json:"language"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Result      *JobResult `json:"-"`
	Error       *JobError  `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Clone returns a deep copy so callers can read a snapshot without
// holding the store lock.
func (j *Job) Clone() *Job {
	cp := *j
	if j.Result != nil {
		res := *j.Result
		res.Segments = append([]Segment(nil), j.Result.Segments...)
		cp.Result = &res
	}
	if j.Error != nil {
		e := *j.Error
		cp.Error = &e
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		cp.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

// SubmitJobRequest carries the caller-selected transcription parameters.
// Empty values fall back to the configured defaults.
type SubmitJobRequest struct {
	ModelTier ModelTier `json:"model" validate:"omitempty,oneof=tiny base small medium large large-v2"`
	Language  Language  `json:"language" validate:"omitempty,oneof=auto en pt es fr de it ja ko zh"`
}

// SubmitJobResponse is returned immediately after a job is accepted.
type SubmitJobResponse struct {
	JobID     string    `json:"jobId"`
	Status    JobStatus `json:"status"`
	ModelTier ModelTier `json:"modelTier"`
	Language  Language  `json:"language"`
	CreatedAt time.Time `json:"createdAt"`
}

// JobStatusResponse reports current progress for polling clients.
type JobStatusResponse struct {
	JobID       string     `json:"jobId"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *JobError  `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// JobResultResponse is the payload of a completed job.
type JobResultResponse struct {
	JobID            string    `json:"jobId"`
	Segments         []Segment `json:"segments"`
	SRT              string    `json:"srt"`
	DetectedLanguage Language  `json:"detectedLanguage,omitempty"`
}
