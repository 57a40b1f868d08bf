package model

// Model tiers
type ModelTier string

const (
	ModelTierTiny    ModelTier = "tiny"
	ModelTierBase    ModelTier = "base"
	ModelTierSmall   ModelTier = "small"
	ModelTierMedium  ModelTier = "medium"
	ModelTierLarge   ModelTier = "large"
	ModelTierLargeV2 ModelTier = "large-v2"
)

var ValidModelTiers = []ModelTier{
	ModelTierTiny, ModelTierBase, ModelTierSmall,
	ModelTierMedium, ModelTierLarge, ModelTierLargeV2,
}

// IsValidModelTier reports whether tier is one of the known presets.
func IsValidModelTier(tier ModelTier) bool {
	for _, t := range ValidModelTiers {
		if t == tier {
			return true
		}
	}
	return false
}

// Language codes
type Language string

const (
	LanguageAuto Language = "auto"
	LanguageEN   Language = "en"
	LanguagePT   Language = "pt"
	LanguageES   Language = "es"
	LanguageFR   Language = "fr"
	LanguageDE   Language = "de"
	LanguageIT   Language = "it"
	LanguageJA   Language = "ja"
	LanguageKO   Language = "ko"
	LanguageZH   Language = "zh"
)

var ValidLanguages = []Language{
	LanguageAuto, LanguageEN, LanguagePT, LanguageES, LanguageFR,
	LanguageDE, LanguageIT, LanguageJA, LanguageKO, LanguageZH,
}

// IsValidLanguage reports whether lang is a supported code or "auto".
func IsValidLanguage(lang Language) bool {
	for _, l := range ValidLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// Job status
type JobStatus string

const (
	JobStatusQueued          JobStatus = "queued"
	JobStatusExtractingAudio JobStatus = "extracting_audio"
	JobStatusTranscribing    JobStatus = "transcribing"
	JobStatusFormatting      JobStatus = "formatting"
	JobStatusCompleted       JobStatus = "completed"
	JobStatusFailed          JobStatus = "failed"
)

// IsTerminal reports whether s is a final state.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// statusRank orders the forward path of the state machine.
var statusRank = map[JobStatus]int{
	JobStatusQueued:          0,
	JobStatusExtractingAudio: 1,
	JobStatusTranscribing:    2,
	JobStatusFormatting:      3,
	JobStatusCompleted:       4,
}

// CanTransition reports whether from → to is a legal state machine edge.
// Failed is reachable from any non-terminal state; otherwise the status
// only advances one step forward.
func CanTransition(from, to JobStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == JobStatusFailed {
		return true
	}
	fr, ok := statusRank[from]
	if !ok {
		return false
	}
	tr, ok := statusRank[to]
	if !ok {
		return false
	}
	return tr == fr+1
}
