package pipeline

import (
	"fmt"

	"starreview/internal/analysis"
	"starreview/internal/practice"
	"starreview/internal/transcription"
)

// Video is the asset under analysis.
type Video struct {
	ID       int64
	Path     string
	Duration float64 // seconds; 0 when unknown
	Category practice.Category
}

// Request is the input of one run.
type Request struct {
	Video    Video
	Catalog  practice.Catalog
	Category practice.Category
	Mode     transcription.Mode
}

// Status is the terminal outcome of a run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// AnnotationStatus is the review state given to generated annotations.
type AnnotationStatus string

const (
	AnnotationDraft       AnnotationStatus = "draft"
	AnnotationNeedsReview AnnotationStatus = "needs_review"
)

// Annotation is an observation placed on the timeline.
type Annotation struct {
	analysis.Observation
	StartTime  float64          `json:"start_time"`
	Comment    string           `json:"comment"`
	PracticeID int64            `json:"practice_id,omitempty"`
	Status     AnnotationStatus `json:"status"`
}

// Result is the output of one run.
type Result struct {
	VideoID         int64                `json:"video_id"`
	Mode            transcription.Mode   `json:"mode"`
	Method          transcription.Method `json:"method"`
	Transcript      transcription.Result `json:"transcript"`
	Duration        float64              `json:"duration"`
	FramesExtracted int                  `json:"frames_extracted"`
	FramesSkipped   int                  `json:"frames_skipped"`
	Annotations     []Annotation         `json:"annotations"`
	TranscriptCount int                  `json:"transcript_observations"`
	VisualCount     int                  `json:"visual_observations"`
	Status          Status               `json:"status"`
	Stage           State                `json:"stage,omitempty"`
	Error           string               `json:"error,omitempty"`
}

// StageError reports the state a run failed in.
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	if e == nil || e.Err == nil {
		return "pipeline failed"
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
