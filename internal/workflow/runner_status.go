package workflow

import (
	"context"

	"starreview/internal/store"
)

// StatusReport is the polled view of one video.
type StatusReport struct {
	VideoID           int64             `json:"video_id"`
	Title             string            `json:"title"`
	Status            store.VideoStatus `json:"status"`
	ProgressPercent   int               `json:"progress"`
	ProgressStage     string            `json:"stage"`
	ErrorMessage      string            `json:"error,omitempty"`
	HasTranscript     bool              `json:"has_transcript"`
	AIAnnotationCount int               `json:"ai_annotation_count"`
}

// Status returns the current progress and results summary of a video.
func Status(ctx context.Context, st *store.Store, videoID int64) (StatusReport, error) {
	video, err := st.GetVideo(ctx, videoID)
	if err != nil {
		return StatusReport{}, err
	}
	hasTranscript, err := st.HasTranscript(ctx, videoID)
	if err != nil {
		return StatusReport{}, err
	}
	count, err := st.CountAIAnnotations(ctx, videoID)
	if err != nil {
		return StatusReport{}, err
	}
	return StatusReport{
		VideoID:           video.ID,
		Title:             video.Title,
		Status:            video.Status,
		ProgressPercent:   video.ProgressPercent,
		ProgressStage:     video.ProgressStage,
		ErrorMessage:      video.ErrorMessage,
		HasTranscript:     hasTranscript,
		AIAnnotationCount: count,
	}, nil
}

// Status returns the report for videoID using the runner's store.
func (r *Runner) Status(ctx context.Context, videoID int64) (StatusReport, error) {
	return Status(ctx, r.store, videoID)
}
