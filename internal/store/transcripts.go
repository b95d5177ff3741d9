package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"starreview/internal/transcription"
)

// Transcript is the stored transcript of a video.
type Transcript struct {
	VideoID   int64                `json:"video_id"`
	Result    transcription.Result `json:"result"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// UpsertTranscript stores or replaces the transcript of a video.
func (s *Store) UpsertTranscript(ctx context.Context, videoID int64, result transcription.Result) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return upsertTranscriptTx(ctx, tx, videoID, result, s.timestamp())
	})
}

func upsertTranscriptTx(ctx context.Context, tx *sql.Tx, videoID int64, result transcription.Result, timestamp string) error {
	segments := result.Segments
	if segments == nil {
		segments = []transcription.Segment{}
	}
	segmentsJSON, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO transcripts (video_id, full_text, language, segments_json, method, processing_seconds, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(video_id) DO UPDATE SET
             full_text = excluded.full_text,
             language = excluded.language,
             segments_json = excluded.segments_json,
             method = excluded.method,
             processing_seconds = excluded.processing_seconds,
             updated_at = excluded.updated_at`,
		videoID, result.Text, nullableString(result.Language), string(segmentsJSON),
		string(result.Method), result.Duration.Seconds(), timestamp,
	)
	if err != nil {
		return fmt.Errorf("upsert transcript: %w", err)
	}
	return nil
}

// GetTranscript returns the stored transcript, or ErrNotFound.
func (s *Store) GetTranscript(ctx context.Context, videoID int64) (*Transcript, error) {
	var (
		t            Transcript
		language     sql.NullString
		segmentsJSON string
		method       string
		seconds      float64
		updatedRaw   string
	)
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT video_id, full_text, language, segments_json, method, processing_seconds, updated_at
         FROM transcripts WHERE video_id = ?`, videoID,
	).Scan(&t.VideoID, &t.Result.Text, &language, &segmentsJSON, &method, &seconds, &updatedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transcript for video %d: %w", videoID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	if err := json.Unmarshal([]byte(segmentsJSON), &t.Result.Segments); err != nil {
		return nil, fmt.Errorf("decode segments: %w", err)
	}
	t.Result.Language = language.String
	t.Result.Method = transcription.Method(method)
	t.Result.Duration = time.Duration(seconds * float64(time.Second))
	if updated, err := parseTimeString(updatedRaw); err == nil {
		t.UpdatedAt = updated
	}
	return &t, nil
}

// HasTranscript reports whether a transcript is stored for the video.
func (s *Store) HasTranscript(ctx context.Context, videoID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT COUNT(1) FROM transcripts WHERE video_id = ?`, videoID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check transcript: %w", err)
	}
	return count > 0, nil
}
