package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"starreview/internal/pipeline"
	"starreview/internal/transcription"
)

// AuditEntry is one row of the audit log.
type AuditEntry struct {
	ID        int64           `json:"id"`
	VideoID   int64           `json:"video_id"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AppendAudit records an action; details is marshaled to JSON.
func (s *Store) AppendAudit(ctx context.Context, videoID int64, action string, details any) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return appendAuditTx(ctx, tx, videoID, action, details, s.timestamp())
	})
}

func appendAuditTx(ctx context.Context, tx *sql.Tx, videoID int64, action string, details any, timestamp string) error {
	var payload any
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
		payload = string(data)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO audit_log (video_id, action, details_json, created_at) VALUES (?, ?, ?, ?)`,
		nullableID(videoID), action, payload, timestamp,
	); err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

// ListAudit returns a video's audit entries, oldest first.
func (s *Store) ListAudit(ctx context.Context, videoID int64) ([]AuditEntry, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, COALESCE(video_id, 0), action, details_json, created_at FROM audit_log WHERE video_id = ? ORDER BY id`, videoID)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var (
			entry      AuditEntry
			details    sql.NullString
			createdRaw string
		)
		if err := rows.Scan(&entry.ID, &entry.VideoID, &entry.Action, &details, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		if details.Valid {
			entry.Details = json.RawMessage(details.String)
		}
		if created, err := parseTimeString(createdRaw); err == nil {
			entry.CreatedAt = created
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// ActionAIAnalysis is the audit action written after a successful run.
const ActionAIAnalysis = "ai_analysis"

// AnalysisAudit is the detail payload of an ai_analysis entry.
type AnalysisAudit struct {
	Method             transcription.Method `json:"method"`
	UseEnhanced        bool                 `json:"use_enhanced"`
	AnnotationsCreated int                  `json:"annotations_created"`
	FramesExtracted    int                  `json:"frames_extracted"`
	RunID              string               `json:"run_id,omitempty"`
}

// SaveAnalysis commits a successful run in one transaction: the transcript,
// the replacement AI annotations, the analyzed status, and the audit entry.
func (s *Store) SaveAnalysis(ctx context.Context, result pipeline.Result, runID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		timestamp := s.timestamp()
		if err := upsertTranscriptTx(ctx, tx, result.VideoID, result.Transcript, timestamp); err != nil {
			return err
		}
		created, err := replaceAIAnnotationsTx(ctx, tx, result.VideoID, result.Annotations, timestamp)
		if err != nil {
			return err
		}
		if err := markAnalyzedTx(ctx, tx, result.VideoID, timestamp); err != nil {
			return err
		}
		return appendAuditTx(ctx, tx, result.VideoID, ActionAIAnalysis, AnalysisAudit{
			Method:             result.Method,
			UseEnhanced:        result.Mode == transcription.ModeEnhanced,
			AnnotationsCreated: created,
			FramesExtracted:    result.FramesExtracted,
			RunID:              runID,
		}, timestamp)
	})
}
