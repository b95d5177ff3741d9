package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"starreview/internal/pipeline"
)

// AnnotationStatus is the review state of an annotation.
type AnnotationStatus string

const (
	AnnotationDraft       AnnotationStatus = "draft"
	AnnotationNeedsReview AnnotationStatus = "needs_review"
	AnnotationApproved    AnnotationStatus = "approved"
)

// Annotation is a stored timeline comment. PracticeID is 0 when the comment
// is not linked to a practice.
type Annotation struct {
	ID            int64            `json:"id"`
	VideoID       int64            `json:"video_id"`
	PracticeID    int64            `json:"practice_id,omitempty"`
	PracticeTitle string           `json:"practice_title,omitempty"`
	StartTime     float64          `json:"start_time"`
	Comment       string           `json:"comment"`
	Positive      bool             `json:"is_positive"`
	Confidence    float64          `json:"confidence"`
	Status        AnnotationStatus `json:"status"`
	AIGenerated   bool             `json:"ai_generated"`
	Source        string           `json:"source,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ManualAnnotation is a reviewer-authored comment.
type ManualAnnotation struct {
	StartTime  float64
	Comment    string
	Positive   bool
	PracticeID int64
}

const annotationColumns = "id, video_id, practice_id, practice_title, start_time, comment, is_positive, confidence, status, ai_generated, source, created_at"

func scanAnnotation(row scanner) (Annotation, error) {
	var (
		a          Annotation
		practiceID sql.NullInt64
		title      sql.NullString
		positive   int
		status     string
		ai         int
		source     sql.NullString
		createdRaw string
	)
	if err := row.Scan(&a.ID, &a.VideoID, &practiceID, &title, &a.StartTime, &a.Comment,
		&positive, &a.Confidence, &status, &ai, &source, &createdRaw); err != nil {
		return Annotation{}, err
	}
	a.PracticeID = practiceID.Int64
	a.PracticeTitle = title.String
	a.Positive = positive != 0
	a.Status = AnnotationStatus(status)
	a.AIGenerated = ai != 0
	a.Source = source.String
	if created, err := parseTimeString(createdRaw); err == nil {
		a.CreatedAt = created
	}
	return a, nil
}

// ReplaceAIAnnotations deletes the video's AI-generated annotations and
// inserts annotations in one transaction. Manual annotations are untouched.
func (s *Store) ReplaceAIAnnotations(ctx context.Context, videoID int64, annotations []pipeline.Annotation) (int, error) {
	var written int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		n, err := replaceAIAnnotationsTx(ctx, tx, videoID, annotations, s.timestamp())
		written = n
		return err
	})
	return written, err
}

func replaceAIAnnotationsTx(ctx context.Context, tx *sql.Tx, videoID int64, annotations []pipeline.Annotation, timestamp string) (int, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM annotations WHERE video_id = ? AND ai_generated = 1`, videoID); err != nil {
		return 0, fmt.Errorf("delete ai annotations: %w", err)
	}
	if len(annotations) == 0 {
		return 0, nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO annotations (video_id, practice_id, practice_title, start_time, comment, is_positive, confidence, status, ai_generated, source, created_at)
         VALUES (?, (SELECT id FROM practices WHERE id = ?), ?, ?, ?, ?, ?, ?, 1, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare annotation insert: %w", err)
	}
	defer stmt.Close()
	for _, ann := range annotations {
		if _, err := stmt.ExecContext(ctx,
			videoID,
			nullableID(ann.PracticeID),
			nullableString(ann.PracticeTitle),
			max(ann.StartTime, 0),
			ann.Comment,
			boolToInt(ann.Positive),
			ann.Confidence,
			string(ann.Status),
			nullableString(string(ann.Source)),
			timestamp,
		); err != nil {
			return 0, fmt.Errorf("insert annotation: %w", err)
		}
	}
	return len(annotations), nil
}

// AddManualAnnotation stores a reviewer comment. The start time must lie
// within the video when its duration is known.
func (s *Store) AddManualAnnotation(ctx context.Context, videoID int64, in ManualAnnotation) (*Annotation, error) {
	comment := strings.TrimSpace(in.Comment)
	if comment == "" {
		return nil, errors.New("annotation comment required")
	}
	video, err := s.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if in.StartTime < 0 || (video.DurationSeconds > 0 && in.StartTime > video.DurationSeconds) {
		return nil, fmt.Errorf("start time %.1fs outside video (0-%.1fs)", in.StartTime, video.DurationSeconds)
	}
	var title any
	if in.PracticeID > 0 {
		var name string
		err := s.db.QueryRowContext(ensureContext(ctx), `SELECT title FROM practices WHERE id = ?`, in.PracticeID).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("practice %d: %w", in.PracticeID, ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("lookup practice: %w", err)
		}
		title = name
	}

	res, err := s.execWithRetry(ctx,
		`INSERT INTO annotations (video_id, practice_id, practice_title, start_time, comment, is_positive, confidence, status, ai_generated, source, created_at)
         VALUES (?, ?, ?, ?, ?, ?, 1, ?, 0, 'manual', ?)`,
		videoID, nullableID(in.PracticeID), title, in.StartTime, comment, boolToInt(in.Positive),
		AnnotationApproved, s.timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert annotation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+annotationColumns+` FROM annotations WHERE id = ?`, id)
	ann, err := scanAnnotation(row)
	if err != nil {
		return nil, fmt.Errorf("get annotation: %w", err)
	}
	return &ann, nil
}

// ListAnnotations returns a video's annotations in timeline order.
func (s *Store) ListAnnotations(ctx context.Context, videoID int64) ([]Annotation, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+annotationColumns+` FROM annotations WHERE video_id = ? ORDER BY start_time, id`, videoID)
	if err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	defer rows.Close()

	var out []Annotation
	for rows.Next() {
		ann, err := scanAnnotation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		out = append(out, ann)
	}
	return out, rows.Err()
}

// CountAIAnnotations returns how many AI-generated annotations a video has.
func (s *Store) CountAIAnnotations(ctx context.Context, videoID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT COUNT(1) FROM annotations WHERE video_id = ? AND ai_generated = 1`, videoID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count annotations: %w", err)
	}
	return count, nil
}
