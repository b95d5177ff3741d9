package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"starreview/internal/pipeline"
	"starreview/internal/practice"
)

// VideoStatus is the lifecycle state of a stored video.
type VideoStatus string

const (
	VideoUploaded   VideoStatus = "uploaded"
	VideoProcessing VideoStatus = "processing"
	VideoAnalyzed   VideoStatus = "analyzed"
	VideoFailed     VideoStatus = "failed"
)

// Video is a stored session recording.
type Video struct {
	ID              int64             `json:"id"`
	Title           string            `json:"title"`
	FilePath        string            `json:"file_path"`
	DurationSeconds float64           `json:"duration_seconds"`
	Category        practice.Category `json:"category"`
	Status          VideoStatus       `json:"status"`
	ErrorMessage    string            `json:"error_message,omitempty"`
	ProgressPercent int               `json:"progress_percent"`
	ProgressStage   string            `json:"progress_stage,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	AnalyzedAt      *time.Time        `json:"analyzed_at,omitempty"`
}

// PipelineVideo returns the subset of v the analyzer reads.
func (v Video) PipelineVideo() pipeline.Video {
	return pipeline.Video{
		ID:       v.ID,
		Path:     v.FilePath,
		Duration: v.DurationSeconds,
		Category: v.Category,
	}
}

// NewVideo describes a video to register.
type NewVideo struct {
	Path     string
	Title    string
	Category practice.Category
	Duration float64
}

const videoColumns = "id, title, file_path, duration_seconds, category, status, error_message, progress_percent, progress_stage, created_at, updated_at, analyzed_at"

func scanVideo(row scanner) (*Video, error) {
	var (
		v           Video
		category    string
		status      string
		errorMsg    sql.NullString
		stage       sql.NullString
		createdRaw  string
		updatedRaw  string
		analyzedRaw sql.NullString
	)
	if err := row.Scan(
		&v.ID,
		&v.Title,
		&v.FilePath,
		&v.DurationSeconds,
		&category,
		&status,
		&errorMsg,
		&v.ProgressPercent,
		&stage,
		&createdRaw,
		&updatedRaw,
		&analyzedRaw,
	); err != nil {
		return nil, err
	}
	v.Category = practice.Category(category)
	v.Status = VideoStatus(status)
	v.ErrorMessage = errorMsg.String
	v.ProgressStage = stage.String
	if created, err := parseTimeString(createdRaw); err == nil {
		v.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		v.UpdatedAt = updated
	}
	v.AnalyzedAt = parseNullTime(analyzedRaw)
	return &v, nil
}

// TitleFromPath derives a display title from a file name:
// "parent_session-03.mp4" becomes "Parent Session 03".
func TitleFromPath(path string) string {
	base := filepath.Base(strings.TrimSpace(path))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return "Untitled Session"
	}
	return cases.Title(language.English).String(base)
}

// AddVideo registers a video file. The path is stored as given; callers
// pass an absolute path.
func (s *Store) AddVideo(ctx context.Context, in NewVideo) (*Video, error) {
	path := strings.TrimSpace(in.Path)
	if path == "" {
		return nil, errors.New("video path required")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = TitleFromPath(path)
	}
	category := in.Category
	if category == "" {
		category = practice.CategoryNone
	}
	timestamp := s.timestamp()

	res, err := s.execWithRetry(ctx,
		`INSERT INTO videos (title, file_path, duration_seconds, category, status, progress_percent, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		title, path, max(in.Duration, 0), string(category), VideoUploaded, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert video: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetVideo(ctx, id)
}

// GetVideo fetches a video by id. A missing row returns ErrNotFound.
func (s *Store) GetVideo(ctx context.Context, id int64) (*Video, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("video %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	return v, nil
}

// ListVideos returns videos in id order, optionally filtered by status.
func (s *Store) ListVideos(ctx context.Context, statuses ...VideoStatus) ([]Video, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + videoColumns + ` FROM videos`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, 0, len(statuses))
		for _, status := range statuses {
			placeholders = append(placeholders, "?")
			args = append(args, string(status))
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ",") + `)`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var videos []Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, *v)
	}
	return videos, rows.Err()
}

// UpdateVideoDuration records a probed duration.
func (s *Store) UpdateVideoDuration(ctx context.Context, id int64, seconds float64) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE videos SET duration_seconds = ?, updated_at = ? WHERE id = ?`,
		max(seconds, 0), s.timestamp(), id,
	)
	if err != nil {
		return fmt.Errorf("update duration: %w", err)
	}
	return s.requireRow(ctx, res, id)
}

// BeginAnalysis atomically moves a video to processing and resets its
// progress. A video already processing is refused with
// ErrAnalysisInProgress unless reclaim is set.
func (s *Store) BeginAnalysis(ctx context.Context, id int64, reclaim bool) (*Video, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE videos
         SET status = ?, error_message = NULL, progress_percent = 0, progress_stage = NULL, updated_at = ?
         WHERE id = ? AND (status != ? OR ?)`,
		VideoProcessing, s.timestamp(), id, VideoProcessing, boolToInt(reclaim),
	)
	if err != nil {
		return nil, fmt.Errorf("begin analysis: %w", err)
	}
	changed, err := affectedOne(res)
	if err != nil {
		return nil, fmt.Errorf("begin analysis: %w", err)
	}
	if !changed {
		if _, err := s.GetVideo(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("video %d: %w", id, ErrAnalysisInProgress)
	}
	return s.GetVideo(ctx, id)
}

// UpdateProgress records the latest checkpoint. It satisfies
// pipeline.ProgressSink.
func (s *Store) UpdateProgress(ctx context.Context, videoID int64, progress pipeline.Progress) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE videos SET progress_percent = ?, progress_stage = ?, updated_at = ? WHERE id = ?`,
		min(max(progress.Percent, 0), 100), nullableString(progress.Stage), s.timestamp(), videoID,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return s.requireRow(ctx, res, videoID)
}

// MarkAnalyzed records a successful run.
func (s *Store) MarkAnalyzed(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return markAnalyzedTx(ctx, tx, id, s.timestamp())
	})
}

func markAnalyzedTx(ctx context.Context, tx *sql.Tx, id int64, timestamp string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE videos SET status = ?, error_message = NULL, analyzed_at = ?, updated_at = ? WHERE id = ?`,
		VideoAnalyzed, timestamp, timestamp, id,
	)
	if err != nil {
		return fmt.Errorf("mark analyzed: %w", err)
	}
	changed, err := affectedOne(res)
	if err != nil {
		return fmt.Errorf("mark analyzed: %w", err)
	}
	if !changed {
		return fmt.Errorf("video %d: %w", id, ErrNotFound)
	}
	return nil
}

// MarkFailed records a failed run. Progress is left at the last checkpoint.
func (s *Store) MarkFailed(ctx context.Context, id int64, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		message = "analysis failed"
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE videos SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		VideoFailed, message, s.timestamp(), id,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return s.requireRow(ctx, res, id)
}

// CountByStatus returns the number of videos in each status.
func (s *Store) CountByStatus(ctx context.Context) (map[VideoStatus]int, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM videos GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("video stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[VideoStatus]int)
	for rows.Next() {
		var status VideoStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func (s *Store) requireRow(ctx context.Context, res sql.Result, id int64) error {
	changed, err := affectedOne(res)
	if err != nil {
		return err
	}
	if changed {
		return nil
	}
	_, err = s.GetVideo(ctx, id)
	return err
}
