package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"starreview/internal/logging"
	"starreview/internal/metrics"
	"starreview/internal/pipeline"
	"starreview/internal/services"
	"starreview/internal/store"
)

// fail records a failed run. Progress is left where the pipeline stopped.
func (r *Runner) fail(ctx context.Context, logger *slog.Logger, video *store.Video, result pipeline.Result, runErr error) (pipeline.Result, error) {
	metrics.RunsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()

	message := failureMessage(result, runErr)
	stage := string(result.Stage)
	var stageErr *pipeline.StageError
	if errors.As(runErr, &stageErr) {
		stage = string(stageErr.Stage)
	}
	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("failed_stage", stage),
		logging.String("error_kind", services.KindName(runErr)),
		logging.String("error_message", message),
		logging.Error(runErr),
	)

	persistCtx := context.WithoutCancel(ctx)
	if err := r.store.MarkFailed(persistCtx, video.ID, message); err != nil {
		logger.Error("failed to persist analysis failure", logging.Error(err))
	}
	if err := r.notifier.NotifyAnalysisFailed(persistCtx, video.Title, stage, runErr); err != nil {
		warnNotifyFailed(logger, err)
	}
	return result, runErr
}

func failureMessage(result pipeline.Result, err error) string {
	if msg := strings.TrimSpace(result.Error); msg != "" {
		if result.Stage != "" {
			return string(result.Stage) + ": " + msg
		}
		return msg
	}
	if err != nil {
		return err.Error()
	}
	return "analysis failed without error detail"
}
