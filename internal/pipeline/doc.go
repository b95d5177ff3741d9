// Package pipeline orchestrates one analysis run for a session video.
//
// A run walks a fixed state machine: audio extraction, transcription, then
// (enhanced mode only) frame sampling and visual analysis, then transcript
// analysis and timestamp resolution. Transcript analysis is started as soon
// as the transcript exists so it overlaps the visual work. Progress is
// written to a ProgressSink at fixed checkpoints and never moves backwards
// within a run; a failed run leaves the last checkpoint in place.
//
// Visual and transcript analysis failures cost only their modality's
// observations. Extraction, transcription, validation and commit failures
// end the run with a *StageError naming the state that failed.
package pipeline
