// Package services defines shared utilities consumed by the analysis pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp video IDs, stage names, and run identifiers
//     for logging.
//   - Structured error markers plus the Wrap helper so failures from ffmpeg,
//     transcription, and remote inference can be classified as fatal or
//     absorbable by the orchestrator.
//
// Sub-packages hold the thin clients for remote inference (llm, vision) and
// the local whisperx command line.
package services
