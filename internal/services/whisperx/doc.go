// Package whisperx runs the WhisperX command line through uvx for local
// speech-to-text.
//
// Prepare provisions the tool and model once, TranscribeFile decodes one WAV
// into sentence-level segments, and LoadTranscript reads the JSON WhisperX
// writes next to its input. The transcription package wraps this service in
// a cached, single-flight model handle.
package whisperx
