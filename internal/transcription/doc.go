// Package transcription turns extracted session audio into text plus timed
// segments.
//
// Two engines satisfy Engine. Local runs WhisperX on this machine and keeps
// its model in a ModelCache owned by the engine, so concurrent runs in one
// process load it once. Remote uploads the audio to the hosted Whisper API
// and asks for segment timestamps. Select picks the engine for a Mode; a
// missing engine is an error rather than a silent switch to the other one.
//
// Either engine may return zero segments. Callers fall back to distributing
// annotations across the video when that happens.
package transcription
