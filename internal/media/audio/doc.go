// Package audio extracts the speech track of a session video into the mono
// 16 kHz 16-bit PCM WAV that both transcription strategies consume.
//
// The extracted file lives in a per-run scratch directory. Callers own it
// through Audio.Cleanup, which is idempotent and safe to defer on every exit
// path.
package audio
