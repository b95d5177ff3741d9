// Package frames samples still images from a session video for visual
// analysis.
//
// Three strategies choose timestamps: uniform (n frames spread over the frame
// count), interval (one frame every k seconds), and key_moments (transcript
// segment starts topped up with evenly spaced points). Timestamp planning is
// pure and lives in plan.go; Sampler performs the ffmpeg grabs, downscaling
// each frame so its longest side stays within the configured bound.
package frames
