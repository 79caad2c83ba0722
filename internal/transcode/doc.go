// Package transcode turns arbitrary uploaded audio into a 16-bit PCM WAV
// carrier by piping it through FFmpeg.
//
// Uploads that are already WAV skip FFmpeg entirely; see Normalize.
package transcode
