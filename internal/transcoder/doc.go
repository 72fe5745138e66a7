// Package transcoder converts files by running FFmpeg.
//
// Each job is attempted with one of two command variants:
//   - accelerated: VA-API decode and h264_vaapi encode on the render device
//   - software: libx264 for video targets, or FFmpeg's defaults for anything else
//
// The accelerated variant is chosen only when software encoding is not forced,
// the input classifies as video, and the [Prober] reports vaapi. If it fails,
// the software variant runs once on the same paths; there are no further
// retries.
//
// Commands are built as argument vectors and never pass through a shell.
// Running jobs are tracked so [Transcoder.Cleanup] can kill them on shutdown.
package transcoder
