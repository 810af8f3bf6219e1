// Package transcribe turns audio files into timed text segments. The speech
// model itself is an external binary; this package only shapes its output.
package transcribe

import (
	"context"

	"github.com/kiranshivaraju/scribepipe/pkg/srt"
)

// Transcriber converts an audio file into timed text segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]srt.Segment, error)
}
