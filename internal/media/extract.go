// Package media handles audio demux from video containers via ffmpeg.
package media

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

var audioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".flac": true,
	".aac":  true,
}

// IsAudioPath reports whether the file is already an audio container and
// needs no demux step.
func IsAudioPath(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// Extractor demuxes the audio track of a media file with ffmpeg.
type Extractor struct {
	FFmpegPath string
}

// NewExtractor creates an Extractor; ffmpegPath defaults to "ffmpeg".
func NewExtractor(ffmpegPath string) *Extractor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Extractor{FFmpegPath: ffmpegPath}
}

// ExtractAudio writes the audio track of input to output as 16kHz mono PCM,
// the layout speech models expect.
func (e *Extractor) ExtractAudio(ctx context.Context, input, output string) error {
	if _, err := exec.LookPath(e.FFmpegPath); err != nil {
		return fmt.Errorf("%s not found in PATH: %w", e.FFmpegPath, err)
	}

	args := []string{
		"-i", input,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		output,
	}

	cmd := exec.CommandContext(ctx, e.FFmpegPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w\nOutput: %s", err, tail(string(out), 2048))
	}
	return nil
}

// tail keeps the last n bytes of command output, where the actual ffmpeg
// error lives.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
