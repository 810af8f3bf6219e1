package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kiranshivaraju/scribepipe/internal/config"
	"github.com/kiranshivaraju/scribepipe/pkg/srt"
)

// WhisperCLI runs a whisper.cpp-style binary and parses its JSON output.
type WhisperCLI struct {
	BinPath   string
	ModelPath string
	Language  string
}

// NewWhisperCLI builds a Transcriber from worker configuration.
func NewWhisperCLI(cfg config.WhisperConfig) *WhisperCLI {
	return &WhisperCLI{
		BinPath:   cfg.BinPath,
		ModelPath: cfg.ModelPath,
		Language:  cfg.Language,
	}
}

func (w *WhisperCLI) Transcribe(ctx context.Context, audioPath string) ([]srt.Segment, error) {
	if _, err := exec.LookPath(w.BinPath); err != nil {
		return nil, fmt.Errorf("%s not found in PATH: %w", w.BinPath, err)
	}

	outBase := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + "_transcript"
	args := []string{
		"-m", w.ModelPath,
		"-l", w.Language,
		"-oj",
		"-of", outBase,
		audioPath,
	}

	cmd := exec.CommandContext(ctx, w.BinPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("whisper failed: %w\nOutput: %s", err, string(out))
	}

	data, err := os.ReadFile(outBase + ".json")
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}
	return parseTranscription(data)
}

// whisper.cpp JSON layout: offsets are milliseconds from the start of the file.
type whisperOutput struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseTranscription(data []byte) ([]srt.Segment, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	segments := make([]srt.Segment, 0, len(out.Transcription))
	for _, t := range out.Transcription {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		segments = append(segments, srt.Segment{
			Start: float64(t.Offsets.From) / 1000,
			End:   float64(t.Offsets.To) / 1000,
			Text:  text,
		})
	}
	return segments, nil
}
