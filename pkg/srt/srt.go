// Package srt renders timed transcription segments into SubRip subtitle
// files and parses them back.
package srt

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one timed piece of transcribed text. Start and End are in
// seconds; callers must ensure they are non-negative.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Cue is one parsed subtitle entry.
type Cue struct {
	Index int
	Start string
	End   string
	Text  string
}

// FormatTimestamp converts fractional seconds into the SubRip time format
// HH:MM:SS,mmm. Components are derived by integer floor/modulo.
func FormatTimestamp(seconds float64) string {
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60
	millis := int((seconds - float64(int(seconds))) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// Render produces a SubRip document from segments: sequential 1-based cue
// numbers, "start --> end" time lines, and a blank line between cues.
func Render(segments []Segment) string {
	blocks := make([]string, 0, len(segments))
	for i, seg := range segments {
		blocks = append(blocks, fmt.Sprintf("%d\n%s --> %s\n%s\n",
			i+1, FormatTimestamp(seg.Start), FormatTimestamp(seg.End), seg.Text))
	}
	return strings.Join(blocks, "\n")
}

// Parse reads a SubRip document back into cues. It accepts the output of
// Render and tolerates a trailing newline.
func Parse(content string) ([]Cue, error) {
	content = strings.TrimRight(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if content == "" {
		return nil, nil
	}

	var cues []Cue
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimRight(block, "\n"), "\n")
		if len(lines) < 2 {
			return nil, fmt.Errorf("malformed cue block %q", block)
		}

		index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			return nil, fmt.Errorf("parse cue index %q: %w", lines[0], err)
		}

		start, end, err := parseTimeLine(lines[1])
		if err != nil {
			return nil, err
		}

		cues = append(cues, Cue{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(lines[2:], "\n"),
		})
	}
	return cues, nil
}

func parseTimeLine(line string) (start, end string, err error) {
	parts := strings.Split(line, " --> ")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed time line %q", line)
	}
	for _, p := range parts {
		if len(p) != 12 || p[2] != ':' || p[5] != ':' || p[8] != ',' {
			return "", "", fmt.Errorf("malformed timestamp %q", p)
		}
	}
	return parts[0], parts[1], nil
}
