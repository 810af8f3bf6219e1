// Package worker runs a single transcription job end to end: fetch the
// source object, extract audio if needed, transcribe, render SRT, and upload
// the result.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kiranshivaraju/scribepipe/internal/blob"
	"github.com/kiranshivaraju/scribepipe/internal/media"
	"github.com/kiranshivaraju/scribepipe/internal/transcribe"
	"github.com/kiranshivaraju/scribepipe/pkg/schema"
	"github.com/kiranshivaraju/scribepipe/pkg/srt"
)

// AudioExtractor abstracts the ffmpeg invocation for tests.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, input, output string) error
}

var _ AudioExtractor = (*media.Extractor)(nil)

// Input identifies the job a step run processes.
type Input struct {
	SourceAddress string
	OutputBucket  string
	JobID         string
}

// Step holds the externals a transcription run needs.
type Step struct {
	Blobs       blob.Store
	Extractor   AudioExtractor
	Transcriber transcribe.Transcriber
	WorkDir     string
}

// Run executes the transcription pipeline for one job. It never returns an
// error: every failure, panics included, becomes a FAILED outcome so the
// caller always has something to report.
func (s *Step) Run(ctx context.Context, in Input) (outcome schema.JobOutcome) {
	outcome = schema.JobOutcome{
		Status:    schema.OutcomeFailed,
		JobID:     in.JobID,
		InputFile: in.SourceAddress,
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("transcription run panicked", "job_id", in.JobID, "panic", r)
			outcome.Status = schema.OutcomeFailed
			outcome.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	addr, err := blob.ParseAddress(in.SourceAddress)
	if err != nil {
		outcome.Error = fmt.Sprintf("parse source address: %v", err)
		return outcome
	}

	workDir, err := os.MkdirTemp(s.WorkDir, "transcribe-"+in.JobID+"-")
	if err != nil {
		outcome.Error = fmt.Sprintf("create work dir: %v", err)
		return outcome
	}
	defer os.RemoveAll(workDir)

	localInput := filepath.Join(workDir, filepath.Base(addr.Key))
	slog.Info("downloading source", "job_id", in.JobID, "address", addr.String())
	if err := s.Blobs.Download(ctx, addr, localInput); err != nil {
		outcome.Error = fmt.Sprintf("download %s: %v", addr, err)
		return outcome
	}

	audioPath := localInput
	if !media.IsAudioPath(localInput) {
		audioPath = filepath.Join(workDir, in.JobID+".wav")
		slog.Info("extracting audio", "job_id", in.JobID)
		if err := s.Extractor.ExtractAudio(ctx, localInput, audioPath); err != nil {
			outcome.Error = fmt.Sprintf("extract audio: %v", err)
			return outcome
		}
	}

	slog.Info("transcribing", "job_id", in.JobID)
	segments, err := s.Transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		outcome.Error = fmt.Sprintf("transcribe: %v", err)
		return outcome
	}

	srtPath := filepath.Join(workDir, in.JobID+".srt")
	if err := os.WriteFile(srtPath, []byte(srt.Render(segments)), 0o644); err != nil {
		outcome.Error = fmt.Sprintf("write subtitles: %v", err)
		return outcome
	}

	outputBucket := blob.NormalizeBucket(in.OutputBucket)
	outputKey := fmt.Sprintf("transcripts/%s.srt", in.JobID)
	slog.Info("uploading subtitles", "job_id", in.JobID, "bucket", outputBucket, "key", outputKey)
	if err := s.Blobs.Upload(ctx, outputBucket, outputKey, srtPath); err != nil {
		outcome.Error = fmt.Sprintf("upload subtitles: %v", err)
		return outcome
	}

	outcome.Status = schema.OutcomeSucceeded
	outcome.OutputBucket = outputBucket
	outcome.OutputKey = outputKey
	outcome.Error = ""
	return outcome
}
