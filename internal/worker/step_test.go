package worker_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kiranshivaraju/scribepipe/internal/blob"
	"github.com/kiranshivaraju/scribepipe/internal/worker"
	"github.com/kiranshivaraju/scribepipe/pkg/schema"
	"github.com/kiranshivaraju/scribepipe/pkg/srt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeBlobs struct {
	downloadErr error
	uploadErr   error

	uploadedBucket string
	uploadedKey    string
	uploadedBody   string
}

func (f *fakeBlobs) Download(_ context.Context, _ blob.Address, localPath string) error {
	if f.downloadErr != nil {
		return f.downloadErr
	}
	return os.WriteFile(localPath, []byte("fake media bytes"), 0o644)
}

func (f *fakeBlobs) Upload(_ context.Context, bucket, key, localPath string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	body, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	f.uploadedBucket = bucket
	f.uploadedKey = key
	f.uploadedBody = string(body)
	return nil
}

type fakeExtractor struct {
	err    error
	called bool
}

func (f *fakeExtractor) ExtractAudio(_ context.Context, _, output string) error {
	f.called = true
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(output, []byte("fake pcm"), 0o644)
}

type fakeTranscriber struct {
	segments []srt.Segment
	err      error
	panics   bool
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string) ([]srt.Segment, error) {
	if f.panics {
		panic("whisper blew up")
	}
	return f.segments, f.err
}

func newStep(t *testing.T, blobs *fakeBlobs, ex *fakeExtractor, tr *fakeTranscriber) (*worker.Step, string) {
	t.Helper()
	workDir := t.TempDir()
	return &worker.Step{
		Blobs:       blobs,
		Extractor:   ex,
		Transcriber: tr,
		WorkDir:     workDir,
	}, workDir
}

func assertWorkDirEmpty(t *testing.T, workDir string) {
	t.Helper()
	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "work dir must be cleaned up")
}

var testInput = worker.Input{
	SourceAddress: "s3://in-bucket/uploads/movie.mp4",
	OutputBucket:  "out-bucket",
	JobID:         "dddddddd-dddd-dddd-dddd-dddddddddddd",
}

// --- tests ---

func TestRun_Success(t *testing.T) {
	blobs := &fakeBlobs{}
	ex := &fakeExtractor{}
	tr := &fakeTranscriber{segments: []srt.Segment{
		{Start: 0, End: 1.5, Text: "hello"},
		{Start: 1.5, End: 3, Text: "world"},
	}}
	step, workDir := newStep(t, blobs, ex, tr)

	outcome := step.Run(context.Background(), testInput)

	assert.Equal(t, schema.OutcomeSucceeded, outcome.Status)
	assert.Equal(t, testInput.JobID, outcome.JobID)
	assert.Equal(t, "out-bucket", outcome.OutputBucket)
	assert.Equal(t, "transcripts/"+testInput.JobID+".srt", outcome.OutputKey)
	assert.Empty(t, outcome.Error)

	assert.True(t, ex.called, "mp4 input must be run through extraction")
	assert.Equal(t, "out-bucket", blobs.uploadedBucket)
	assert.True(t, strings.HasPrefix(blobs.uploadedBody, "1\n00:00:00,000 --> 00:00:01,500\nhello\n"))
	assertWorkDirEmpty(t, workDir)
}

func TestRun_AudioInputSkipsExtraction(t *testing.T) {
	blobs := &fakeBlobs{}
	ex := &fakeExtractor{}
	tr := &fakeTranscriber{segments: []srt.Segment{{Start: 0, End: 1, Text: "hi"}}}
	step, _ := newStep(t, blobs, ex, tr)

	in := testInput
	in.SourceAddress = "s3://in-bucket/uploads/podcast.mp3"
	outcome := step.Run(context.Background(), in)

	assert.Equal(t, schema.OutcomeSucceeded, outcome.Status)
	assert.False(t, ex.called, "audio input must skip ffmpeg")
}

func TestRun_NormalizesOutputBucket(t *testing.T) {
	blobs := &fakeBlobs{}
	step, _ := newStep(t, blobs, &fakeExtractor{}, &fakeTranscriber{
		segments: []srt.Segment{{Start: 0, End: 1, Text: "hi"}},
	})

	in := testInput
	in.OutputBucket = "s3://out-bucket"
	outcome := step.Run(context.Background(), in)

	assert.Equal(t, schema.OutcomeSucceeded, outcome.Status)
	assert.Equal(t, "out-bucket", outcome.OutputBucket)
	assert.Equal(t, "out-bucket", blobs.uploadedBucket)
}

func TestRun_BadSourceAddress(t *testing.T) {
	step, _ := newStep(t, &fakeBlobs{}, &fakeExtractor{}, &fakeTranscriber{})

	in := testInput
	in.SourceAddress = "not-an-address"
	outcome := step.Run(context.Background(), in)

	assert.Equal(t, schema.OutcomeFailed, outcome.Status)
	assert.Contains(t, outcome.Error, "parse source address")
}

func TestRun_DownloadFailure(t *testing.T) {
	blobs := &fakeBlobs{downloadErr: errors.New("object not found")}
	step, workDir := newStep(t, blobs, &fakeExtractor{}, &fakeTranscriber{})

	outcome := step.Run(context.Background(), testInput)

	assert.Equal(t, schema.OutcomeFailed, outcome.Status)
	assert.Contains(t, outcome.Error, "object not found")
	assertWorkDirEmpty(t, workDir)
}

func TestRun_ExtractionFailure(t *testing.T) {
	ex := &fakeExtractor{err: errors.New("ffmpeg exited with code 1")}
	step, workDir := newStep(t, &fakeBlobs{}, ex, &fakeTranscriber{})

	outcome := step.Run(context.Background(), testInput)

	assert.Equal(t, schema.OutcomeFailed, outcome.Status)
	assert.Contains(t, outcome.Error, "extract audio")
	assertWorkDirEmpty(t, workDir)
}

func TestRun_TranscriptionFailure(t *testing.T) {
	tr := &fakeTranscriber{err: errors.New("model file missing")}
	step, workDir := newStep(t, &fakeBlobs{}, &fakeExtractor{}, tr)

	outcome := step.Run(context.Background(), testInput)

	assert.Equal(t, schema.OutcomeFailed, outcome.Status)
	assert.Contains(t, outcome.Error, "transcribe")
	assertWorkDirEmpty(t, workDir)
}

func TestRun_UploadFailure(t *testing.T) {
	blobs := &fakeBlobs{uploadErr: errors.New("access denied")}
	step, workDir := newStep(t, blobs, &fakeExtractor{}, &fakeTranscriber{
		segments: []srt.Segment{{Start: 0, End: 1, Text: "hi"}},
	})

	outcome := step.Run(context.Background(), testInput)

	assert.Equal(t, schema.OutcomeFailed, outcome.Status)
	assert.Contains(t, outcome.Error, "upload subtitles")
	assertWorkDirEmpty(t, workDir)
}

func TestRun_PanicBecomesFailedOutcome(t *testing.T) {
	tr := &fakeTranscriber{panics: true}
	step, _ := newStep(t, &fakeBlobs{}, &fakeExtractor{}, tr)

	outcome := step.Run(context.Background(), testInput)

	assert.Equal(t, schema.OutcomeFailed, outcome.Status)
	assert.Contains(t, outcome.Error, "panic")
}

func TestRun_KeepsJobIDAndInputOnFailure(t *testing.T) {
	blobs := &fakeBlobs{downloadErr: errors.New("gone")}
	step, _ := newStep(t, blobs, &fakeExtractor{}, &fakeTranscriber{})

	outcome := step.Run(context.Background(), testInput)

	assert.Equal(t, testInput.JobID, outcome.JobID)
	assert.Equal(t, testInput.SourceAddress, outcome.InputFile)
	assert.NotEmpty(t, filepath.Base(outcome.InputFile))
}
