// Package schema defines the wire types exchanged between the API server and
// transcription workers.
package schema

const (
	OutcomeSucceeded = "SUCCEEDED"
	OutcomeFailed    = "FAILED"
)

// ExecutionInput is the message handed to the workflow transport when a job
// is submitted. Field names match the submission wire format.
type ExecutionInput struct {
	JobID         string `json:"job_id"`
	SourceAddress string `json:"s3_address"`
	OutputBucket  string `json:"output_bucket"`
}

// JobOutcome is the structured result a worker emits for one job: published
// to the outcome subject in listen mode, printed to stdout in one-shot mode.
type JobOutcome struct {
	Status       string `json:"status"`
	JobID        string `json:"jobId"`
	InputFile    string `json:"inputFile,omitempty"`
	OutputBucket string `json:"outputBucket,omitempty"`
	OutputKey    string `json:"outputKey,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Succeeded reports whether the outcome is the successful terminal result.
func (o JobOutcome) Succeeded() bool {
	return o.Status == OutcomeSucceeded
}
