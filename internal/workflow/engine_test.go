package workflow_test

import (
	"encoding/json"
	"testing"

	"github.com/kiranshivaraju/scribepipe/internal/workflow"
	"github.com/kiranshivaraju/scribepipe/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionRef(t *testing.T) {
	ref := workflow.ExecutionRef("scribepipe.jobs", "abc-123")
	assert.Equal(t, "nats://scribepipe.jobs/abc-123", ref)
}

func TestExecutionInput_WireFormat(t *testing.T) {
	input := schema.ExecutionInput{
		JobID:         "7f9c24e8-3b12-4e6a-9f00-111111111111",
		SourceAddress: "s3://in-bucket/movie.mp4",
		OutputBucket:  "out-bucket",
	}

	data, err := json.Marshal(input)
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, map[string]string{
		"job_id":        "7f9c24e8-3b12-4e6a-9f00-111111111111",
		"s3_address":    "s3://in-bucket/movie.mp4",
		"output_bucket": "out-bucket",
	}, decoded)
}
