package blob_test

import (
	"testing"

	"github.com/kiranshivaraju/scribepipe/internal/blob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	addr, err := blob.ParseAddress("s3://video-bucket/uploads/movie.mp4")
	require.NoError(t, err)
	assert.Equal(t, "video-bucket", addr.Bucket)
	assert.Equal(t, "uploads/movie.mp4", addr.Key)
	assert.Equal(t, "s3://video-bucket/uploads/movie.mp4", addr.String())
}

func TestParseAddress_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"no scheme":      "video-bucket/movie.mp4",
		"http scheme":    "https://video-bucket/movie.mp4",
		"bucket only":    "s3://video-bucket",
		"trailing slash": "s3://video-bucket/",
		"no bucket":      "s3:///movie.mp4",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := blob.ParseAddress(input)
			assert.Error(t, err)
		})
	}
}

func TestAddressPrefix(t *testing.T) {
	cases := []struct {
		address string
		want    string
	}{
		{"s3://bucket/dir/sub/movie.mp4", "s3://bucket/dir/sub"},
		{"s3://bucket/dir/movie.mp4", "s3://bucket/dir"},
		{"s3://bucket/movie.mp4", "s3://bucket"},
	}
	for _, tc := range cases {
		addr, err := blob.ParseAddress(tc.address)
		require.NoError(t, err)
		assert.Equal(t, tc.want, addr.Prefix(), "address=%s", tc.address)
	}
}

func TestNormalizeBucket(t *testing.T) {
	assert.Equal(t, "out-bucket", blob.NormalizeBucket("s3://out-bucket"))
	assert.Equal(t, "out-bucket", blob.NormalizeBucket("out-bucket"))
}
