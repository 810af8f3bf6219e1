// Package blob is the object-storage boundary: s3:// address handling and
// transfer of media objects to and from local files.
package blob

import (
	"context"
	"fmt"
	"strings"
)

const scheme = "s3://"

// Store moves objects between the blob store and local files.
type Store interface {
	Download(ctx context.Context, addr Address, localPath string) error
	Upload(ctx context.Context, bucket, key, localPath string) error
}

// Address is a parsed s3://bucket/key pointer.
type Address struct {
	Bucket string
	Key    string
}

// ParseAddress validates and splits a storage pointer. The pointer must
// carry the s3:// scheme and name both a bucket and a key.
func ParseAddress(s string) (Address, error) {
	if !strings.HasPrefix(s, scheme) {
		return Address{}, fmt.Errorf("address %q must use the %s scheme", s, scheme)
	}
	rest := strings.TrimPrefix(s, scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return Address{}, fmt.Errorf("address %q must name a bucket and a key", s)
	}
	return Address{Bucket: bucket, Key: key}, nil
}

func (a Address) String() string {
	return scheme + a.Bucket + "/" + a.Key
}

// Prefix returns the address with its final path element removed; for a key
// without directories that is just the bucket address.
func (a Address) Prefix() string {
	full := a.String()
	idx := strings.LastIndex(full, "/")
	return full[:idx]
}

// NormalizeBucket strips an optional s3:// scheme from a bucket name.
func NormalizeBucket(bucket string) string {
	return strings.TrimPrefix(bucket, scheme)
}
