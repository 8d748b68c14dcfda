package kv

import "errors"

var (
	// ErrRevisionMismatch means a conditional Update lost a race with a
	// concurrent writer; callers should re-read and retry.
	ErrRevisionMismatch = errors.New("kv: revision mismatch")

	errNatsURLRequired = errors.New("nats_url is required")
	errBucketRequired  = errors.New("bucket is required")
	errPathRequired    = errors.New("sqlite path is required")
)
