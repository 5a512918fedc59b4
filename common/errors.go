package common

import (
	"errors"
)

var ErrMediaTooLarge = errors.New("media too large")
var ErrTypeNotAllowed = errors.New("file type not allowed")
var ErrEventNotFound = errors.New("event not found")
var ErrUploadCancelled = errors.New("upload cancelled")
var ErrUploadFailed = errors.New("upload failed")
var ErrAlreadyIngested = errors.New("media already ingested")
var ErrRateLimitExceeded = errors.New("rate limit exceeded")
var ErrBatchNotFound = errors.New("batch not found")
var ErrCandidateNotFound = errors.New("candidate not found")
