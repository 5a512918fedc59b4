package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	assert.Equal(t, Ok, ClassifyError(nil))
	assert.Equal(t, DuplicateIgnored, ClassifyError(&pq.Error{Code: "23505"}))
	assert.Equal(t, ForeignKeyViolation, ClassifyError(&pq.Error{Code: "23503"}))
	assert.Equal(t, OtherError, ClassifyError(&pq.Error{Code: "42P01"}))
	assert.Equal(t, OtherError, ClassifyError(errors.New("connection refused")))
}

func TestClassifyErrorUnwraps(t *testing.T) {
	wrapped := fmt.Errorf("inserting media: %w", &pq.Error{Code: "23505"})
	assert.Equal(t, DuplicateIgnored, ClassifyError(wrapped))

	deeper := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", &pq.Error{Code: "23503"}))
	assert.Equal(t, ForeignKeyViolation, ClassifyError(deeper))
}
