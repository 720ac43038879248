package helpers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapError(t *testing.T) {
	cause := errors.New("connection refused")

	wrapped := WrapError(cause, "models.GetTrack")

	assert.Equal(t, "models.GetTrack: connection refused", wrapped.Error())
	assert.True(t, errors.Is(wrapped, cause))
}

func TestGenerateAndCompareHash(t *testing.T) {
	hash, err := GenerateHash("s3cr3t-pwd")
	assert.NoError(t, err)
	assert.NotEqual(t, "s3cr3t-pwd", hash)

	ok, err := CompareHash(hash, "s3cr3t-pwd")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = CompareHash(hash, "wrong")
	assert.Error(t, err)
	assert.False(t, ok)
}
