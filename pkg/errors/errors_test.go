package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	err := Clone(ErrNotFound, "Module not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "Module not found", err.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestWithStatus(t *testing.T) {
	err := WithStatus(ErrUpstream, http.StatusUnprocessableEntity, "bad pdf")
	assert.Equal(t, http.StatusUnprocessableEntity, err.Status)
	assert.Equal(t, http.StatusBadGateway, ErrUpstream.Status)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("boom")
	err := FromError(cause)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, FromError(nil))
}
