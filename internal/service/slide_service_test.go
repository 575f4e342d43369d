package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/course-portal-api/pkg/errors"
)

func TestSlideServiceReference(t *testing.T) {
	store := newSlideStoreStub()
	svc := NewSlideService(store, nil)
	ctx := context.Background()

	_, err := svc.Reference(ctx, "CS101", "Week 1")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	require.NoError(t, store.Put(ctx, "CS101/Week 1.pdf", strings.NewReader("%PDF"), 4, "application/pdf"))
	ref, err := svc.Reference(ctx, "CS101", "Week 1")
	require.NoError(t, err)
	assert.Equal(t, "CS101", ref.ModuleID)
	assert.Equal(t, "Week 1", ref.Topic)
	assert.Contains(t, ref.URL, "CS101/Week 1.pdf")
	assert.False(t, ref.ExpiresAt.IsZero())
}

func TestSlideServiceErrors(t *testing.T) {
	store := newSlideStoreStub()
	svc := NewSlideService(store, nil)

	_, err := svc.Reference(context.Background(), "CS101", " ")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	store.err = errors.New("minio down")
	_, err = svc.Reference(context.Background(), "CS101", "Week 1")
	assert.Equal(t, http.StatusInternalServerError, appErrors.FromError(err).Status)
}
