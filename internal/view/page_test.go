package view

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("missing")

func newOutlinePage() *Page[string] {
	return NewPage[string](func(err error) bool { return errors.Is(err, errMissing) })
}

func TestPageNotFoundOffersUploadWithoutBanner(t *testing.T) {
	p := newOutlinePage()
	snap := p.Load(context.Background(), Key{ModuleID: "CS404"}, func(context.Context, Key) (string, error) {
		return "", errMissing
	})

	assert.Equal(t, StateNotFound, snap.State)
	assert.True(t, snap.ShowUpload())
	assert.Empty(t, snap.Banner())
}

func TestPageErrorShowsBannerAndUpload(t *testing.T) {
	p := newOutlinePage()
	snap := p.Load(context.Background(), Key{ModuleID: "CS101"}, func(context.Context, Key) (string, error) {
		return "", errors.New("Failed to load outline")
	})

	assert.Equal(t, StateError, snap.State)
	assert.Equal(t, "Failed to load outline", snap.Banner())
	assert.True(t, snap.ShowUpload())
}

func TestPageFound(t *testing.T) {
	p := newOutlinePage()
	snap := p.Load(context.Background(), Key{ModuleID: "CS101"}, func(context.Context, Key) (string, error) {
		return "outline", nil
	})

	assert.Equal(t, StateFound, snap.State)
	assert.Equal(t, "outline", snap.Content)
	assert.False(t, snap.ShowUpload())
}

func TestPageDropsStaleOutcome(t *testing.T) {
	p := newOutlinePage()
	first := p.Navigate(Key{ModuleID: "CS101"})
	second := p.Navigate(Key{ModuleID: "CS202"})

	assert.False(t, p.Apply(first, Found("CS101 outline")))
	snap := p.Snapshot()
	assert.Equal(t, StateLoading, snap.State)
	assert.Empty(t, snap.Content)

	require.True(t, p.Apply(second, Found("CS202 outline")))
	snap = p.Snapshot()
	assert.Equal(t, Key{ModuleID: "CS202"}, snap.Key)
	assert.Equal(t, "CS202 outline", snap.Content)
}

func TestNavigateClearsPreviousContent(t *testing.T) {
	p := newOutlinePage()
	token := p.Navigate(Key{ModuleID: "CS101"})
	require.True(t, p.Apply(token, Found("CS101 outline")))

	p.Navigate(Key{ModuleID: "CS202"})
	snap := p.Snapshot()
	assert.Equal(t, StateLoading, snap.State)
	assert.Empty(t, snap.Content)
}

func TestNotFoundClearsStaleContentOnRefetch(t *testing.T) {
	p := newOutlinePage()
	token := p.Navigate(Key{ModuleID: "CS101"})
	require.True(t, p.Apply(token, Found("old outline")))

	token = p.Navigate(Key{ModuleID: "CS101"})
	require.True(t, p.Apply(token, Missing[string]()))
	snap := p.Snapshot()
	assert.Equal(t, StateNotFound, snap.State)
	assert.Empty(t, snap.Content)
}
