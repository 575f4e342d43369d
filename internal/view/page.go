// Package view models a module or topic page: what it shows while a fetch is
// pending, once content arrives, when nothing is stored yet, or on failure.
package view

import (
	"context"
	"sync"
)

// State is the page's display state.
type State int

const (
	StateLoading State = iota
	StateFound
	StateNotFound
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateFound:
		return "found"
	case StateNotFound:
		return "not-found"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Key identifies the page being shown. Topic is empty on module pages.
type Key struct {
	ModuleID string
	Topic    string
}

// Token is the generation a fetch was issued under.
type Token uint64

// Outcome is what a fetch produced.
type Outcome[T any] struct {
	Content  T
	NotFound bool
	Err      error
}

// Found wraps fetched content.
func Found[T any](content T) Outcome[T] { return Outcome[T]{Content: content} }

// Missing reports that nothing is stored for the key.
func Missing[T any]() Outcome[T] { return Outcome[T]{NotFound: true} }

// Failed reports a fetch failure.
func Failed[T any](err error) Outcome[T] { return Outcome[T]{Err: err} }

// Snapshot is a consistent copy of the page for rendering.
type Snapshot[T any] struct {
	Key     Key
	State   State
	Content T
	Err     error
}

// ShowUpload reports whether the upload affordance is offered. It stays
// available next to the error banner.
func (s Snapshot[T]) ShowUpload() bool {
	return s.State == StateNotFound || s.State == StateError
}

// Banner is the error banner text, empty unless the fetch failed.
func (s Snapshot[T]) Banner() string {
	if s.State != StateError || s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Page holds the state of one page. Every navigation starts a new
// generation; outcomes from older generations are dropped.
type Page[T any] struct {
	mu         sync.Mutex
	generation Token
	key        Key
	state      State
	content    T
	err        error
	isNotFound func(error) bool
}

// NewPage returns a page in the loading state. isNotFound classifies fetch
// errors that mean "nothing stored yet".
func NewPage[T any](isNotFound func(error) bool) *Page[T] {
	return &Page[T]{isNotFound: isNotFound}
}

// Navigate tears down what the page showed and returns the token the new
// fetch must carry.
func (p *Page[T]) Navigate(key Key) Token {
	p.mu.Lock()
	defer p.mu.Unlock()
	var zero T
	p.generation++
	p.key = key
	p.state = StateLoading
	p.content = zero
	p.err = nil
	return p.generation
}

// Apply installs an outcome if token is still current and reports whether it did.
func (p *Page[T]) Apply(token Token, outcome Outcome[T]) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if token != p.generation {
		return false
	}
	var zero T
	switch {
	case outcome.Err != nil:
		p.state, p.content, p.err = StateError, zero, outcome.Err
	case outcome.NotFound:
		p.state, p.content, p.err = StateNotFound, zero, nil
	default:
		p.state, p.content, p.err = StateFound, outcome.Content, nil
	}
	return true
}

// Snapshot returns the current page.
func (p *Page[T]) Snapshot() Snapshot[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot[T]{Key: p.key, State: p.state, Content: p.content, Err: p.err}
}

// Load navigates to key, runs fetch and applies its result.
func (p *Page[T]) Load(ctx context.Context, key Key, fetch func(context.Context, Key) (T, error)) Snapshot[T] {
	token := p.Navigate(key)
	p.Apply(token, p.outcome(fetch(ctx, key)))
	return p.Snapshot()
}

func (p *Page[T]) outcome(content T, err error) Outcome[T] {
	switch {
	case err == nil:
		return Found(content)
	case p.isNotFound != nil && p.isNotFound(err):
		return Missing[T]()
	default:
		return Failed[T](err)
	}
}
