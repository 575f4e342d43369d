// Package upload holds the client-side half of the upload flow: a
// validation gate owning at most one candidate file, and a submitter that
// sends it to the portal.
package upload

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// PDFMediaType is the only media type the gate accepts.
const PDFMediaType = "application/pdf"

// Default size bounds.
const (
	DefaultMinBytes int64 = 10 * 1024
	DefaultMaxBytes int64 = 10 * 1024 * 1024
)

// Rejection reasons.
const (
	ReasonTypeMismatch = "type mismatch"
	ReasonTooLarge     = "too large"
	ReasonTooSmall     = "too small"
)

// Candidate is a selected file waiting to be submitted. It is never persisted.
type Candidate struct {
	Name     string
	Size     int64
	MIMEType string
	Open     func() (io.ReadCloser, error)
}

// Limits bounds accepted file sizes in bytes.
type Limits struct {
	MinBytes int64
	MaxBytes int64
}

// Decision is the outcome of proposing files to the gate.
type Decision struct {
	Accepted bool
	Reasons  []string
	Messages []string
}

// Error joins the human readable messages of a rejection.
func (d Decision) Error() string {
	return strings.Join(d.Messages, "; ")
}

// Gate validates proposed files and keeps the current candidate.
type Gate struct {
	mu      sync.Mutex
	limits  Limits
	current *Candidate
	seq     uint64
}

// NewGate returns a gate using limits, falling back to the defaults for
// non-positive values.
func NewGate(limits Limits) *Gate {
	if limits.MinBytes <= 0 {
		limits.MinBytes = DefaultMinBytes
	}
	if limits.MaxBytes <= 0 {
		limits.MaxBytes = DefaultMaxBytes
	}
	return &Gate{limits: limits}
}

// Propose validates the first file and ignores the rest. An accepted file
// replaces the current candidate; a rejected one leaves it untouched.
func (g *Gate) Propose(files ...Candidate) Decision {
	if len(files) == 0 {
		return Decision{}
	}
	file := files[0]
	decision := g.evaluate(file)
	if !decision.Accepted {
		return decision
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	g.current = &file
	return decision
}

func (g *Gate) evaluate(file Candidate) Decision {
	var d Decision
	if mt := normalizeMediaType(file.MIMEType); mt != PDFMediaType {
		if mt == "" {
			mt = "unknown"
		}
		d.Reasons = append(d.Reasons, ReasonTypeMismatch)
		d.Messages = append(d.Messages, fmt.Sprintf("%s: %s is %s, only PDF files are allowed", ReasonTypeMismatch, file.Name, mt))
	}
	if file.Size > g.limits.MaxBytes {
		d.Reasons = append(d.Reasons, ReasonTooLarge)
		d.Messages = append(d.Messages, fmt.Sprintf("%s: %s exceeds %s", ReasonTooLarge, file.Name, humanSize(g.limits.MaxBytes)))
	}
	if file.Size < g.limits.MinBytes {
		d.Reasons = append(d.Reasons, ReasonTooSmall)
		d.Messages = append(d.Messages, fmt.Sprintf("%s: %s is smaller than %s", ReasonTooSmall, file.Name, humanSize(g.limits.MinBytes)))
	}
	d.Accepted = len(d.Reasons) == 0
	return d
}

// Candidate returns the current candidate, if any.
func (g *Gate) Candidate() (Candidate, bool) {
	c, _, ok := g.snapshot()
	return c, ok
}

// Reset drops the current candidate.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = nil
	g.seq++
}

func (g *Gate) snapshot() (Candidate, uint64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return Candidate{}, g.seq, false
	}
	return *g.current, g.seq, true
}

// clearIf drops the candidate only if it has not been replaced since seq.
func (g *Gate) clearIf(seq uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seq == seq {
		g.current = nil
		g.seq++
	}
}

func normalizeMediaType(v string) string {
	if i := strings.IndexByte(v, ';'); i >= 0 {
		v = v[:i]
	}
	return strings.ToLower(strings.TrimSpace(v))
}

func humanSize(n int64) string {
	switch {
	case n >= 1024*1024 && n%(1024*1024) == 0:
		return fmt.Sprintf("%d MB", n/(1024*1024))
	case n >= 1024 && n%1024 == 0:
		return fmt.Sprintf("%d KB", n/1024)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
