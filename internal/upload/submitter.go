package upload

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/noah-isme/course-portal-api/pkg/client"
)

var (
	// ErrNoFileSelected is returned when Submit runs without a candidate.
	ErrNoFileSelected = errors.New("no file selected")
	// ErrBusy is returned while another submission is in flight.
	ErrBusy = errors.New("upload already in progress")
)

const genericFailure = "Upload failed. Please try again."

// Kind distinguishes outline uploads from slide uploads.
type Kind int

const (
	KindOutline Kind = iota
	KindSlides
)

// Target identifies what an upload is for.
type Target struct {
	Kind     Kind
	ModuleID string
	Topic    string
}

// Outline targets a module's course outline.
func Outline(moduleID string) Target {
	return Target{Kind: KindOutline, ModuleID: moduleID}
}

// Slides targets a topic's slide deck.
func Slides(moduleID, topic string) Target {
	return Target{Kind: KindSlides, ModuleID: moduleID, Topic: topic}
}

// Uploader sends files to the portal.
type Uploader interface {
	UploadOutline(ctx context.Context, moduleID string, file client.File) error
	UploadSlides(ctx context.Context, moduleID, topic string, file client.File) error
}

// Failure is a submission error with a message fit for display.
type Failure struct {
	Message string
	Err     error
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() error { return f.Err }

// Submitter uploads the gate's candidate. At most one submission runs at a
// time; Busy reports whether one is in flight.
type Submitter struct {
	gate     *Gate
	uploader Uploader
	refresh  func(Target)
	busy     atomic.Bool
	logger   *zap.Logger
}

// NewSubmitter wires a submitter. refresh runs after every successful upload
// so the caller re-reads the stored result instead of trusting the response.
func NewSubmitter(gate *Gate, uploader Uploader, refresh func(Target), logger *zap.Logger) *Submitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Submitter{gate: gate, uploader: uploader, refresh: refresh, logger: logger}
}

// Busy reports whether a submission is in flight.
func (s *Submitter) Busy() bool {
	return s.busy.Load()
}

// Submit sends the current candidate to target. On failure the candidate is
// kept for a retry; on success it is cleared and refresh is invoked.
func (s *Submitter) Submit(ctx context.Context, target Target) error {
	candidate, seq, ok := s.gate.snapshot()
	if !ok {
		return ErrNoFileSelected
	}
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	if candidate.Open == nil {
		return &Failure{Message: "Could not read the selected file.", Err: errors.New("candidate has no content")}
	}
	content, err := candidate.Open()
	if err != nil {
		return &Failure{Message: "Could not read the selected file.", Err: err}
	}
	defer content.Close()

	file := client.File{Name: candidate.Name, ContentType: candidate.MIMEType, Content: content}
	switch target.Kind {
	case KindSlides:
		err = s.uploader.UploadSlides(ctx, target.ModuleID, target.Topic, file)
	default:
		err = s.uploader.UploadOutline(ctx, target.ModuleID, file)
	}
	if err != nil {
		s.logger.Warn("upload failed",
			zap.String("module_id", target.ModuleID),
			zap.String("topic", target.Topic),
			zap.Error(err))
		return &Failure{Message: failureMessage(err), Err: err}
	}

	s.gate.clearIf(seq)
	if s.refresh != nil {
		s.refresh(target)
	}
	return nil
}

func failureMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return genericFailure
}
