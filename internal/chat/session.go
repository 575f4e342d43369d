// Package chat keeps an in-memory transcript for one topic and relays
// questions to the portal's assistant.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/course-portal-api/internal/dto"
	"github.com/noah-isme/course-portal-api/internal/models"
)

// FailureNotice replaces the reply when the assistant cannot be reached.
const FailureNotice = "Error: Could not connect to AI. Please try again later."

// ThinkingPlaceholder is rendered while replies are pending.
const ThinkingPlaceholder = "thinking…"

// DefaultWindow is how many recent transcript entries accompany a question.
const DefaultWindow = 5

// ErrEmptyMessage is returned for blank input.
var ErrEmptyMessage = errors.New("message is empty")

// Asker answers a question.
type Asker interface {
	Chat(ctx context.Context, req dto.ChatRequest) (string, error)
}

// Line is one rendered transcript line.
type Line struct {
	Role        string
	Text        string
	Placeholder bool
}

type entry struct {
	id      uint64
	replyTo uint64
	msg     models.ChatMessage
}

// Session is the transcript of one topic chat. Send may be called
// concurrently; every reply lands right after the message it answers.
type Session struct {
	mu       sync.Mutex
	moduleID string
	topic    string
	asker    Asker
	window   int
	logger   *zap.Logger
	entries  []entry
	nextID   uint64
	pending  int
}

// NewSession starts an empty transcript for a module topic.
func NewSession(moduleID, topic string, asker Asker, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{moduleID: moduleID, topic: topic, asker: asker, window: DefaultWindow, logger: logger}
}

// Sending reports whether any reply is outstanding.
func (s *Session) Sending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}

// Send appends text to the transcript straight away, asks the assistant and
// places the reply after it. On failure the fixed notice is placed instead
// and the error is returned for logging only.
func (s *Session) Send(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}

	s.mu.Lock()
	history := s.recentLocked()
	s.nextID++
	id := s.nextID
	s.entries = append(s.entries, entry{id: id, msg: models.ChatMessage{Role: models.RoleUser, Text: text}})
	s.pending++
	s.mu.Unlock()

	answer, err := s.asker.Chat(ctx, dto.ChatRequest{
		Message:     text,
		Topic:       s.topic,
		ModuleID:    s.moduleID,
		ChatHistory: &history,
	})

	reply := answer
	if err != nil {
		s.logger.Warn("chat request failed",
			zap.String("module_id", s.moduleID),
			zap.String("topic", s.topic),
			zap.Error(err))
		reply = FailureNotice
	}

	s.mu.Lock()
	s.insertReplyLocked(id, reply)
	s.pending--
	s.mu.Unlock()

	if err != nil {
		return "", err
	}
	return answer, nil
}

// Transcript returns a copy of the stored messages.
func (s *Session) Transcript() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.msg
	}
	return out
}

// Render returns the transcript plus a placeholder while replies are pending.
func (s *Session) Render() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]Line, 0, len(s.entries)+1)
	for _, e := range s.entries {
		lines = append(lines, Line{Role: e.msg.Role, Text: e.msg.Text})
	}
	if s.pending > 0 {
		lines = append(lines, Line{Role: models.RoleAssistant, Text: ThinkingPlaceholder, Placeholder: true})
	}
	return lines
}

func (s *Session) recentLocked() []models.ChatMessage {
	start := len(s.entries) - s.window
	if start < 0 {
		start = 0
	}
	out := make([]models.ChatMessage, 0, len(s.entries)-start)
	for _, e := range s.entries[start:] {
		out = append(out, e.msg)
	}
	return out
}

func (s *Session) insertReplyLocked(userID uint64, text string) {
	reply := entry{replyTo: userID, msg: models.ChatMessage{Role: models.RoleAssistant, Text: text}}
	for i, e := range s.entries {
		if e.id == userID {
			s.entries = append(s.entries, entry{})
			copy(s.entries[i+2:], s.entries[i+1:])
			s.entries[i+1] = reply
			return
		}
	}
	s.entries = append(s.entries, reply)
}
