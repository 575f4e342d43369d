package models

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one transcript entry.
type ChatMessage struct {
	Role string `json:"role" validate:"required,oneof=user assistant"`
	Text string `json:"text"`
}
