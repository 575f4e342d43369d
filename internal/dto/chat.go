package dto

import "github.com/noah-isme/course-portal-api/internal/models"

// ChatRequest is the POST /chat payload. ChatHistory is a pointer so an
// absent history can be told apart from an empty one.
type ChatRequest struct {
	Message     string                `json:"message"`
	Topic       string                `json:"topic"`
	ModuleID    string                `json:"moduleId"`
	ChatHistory *[]models.ChatMessage `json:"chatHistory"`
}

// ChatResponse carries the assistant's answer.
type ChatResponse struct {
	Answer string `json:"answer"`
}
