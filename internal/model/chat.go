package model

import "time"

// TurnRole identifica o autor de um turno da conversa
type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// ConversationTurn é um turno da conversa de uma sessão
type ConversationTurn struct {
	Role      TurnRole  `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ResponseType identifica o modo que atendeu a requisição de chat
type ResponseType string

const (
	ResponseRAG   ResponseType = "rag"
	ResponseAgent ResponseType = "agent"
	ResponseChat  ResponseType = "chat"
)

// ChatRequest é o payload do endpoint de chat
type ChatRequest struct {
	Query   string `json:"query" binding:"required"`
	Context string `json:"context"`
}

// ChatResult é a resposta de qualquer um dos três modos
type ChatResult struct {
	Answer       string       `json:"answer"`
	ResponseType ResponseType `json:"response_type"`
	Context      string       `json:"context,omitempty"`
	TurnCount    int          `json:"message_count"`
}
