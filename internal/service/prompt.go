package service

import (
	"fmt"
	"strings"

	"github.com/cleberrangel/teamsync-api/internal/client"
	"github.com/cleberrangel/teamsync-api/internal/model"
	"github.com/cleberrangel/teamsync-api/internal/repository"
)

// BuildEstimationPrompt monta o prompt de estimativa de forma determinística.
// Ordem fixa: projeto, exemplos (na ordem recebida), nova task, instruções de
// formato. Sem exemplos, a seção de exemplos é omitida por completo.
func BuildEstimationPrompt(project *repository.Project, examples []model.ExampleTask, req model.EstimationRequest) string {
	var b strings.Builder

	b.WriteString("You are an AI assistant for a team collaboration tool. Your task is to estimate the priority and time required for a new task based on its title, description, and related tasks in the project.\n\n")
	b.WriteString("Here is the project information:\n\n")
	fmt.Fprintf(&b, "Project Title: %s\n", project.Title)
	fmt.Fprintf(&b, "Project Description: %s\n\n", project.DescriptionOrDefault())

	if len(examples) > 0 {
		b.WriteString("Here are some example tasks in the project:\n\n")
		for i, ex := range examples {
			fmt.Fprintf(&b, "Task %d:\n", i+1)
			fmt.Fprintf(&b, "Title: %s\n", ex.Title)
			fmt.Fprintf(&b, "Description: %s\n", ex.Description)
			fmt.Fprintf(&b, "Priority: %s\n", ex.Priority)
			fmt.Fprintf(&b, "Time Estimate: %s\n\n", ex.TimeEstimate)
		}
	}

	b.WriteString("Now, here is the new task:\n\n")
	fmt.Fprintf(&b, "Title: %s\n", req.Title)
	fmt.Fprintf(&b, "Description: %s\n\n", req.Description)

	b.WriteString("Based on the above information, please estimate the priority (choose from 'low', 'medium', 'high', 'urgent') and the estimated time (in hours) for this new task. Also, provide a brief explanation for your reasoning.\n\n")
	b.WriteString("Please format your response as follows:\n\n")
	b.WriteString("Priority: [priority]\n")
	b.WriteString("Estimated Time: [time] hours\n")
	b.WriteString("Comment: [explanation]\n")

	return b.String()
}

// BuildContextualizedQuery monta o prompt que transforma a última pergunta em
// uma pergunta independente do histórico, sem respondê-la
func BuildContextualizedQuery(history []model.ConversationTurn, latestQuery string) string {
	var b strings.Builder

	b.WriteString("You are an expert at reformulating questions to be more specific and searchable. ")
	b.WriteString("Given a chat history and the latest user question which might reference context in the chat history, formulate a standalone question which can be understood without the chat history.\n\n")
	b.WriteString("Guidelines:\n")
	b.WriteString("- If the question is already standalone, return it as is\n")
	b.WriteString("- If it references previous context, make it explicit\n")
	b.WriteString("- Do NOT answer the question, just reformulate it\n\n")

	b.WriteString("Chat history:\n")
	writeHistory(&b, history)

	fmt.Fprintf(&b, "\nLatest question: %s\n", latestQuery)
	b.WriteString("\nStandalone question:")

	return b.String()
}

// BuildGroundedPrompt monta o prompt de resposta fundamentada nos chunks
// recuperados; instrui o modelo a declarar quando o contexto é insuficiente
func BuildGroundedPrompt(chunks []client.ScoredPoint, history []model.ConversationTurn, query string) string {
	var b strings.Builder

	b.WriteString("You are a knowledgeable assistant with access to detailed information. ")
	b.WriteString("Use the following pieces of retrieved context to answer the question comprehensively and accurately.\n\n")
	b.WriteString("Guidelines:\n")
	b.WriteString("- Provide detailed, informative answers based on the context\n")
	b.WriteString("- If the context doesn't contain enough information, say so clearly\n")
	b.WriteString("- Be conversational and engaging while remaining factual\n\n")

	b.WriteString("Context:\n")
	for _, chunk := range chunks {
		if text, ok := chunk.Payload["text"].(string); ok {
			b.WriteString(text)
			b.WriteString("\n---\n")
		}
	}

	if len(history) > 0 {
		b.WriteString("\nChat history:\n")
		writeHistory(&b, history)
	}

	fmt.Fprintf(&b, "\nQuestion: %s\n", query)
	b.WriteString("\nAnswer:")

	return b.String()
}

// BuildChatPrompt monta o prompt do modo de conversa simples (sem RAG)
func BuildChatPrompt(history []model.ConversationTurn, query string) string {
	var b strings.Builder

	b.WriteString("You are a helpful and knowledgeable AI assistant. ")
	b.WriteString("Provide informative, accurate, and engaging responses to user questions. ")
	b.WriteString("Be conversational, helpful, and professional in your interactions.\n\n")

	if len(history) > 0 {
		b.WriteString("Chat history:\n")
		writeHistory(&b, history)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "User: %s\n", query)
	b.WriteString("Assistant:")

	return b.String()
}

func writeHistory(b *strings.Builder, history []model.ConversationTurn) {
	for _, turn := range history {
		role := "User"
		if turn.Role == model.RoleAssistant {
			role = "Assistant"
		}
		fmt.Fprintf(b, "%s: %s\n", role, turn.Content)
	}
}
