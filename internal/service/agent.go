package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cleberrangel/teamsync-api/internal/llm"
	"github.com/cleberrangel/teamsync-api/internal/logger"
	"github.com/cleberrangel/teamsync-api/internal/model"
	"github.com/cleberrangel/teamsync-api/internal/repository"
)

const (
	// maxToolCalls limita o laço de raciocínio do agente
	maxToolCalls = 3

	toolUserProfile = "get_current_user"
	toolUserTasks   = "get_my_tasks"

	agentTaskLimit = 10
)

// assigneeTasks é a visão do repositório de tasks que o agente usa
type assigneeTasks interface {
	ListByAssignee(ctx context.Context, userID, limit int) ([]repository.Task, error)
}

// AgentService atende o modo agente: um laço limitado em que o LLM pode
// pedir ferramentas que consultam os dados do próprio usuário antes de
// responder
type AgentService struct {
	provider llm.Provider
	tasks    assigneeTasks
}

// NewAgentService cria um novo serviço de agente
func NewAgentService(provider llm.Provider, tasks assigneeTasks) *AgentService {
	return &AgentService{
		provider: provider,
		tasks:    tasks,
	}
}

// Answer responde a pergunta do usuário autenticado, consultando ferramentas
// quando o LLM as solicitar via contrato textual "TOOL: <nome>"
func (a *AgentService) Answer(ctx context.Context, user *repository.User, turns []model.ConversationTurn, query string) (string, error) {
	log := logger.Get(ctx)

	var observations []string

	for call := 0; call <= maxToolCalls; call++ {
		prompt := a.buildPrompt(user, turns, query, observations, call < maxToolCalls)

		reply, err := a.provider.Complete(ctx, prompt)
		if err != nil {
			return "", err
		}
		reply = strings.TrimSpace(reply)

		toolName, ok := parseToolRequest(reply)
		if !ok {
			return reply, nil
		}

		observation, err := a.runTool(ctx, toolName, user)
		if err != nil {
			observation = fmt.Sprintf("tool %s failed: %v", toolName, err)
		}

		log.Info().
			Str("tool", toolName).
			Int("call", call+1).
			Msg("Ferramenta executada pelo agente")

		observations = append(observations, fmt.Sprintf("%s -> %s", toolName, observation))
	}

	// Laço esgotado: responde com o que foi observado até aqui
	prompt := a.buildPrompt(user, turns, query, observations, false)
	return a.provider.Complete(ctx, prompt)
}

func (a *AgentService) buildPrompt(user *repository.User, turns []model.ConversationTurn, query string, observations []string, toolsAllowed bool) string {
	var b strings.Builder

	b.WriteString("You are TeamSync's assistant for authenticated users. ")
	fmt.Fprintf(&b, "You are talking to %s.\n\n", user.Name)

	if toolsAllowed {
		b.WriteString("You may look up the user's data before answering. To do so, reply with EXACTLY one line:\n")
		fmt.Fprintf(&b, "TOOL: %s - the user's profile information\n", toolUserProfile)
		fmt.Fprintf(&b, "TOOL: %s - the user's open tasks\n", toolUserTasks)
		b.WriteString("Otherwise, answer the question directly.\n\n")
	} else {
		b.WriteString("Answer the question directly using the observations below.\n\n")
	}

	if len(observations) > 0 {
		b.WriteString("Observations from tools already executed:\n")
		for _, obs := range observations {
			fmt.Fprintf(&b, "- %s\n", obs)
		}
		b.WriteString("\n")
	}

	if len(turns) > 0 {
		b.WriteString("Chat history:\n")
		writeHistory(&b, turns)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Question: %s\n", query)

	return b.String()
}

// parseToolRequest reconhece o contrato textual "TOOL: <nome>" na resposta
func parseToolRequest(reply string) (string, bool) {
	firstLine := reply
	if idx := strings.IndexByte(reply, '\n'); idx >= 0 {
		firstLine = reply[:idx]
	}
	firstLine = strings.TrimSpace(firstLine)

	if !strings.HasPrefix(strings.ToUpper(firstLine), "TOOL:") {
		return "", false
	}

	fields := strings.Fields(firstLine[len("TOOL:"):])
	if len(fields) == 0 {
		return "", false
	}
	name := strings.ToLower(fields[0])
	if name != toolUserProfile && name != toolUserTasks {
		return "", false
	}
	return name, true
}

func (a *AgentService) runTool(ctx context.Context, name string, user *repository.User) (string, error) {
	switch name {
	case toolUserProfile:
		designation := "not set"
		if user.Designation.Valid {
			designation = user.Designation.String
		}
		return fmt.Sprintf("name=%s email=%s designation=%s", user.Name, user.Email, designation), nil

	case toolUserTasks:
		tasks, err := a.tasks.ListByAssignee(ctx, user.ID, agentTaskLimit)
		if err != nil {
			return "", err
		}
		if len(tasks) == 0 {
			return "no open tasks", nil
		}
		var parts []string
		for _, t := range tasks {
			parts = append(parts, fmt.Sprintf("#%d %q status=%s priority=%s", t.ID, t.Title, t.Status, t.Priority.String))
		}
		return strings.Join(parts, "; "), nil

	default:
		return "", fmt.Errorf("ferramenta desconhecida: %s", name)
	}
}
