package service

import (
	"context"
	"strings"

	"github.com/cleberrangel/teamsync-api/internal/client"
	"github.com/cleberrangel/teamsync-api/internal/embedding"
	"github.com/cleberrangel/teamsync-api/internal/history"
	"github.com/cleberrangel/teamsync-api/internal/llm"
	"github.com/cleberrangel/teamsync-api/internal/logger"
	"github.com/cleberrangel/teamsync-api/internal/metrics"
	"github.com/cleberrangel/teamsync-api/internal/model"
	"github.com/cleberrangel/teamsync-api/internal/repository"
)

// TopK chunks recuperados por consulta RAG
const TopK = 5

// ChatService atende o chatbot em três modos mutuamente exclusivos, por
// prioridade: RAG (coleção informada), agente (identidade autenticada) e
// conversa simples. O único estado mutável é o histórico por sessão.
type ChatService struct {
	provider llm.Provider
	embedder embedding.Client
	store    client.VectorStore
	history  *history.Store
	agent    *AgentService
}

// NewChatService cria um novo serviço de chat
func NewChatService(provider llm.Provider, embedder embedding.Client, store client.VectorStore, hist *history.Store, agent *AgentService) *ChatService {
	return &ChatService{
		provider: provider,
		embedder: embedder,
		store:    store,
		history:  hist,
		agent:    agent,
	}
}

// Chat processa uma mensagem da sessão e retorna a resposta do modo escolhido
func (s *ChatService) Chat(ctx context.Context, sessionID, query, collection string, identity *repository.User) (*model.ChatResult, error) {
	log := logger.Get(ctx)

	turns := s.history.List(sessionID, 0)

	var (
		answer       string
		responseType model.ResponseType
		err          error
	)

	switch {
	case collection != "":
		responseType = model.ResponseRAG
		answer, err = s.answerGrounded(ctx, collection, turns, query)
	case identity != nil:
		responseType = model.ResponseAgent
		answer, err = s.agent.Answer(ctx, identity, turns, query)
	default:
		responseType = model.ResponseChat
		answer, err = s.provider.Complete(ctx, BuildChatPrompt(turns, query))
	}

	if err != nil {
		metrics.Get().IncrementChat(string(responseType), false)
		return nil, err
	}

	answer = strings.TrimSpace(answer)

	// Só registra o turno depois de uma resposta bem-sucedida
	s.history.Append(sessionID, model.RoleUser, query)
	s.history.Append(sessionID, model.RoleAssistant, answer)
	metrics.Get().IncrementChat(string(responseType), true)

	log.Info().
		Str("mode", string(responseType)).
		Str("collection", collection).
		Int("turns", s.history.Len(sessionID)).
		Msg("Mensagem de chat processada")

	return &model.ChatResult{
		Answer:       answer,
		ResponseType: responseType,
		Context:      collection,
		TurnCount:    s.history.Len(sessionID),
	}, nil
}

// answerGrounded executa o caminho RAG: reformula a pergunta contra o
// histórico, recupera top-k chunks e compõe a resposta fundamentada
func (s *ChatService) answerGrounded(ctx context.Context, collection string, turns []model.ConversationTurn, query string) (string, error) {
	standalone := query

	// Sem histórico a pergunta já é independente; evita uma chamada ao LLM
	if len(turns) > 0 {
		reformulated, err := s.provider.Complete(ctx, BuildContextualizedQuery(turns, query))
		if err != nil {
			logger.Get(ctx).Warn().Err(err).Msg("Reformulação falhou, usando a pergunta original")
		} else if r := strings.TrimSpace(reformulated); r != "" {
			standalone = r
		}
	}

	vector, err := s.embedder.EmbedQuery(ctx, standalone)
	if err != nil {
		return "", err
	}

	chunks, err := s.store.Search(ctx, collection, vector, TopK)
	if err != nil {
		return "", err
	}

	logger.Get(ctx).Info().
		Str("collection", collection).
		Int("chunks", len(chunks)).
		Msg("Contexto recuperado")

	return s.provider.Complete(ctx, BuildGroundedPrompt(chunks, turns, query))
}

// History retorna os turnos da sessão (os `size` mais recentes, se > 0)
func (s *ChatService) History(sessionID string, size int) []model.ConversationTurn {
	return s.history.List(sessionID, size)
}

// ClearHistory apaga o histórico da sessão
func (s *ChatService) ClearHistory(sessionID string) {
	s.history.Clear(sessionID)
}

// ActiveSessions conta as sessões com histórico vivo
func (s *ChatService) ActiveSessions() int {
	return s.history.SessionCount()
}
