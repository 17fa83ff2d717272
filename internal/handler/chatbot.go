package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/cleberrangel/teamsync-api/internal/logger"
	"github.com/cleberrangel/teamsync-api/internal/model"
	"github.com/cleberrangel/teamsync-api/internal/repository"
	"github.com/cleberrangel/teamsync-api/internal/service"
	"github.com/gin-gonic/gin"
)

// userDirectory é a visão do repositório de usuários que os handlers usam
type userDirectory interface {
	GetByID(ctx context.Context, id int) (*repository.User, error)
	GetByEmail(ctx context.Context, email string) (*repository.User, error)
}

// ChatbotHandler manipula requisições do chatbot
type ChatbotHandler struct {
	chatService   *service.ChatService
	ingestService *service.IngestionService
	userRepo      userDirectory
}

// NewChatbotHandler cria um novo handler do chatbot
func NewChatbotHandler(chatService *service.ChatService, ingestService *service.IngestionService, userRepo userDirectory) *ChatbotHandler {
	return &ChatbotHandler{
		chatService:   chatService,
		ingestService: ingestService,
		userRepo:      userRepo,
	}
}

// Chat processa uma mensagem da sessão do usuário
// @Summary      Envia uma mensagem ao chatbot
// @Description  Responde via RAG (quando context é informado), agente ou conversa simples
// @Tags         chatbot
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        user_id path string true "ID da sessão (ID do usuário quando autenticado)"
// @Param        request body model.ChatRequest true "Mensagem"
// @Success      200 {object} model.ChatResult
// @Failure      400 {object} model.ErrorResponse
// @Failure      502 {object} model.ErrorResponse
// @Router       /api/v1/chatbot/{user_id} [post]
func (h *ChatbotHandler) Chat(c *gin.Context) {
	sessionID := c.Param("user_id")

	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "payload inválido",
			Details: err.Error(),
		})
		return
	}

	// A identidade habilita o modo agente; sessão anônima segue sem ela
	identity := h.resolveIdentity(c, sessionID)

	result, err := h.chatService.Chat(c.Request.Context(), sessionID, req.Query, req.Context, identity)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetHistory retorna o histórico da sessão
// @Summary      Histórico da sessão
// @Tags         chatbot
// @Produce      json
// @Security     BearerAuth
// @Param        user_id path string true "ID da sessão"
// @Param        size query int false "Quantidade de turnos mais recentes"
// @Success      200 {object} map[string]interface{}
// @Router       /api/v1/chatbot/{user_id} [get]
func (h *ChatbotHandler) GetHistory(c *gin.Context) {
	sessionID := c.Param("user_id")

	size := 0
	if raw := c.Query("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{
				Success: false,
				Error:   "size inválido",
				Details: "informe um inteiro não negativo",
			})
			return
		}
		size = parsed
	}

	turns := h.chatService.History(sessionID, size)

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"messages":   turns,
		"count":      len(turns),
	})
}

// ClearHistory apaga o histórico da sessão
// @Summary      Limpa o histórico da sessão
// @Tags         chatbot
// @Produce      json
// @Security     BearerAuth
// @Param        user_id path string true "ID da sessão"
// @Success      200 {object} model.Response
// @Router       /api/v1/chatbot/{user_id} [delete]
func (h *ChatbotHandler) ClearHistory(c *gin.Context) {
	sessionID := c.Param("user_id")
	h.chatService.ClearHistory(sessionID)

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Message: "histórico da sessão removido",
	})
}

// ListContexts lista as coleções disponíveis para o modo RAG
// @Summary      Lista contextos disponíveis
// @Description  Retorna as coleções do vector store utilizáveis no campo context
// @Tags         chatbot
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]interface{}
// @Failure      502 {object} model.ErrorResponse
// @Router       /api/v1/chatbot/context [get]
func (h *ChatbotHandler) ListContexts(c *gin.Context) {
	collections, err := h.ingestService.ListCollections(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contexts": collections,
		"count":    len(collections),
	})
}

// Health reporta a saúde do chatbot: sessões ativas e acesso ao vector store
// @Summary      Saúde do chatbot
// @Tags         chatbot
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]interface{}
// @Failure      503 {object} map[string]interface{}
// @Router       /api/v1/chatbot/health [get]
func (h *ChatbotHandler) Health(c *gin.Context) {
	status := "healthy"
	statusCode := http.StatusOK

	collections, err := h.ingestService.ListCollections(c.Request.Context())
	if err != nil {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":          status,
		"active_sessions": h.chatService.ActiveSessions(),
		"contexts":        len(collections),
	})
}

// resolveIdentity busca o usuário quando o ID da sessão o identifica:
// um ID numérico ou um e-mail cadastrado. Sessão sem usuário
// correspondente segue anônima, nunca é erro.
func (h *ChatbotHandler) resolveIdentity(c *gin.Context, sessionID string) *repository.User {
	var (
		user *repository.User
		err  error
	)

	if userID, convErr := strconv.Atoi(sessionID); convErr == nil {
		user, err = h.userRepo.GetByID(c.Request.Context(), userID)
	} else if strings.Contains(sessionID, "@") {
		user, err = h.userRepo.GetByEmail(c.Request.Context(), sessionID)
	} else {
		return nil
	}

	if err != nil {
		if err != model.ErrUserNotFound {
			logger.FromGin(c).Warn().Err(err).Msg("Falha ao resolver identidade, seguindo como sessão anônima")
		}
		return nil
	}
	return user
}

// handleError trata erros e retorna resposta apropriada
func (h *ChatbotHandler) handleError(c *gin.Context, err error) {
	logger.FromGin(c).Error().Err(err).Msg("Falha no chatbot")

	// Os clientes externos envelopam os sentinelas com %w
	switch {
	case errors.Is(err, model.ErrCollectionNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Success: false,
			Error:   "coleção não encontrada",
			Details: "verifique o campo context",
		})
	case errors.Is(err, model.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, model.ErrorResponse{
			Success: false,
			Error:   "rate limit excedido",
			Details: "aguarde alguns segundos e tente novamente",
		})
	case errors.Is(err, model.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{
			Success: false,
			Error:   "credencial de serviço externo inválida",
			Details: "verifique as chaves de API configuradas",
		})
	case errors.Is(err, model.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, model.ErrorResponse{
			Success: false,
			Error:   "timeout na requisição",
			Details: "um serviço externo demorou muito para responder",
		})
	case errors.Is(err, model.ErrUpstream):
		c.JSON(http.StatusBadGateway, model.ErrorResponse{
			Success: false,
			Error:   "serviço externo indisponível",
			Details: "tente novamente em instantes",
		})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Error:   "erro interno",
			Details: err.Error(),
		})
	}
}
