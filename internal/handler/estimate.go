package handler

import (
	"errors"
	"net/http"

	"github.com/cleberrangel/teamsync-api/internal/logger"
	"github.com/cleberrangel/teamsync-api/internal/model"
	"github.com/cleberrangel/teamsync-api/internal/service"
	"github.com/gin-gonic/gin"
)

// EstimateHandler manipula requisições de estimativa de tasks
type EstimateHandler struct {
	estimateService *service.EstimateService
}

// NewEstimateHandler cria um novo handler de estimativas
func NewEstimateHandler(estimateService *service.EstimateService) *EstimateHandler {
	return &EstimateHandler{
		estimateService: estimateService,
	}
}

// EstimateDeadline estima prioridade, tempo e comentário para uma nova task
// @Summary      Estima prioridade e prazo de uma task
// @Description  Emite múltiplas amostras do LLM e agrega por votação majoritária
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.EstimationRequest true "Dados da task"
// @Success      200 {object} model.AggregatedEstimate
// @Failure      400 {object} model.ErrorResponse
// @Failure      404 {object} model.ErrorResponse
// @Failure      502 {object} model.ErrorResponse
// @Router       /api/v1/tasks/estimate-deadline [post]
func (h *EstimateHandler) EstimateDeadline(c *gin.Context) {
	var req model.EstimationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "payload inválido",
			Details: err.Error(),
		})
		return
	}

	result, err := h.estimateService.Estimate(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleError trata erros e retorna resposta apropriada
func (h *EstimateHandler) handleError(c *gin.Context, err error) {
	logger.FromGin(c).Error().Err(err).Msg("Falha na rodada de estimativa")

	switch {
	case errors.Is(err, model.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Success: false,
			Error:   "projeto não encontrado",
			Details: "verifique o project_id informado",
		})
	case errors.Is(err, model.ErrUpstream):
		c.JSON(http.StatusBadGateway, model.ErrorResponse{
			Success: false,
			Error:   "nenhuma amostra do LLM completou",
			Details: "o provedor está indisponível, tente novamente",
		})
	case errors.Is(err, model.ErrAggregation):
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Error:   "nenhuma resposta do LLM pôde ser interpretada",
			Details: "reenvie a requisição para uma nova rodada",
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
			Error:   "credencial do provedor LLM inválida",
			Details: "verifique a chave de API configurada",
		})
	case errors.Is(err, model.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, model.ErrorResponse{
			Success: false,
			Error:   "timeout na requisição",
			Details: "o provedor LLM demorou muito para responder",
		})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Error:   "erro interno",
			Details: err.Error(),
		})
	}
}
