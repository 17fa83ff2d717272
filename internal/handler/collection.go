package handler

import (
	"net/http"

	"github.com/cleberrangel/teamsync-api/internal/logger"
	"github.com/cleberrangel/teamsync-api/internal/model"
	"github.com/cleberrangel/teamsync-api/internal/service"
	"github.com/gin-gonic/gin"
)

// CollectionHandler manipula a ingestão de documentos nas coleções
type CollectionHandler struct {
	ingestService *service.IngestionService
}

// NewCollectionHandler cria um novo handler de coleções
func NewCollectionHandler(ingestService *service.IngestionService) *CollectionHandler {
	return &CollectionHandler{
		ingestService: ingestService,
	}
}

// ListCollections lista as coleções existentes no vector store
// @Summary      Lista coleções
// @Tags         collections
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]interface{}
// @Failure      502 {object} model.ErrorResponse
// @Router       /api/v1/collections [get]
func (h *CollectionHandler) ListCollections(c *gin.Context) {
	collections, err := h.ingestService.ListCollections(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error().Err(err).Msg("Falha ao listar coleções")
		c.JSON(http.StatusBadGateway, model.ErrorResponse{
			Success: false,
			Error:   "vector store indisponível",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"collections": collections,
		"count":       len(collections),
	})
}

// IngestDocument ingere um documento na coleção informada
// @Summary      Ingere um documento
// @Description  Divide o texto em chunks, computa embeddings em lotes e faz o upsert no vector store
// @Tags         collections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        name path string true "Nome da coleção"
// @Param        request body model.IngestRequest true "Documento"
// @Success      200 {object} model.IngestionReport
// @Failure      400 {object} model.ErrorResponse
// @Router       /api/v1/collections/{name}/documents [post]
func (h *CollectionHandler) IngestDocument(c *gin.Context) {
	collection := c.Param("name")
	if collection == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "nome da coleção é obrigatório",
		})
		return
	}

	var req model.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "payload inválido",
			Details: err.Error(),
		})
		return
	}

	// A ingestão é total: lotes que falham aparecem no relatório, não em erro
	report, err := h.ingestService.Ingest(c.Request.Context(), req.Text, req.SourceID, collection)
	if err != nil {
		logger.FromGin(c).Error().Err(err).Msg("Falha inesperada na ingestão")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Error:   "erro interno",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, report)
}
