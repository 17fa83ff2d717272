package handler

import (
	"net/http"

	"github.com/cleberrangel/teamsync-api/internal/logger"
	"github.com/cleberrangel/teamsync-api/internal/model"
	"github.com/gin-gonic/gin"
)

// AuthHandler manipula a verificação de credenciais de usuários
type AuthHandler struct {
	userRepo userDirectory
}

// NewAuthHandler cria um novo handler de autenticação
func NewAuthHandler(userRepo userDirectory) *AuthHandler {
	return &AuthHandler{userRepo: userRepo}
}

// VerifyCredentials valida e-mail e senha e retorna o perfil do usuário.
// Usado pelo frontend para identificar a sessão antes de abrir o chat
// autenticado.
// @Summary      Verifica credenciais de um usuário
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.VerifyCredentialsRequest true "Credenciais"
// @Success      200 {object} repository.User
// @Failure      400 {object} model.ErrorResponse
// @Failure      401 {object} model.ErrorResponse
// @Router       /api/v1/auth/verify [post]
func (h *AuthHandler) VerifyCredentials(c *gin.Context) {
	var req model.VerifyCredentialsRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "payload inválido",
			Details: err.Error(),
		})
		return
	}

	user, err := h.userRepo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if err != model.ErrUserNotFound {
			logger.FromGin(c).Error().Err(err).Msg("Falha ao buscar usuário para verificação")
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{
				Success: false,
				Error:   "erro interno",
			})
			return
		}
		// Mesma resposta para usuário inexistente e senha errada
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{
			Success: false,
			Error:   "credenciais inválidas",
		})
		return
	}

	if !user.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{
			Success: false,
			Error:   "credenciais inválidas",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}
