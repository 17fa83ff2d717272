package model

// Response é a resposta genérica de sucesso da API
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse é a resposta padrão de erro da API
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// IngestRequest é o payload para ingestão de documentos em uma coleção
type IngestRequest struct {
	Text     string `json:"text" binding:"required"`
	SourceID string `json:"source_id" binding:"required"`
}

// VerifyCredentialsRequest é o payload de verificação de credenciais
type VerifyCredentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
