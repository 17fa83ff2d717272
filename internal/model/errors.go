package model

import "errors"

var (
	// ErrProjectNotFound indica que o projeto referenciado não existe
	ErrProjectNotFound = errors.New("projeto não encontrado")

	// ErrTaskNotFound indica que a tarefa referenciada não existe
	ErrTaskNotFound = errors.New("tarefa não encontrada")

	// ErrUserNotFound indica que o usuário referenciado não existe
	ErrUserNotFound = errors.New("usuário não encontrado")

	// ErrCollectionNotFound indica que a coleção de vetores não existe
	ErrCollectionNotFound = errors.New("coleção não encontrada no vector store")

	// ErrUpstream indica que o provedor externo ficou indisponível após todos os retries
	ErrUpstream = errors.New("provedor externo indisponível")

	// ErrAggregation indica que nenhuma resposta do LLM pôde ser parseada na rodada
	ErrAggregation = errors.New("nenhuma resposta válida do LLM na rodada")

	// ErrRateLimited indica que a API externa retornou 429
	ErrRateLimited = errors.New("rate limit excedido na API externa")

	// ErrUnauthorized indica token inválido junto ao provedor
	ErrUnauthorized = errors.New("token do provedor inválido ou expirado")

	// ErrTimeout indica timeout na requisição
	ErrTimeout = errors.New("timeout na requisição externa")

	// ErrInvalidResponse indica resposta inválida da API externa
	ErrInvalidResponse = errors.New("resposta inválida da API externa")
)
