package llm

import (
	"context"
	"fmt"

	"github.com/cleberrangel/teamsync-api/internal/config"
)

// New instancia o provider configurado. A orquestração depende apenas da
// capacidade Provider; a escolha do adapter acontece aqui.
func New(ctx context.Context, cfg *config.Config) (Provider, error) {
	switch cfg.LLMProvider {
	case "deepseek", "default":
		return NewDeepSeekProvider(cfg.DeepSeekAPIKey, cfg.RequestTimeout), nil
	case "gemini":
		return NewGeminiProvider(ctx, cfg.GeminiAPIKey)
	default:
		return nil, fmt.Errorf("provider de LLM não suportado: %s", cfg.LLMProvider)
	}
}
