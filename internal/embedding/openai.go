package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cleberrangel/teamsync-api/internal/logger"
	"github.com/cleberrangel/teamsync-api/internal/model"
)

const (
	openaiBaseURL      = "https://api.openai.com/v1/embeddings"
	openaiModel        = "text-embedding-3-small"
	openaiMaxRetries   = 3
	openaiInitialDelay = 1 * time.Second
)

// Client is the interface the ingestion and chat pipelines depend on
type Client interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// OpenAIClient computes embeddings via the OpenAI embeddings API
type OpenAIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type openaiRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type openaiResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// NewOpenAIClient creates a new OpenAI embeddings client
func NewOpenAIClient(apiKey string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: openaiBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// EmbedDocuments embeds a batch of texts, retrying transient failures
// with exponential backoff
func (c *OpenAIClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts provided")
	}

	var lastErr error
	delay := openaiInitialDelay

	for attempt := 1; attempt <= openaiMaxRetries; attempt++ {
		embeddings, err := c.embed(ctx, texts)
		if err == nil {
			return embeddings, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, err
		}
		// Credencial inválida não melhora com retry
		if err == model.ErrUnauthorized {
			return nil, err
		}

		if attempt < openaiMaxRetries {
			logger.Get(ctx).Warn().
				Int("attempt", attempt).
				Int("batch_size", len(texts)).
				Err(err).
				Dur("backoff", delay).
				Msg("Falha ao gerar embeddings, aguardando retry")

			select {
			case <-time.After(delay):
				delay *= 2
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("embeddings após %d tentativas: %w", openaiMaxRetries, lastErr)
}

// EmbedQuery embeds a single search query
func (c *OpenAIClient) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := c.EmbedDocuments(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, model.ErrInvalidResponse
	}
	return embeddings[0], nil
}

func (c *OpenAIClient) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	payload, err := json.Marshal(openaiRequest{
		Input: texts,
		Model: openaiModel,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("criar request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, model.ErrTimeout
		}
		return nil, fmt.Errorf("executar request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// OK, continua
	case http.StatusTooManyRequests:
		return nil, model.ErrRateLimited
	case http.StatusUnauthorized:
		return nil, model.ErrUnauthorized
	default:
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}

	var parsed openaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(parsed.Data) != len(texts) {
		return nil, model.ErrInvalidResponse
	}

	// A API pode reordenar; respeita o índice retornado
	embeddings := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, model.ErrInvalidResponse
		}
		embeddings[d.Index] = d.Embedding
	}

	return embeddings, nil
}
