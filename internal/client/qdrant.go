package client

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
	"golang.org/x/time/rate"
)

const (
	// RequestsPerMinute limite conservador para o Qdrant
	qdrantRequestsPerMinute = 600

	// DefaultTimeout timeout padrão para requisições
	qdrantDefaultTimeout = 30 * time.Second
)

// VectorStore é o contrato que os pipelines de ingestão e chat consomem
type VectorStore interface {
	ListCollections(ctx context.Context) ([]string, error)
	EnsureCollection(ctx context.Context, name string, vectorSize int) error
	UpsertPoints(ctx context.Context, collection string, points []Point) error
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]ScoredPoint, error)
}

// Point é um vetor com payload a ser inserido em uma coleção
type Point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload,omitempty"`
}

// ScoredPoint é um resultado de busca por similaridade
type ScoredPoint struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

// QdrantClient é o cliente HTTP para a API REST do Qdrant
type QdrantClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewQdrantClient cria um novo cliente Qdrant
func NewQdrantClient(baseURL, apiKey string) *QdrantClient {
	return &QdrantClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: qdrantDefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/qdrantRequestsPerMinute), 20),
	}
}

type collectionsResult struct {
	Result struct {
		Collections []struct {
			Name string `json:"name"`
		} `json:"collections"`
	} `json:"result"`
}

// ListCollections retorna os nomes das coleções existentes
func (c *QdrantClient) ListCollections(ctx context.Context) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/collections", c.baseURL)

	var resp collectionsResult
	if err := c.doRequest(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("listar coleções: %w", err)
	}

	names := make([]string, 0, len(resp.Result.Collections))
	for _, col := range resp.Result.Collections {
		names = append(names, col.Name)
	}
	return names, nil
}

// EnsureCollection cria a coleção caso ainda não exista
func (c *QdrantClient) EnsureCollection(ctx context.Context, name string, vectorSize int) error {
	existing, err := c.ListCollections(ctx)
	if err != nil {
		return err
	}
	for _, col := range existing {
		if col == name {
			return nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s", c.baseURL, name)
	body := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}

	if err := c.doRequest(ctx, http.MethodPut, url, body, nil); err != nil {
		return fmt.Errorf("criar coleção %s: %w", name, err)
	}

	logger.Get(ctx).Info().
		Str("collection", name).
		Int("vector_size", vectorSize).
		Msg("Coleção criada")
	return nil
}

// UpsertPoints insere (ou substitui) um lote de pontos na coleção.
// Uma única tentativa; o retry é responsabilidade do pipeline de ingestão.
func (c *QdrantClient) UpsertPoints(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, collection)
	body := map[string]any{"points": points}

	if err := c.doRequest(ctx, http.MethodPut, url, body, nil); err != nil {
		return fmt.Errorf("upsert em %s: %w", collection, err)
	}

	return nil
}

type searchResult struct {
	Result []ScoredPoint `json:"result"`
}

// Search busca os top-k pontos mais próximos do vetor
func (c *QdrantClient) Search(ctx context.Context, collection string, vector []float32, limit int) ([]ScoredPoint, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, collection)
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}

	var resp searchResult
	if err := c.doRequest(ctx, http.MethodPost, url, body, &resp); err != nil {
		return nil, fmt.Errorf("buscar em %s: %w", collection, err)
	}

	return resp.Result, nil
}

// doRequest executa uma requisição HTTP genérica para a API do Qdrant
func (c *QdrantClient) doRequest(ctx context.Context, method, url string, body, result any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("criar request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return model.ErrTimeout
		}
		return fmt.Errorf("executar request: %w", err)
	}
	defer resp.Body.Close()

	// Tratamento de erros HTTP
	switch resp.StatusCode {
	case http.StatusOK:
		// OK, continua
	case http.StatusTooManyRequests:
		return model.ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return model.ErrUnauthorized
	case http.StatusNotFound:
		return model.ErrCollectionNotFound
	default:
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}

	if result == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	// Parse da resposta
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
