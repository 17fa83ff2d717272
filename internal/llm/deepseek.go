package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cleberrangel/teamsync-api/internal/model"
	"golang.org/x/time/rate"
)

const (
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	deepSeekModel     = "deepseek/deepseek-r1-0528:free"

	// RequestsPerMinute limite conservador para o OpenRouter
	deepSeekRequestsPerMinute = 60
)

// DeepSeekProvider chama o modelo DeepSeek via API compatível com OpenAI
// (chat completions) hospedada no OpenRouter
type DeepSeekProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewDeepSeekProvider cria um novo provider DeepSeek
func NewDeepSeekProvider(apiKey string, timeout time.Duration) *DeepSeekProvider {
	return &DeepSeekProvider{
		apiKey:  apiKey,
		baseURL: openRouterBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/deepSeekRequestsPerMinute), 5),
	}
}

// Name retorna o nome do provider
func (p *DeepSeekProvider) Name() string { return "deepseek" }

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete envia o prompt e retorna o texto bruto da conclusão
func (p *DeepSeekProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	body := chatCompletionRequest{
		Model: deepSeekModel,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("criar request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", model.ErrTimeout
		}
		return "", fmt.Errorf("executar request: %w", err)
	}
	defer resp.Body.Close()

	// Tratamento de erros HTTP
	switch resp.StatusCode {
	case http.StatusOK:
		// OK, continua
	case http.StatusTooManyRequests:
		return "", model.ErrRateLimited
	case http.StatusUnauthorized:
		return "", model.ErrUnauthorized
	default:
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}

	// Parse da resposta
	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", model.ErrInvalidResponse
	}

	return completion.Choices[0].Message.Content, nil
}
