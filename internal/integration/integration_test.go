// Package integration provides end-to-end integration tests for the TeamSync
// API. The HTTP surface is exercised through the real router, handlers and
// services; only the external boundaries (LLM provider, embeddings, vector
// store, database) are faked.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cleberrangel/teamsync-api/internal/client"
	"github.com/cleberrangel/teamsync-api/internal/handler"
	"github.com/cleberrangel/teamsync-api/internal/history"
	"github.com/cleberrangel/teamsync-api/internal/middleware"
	"github.com/cleberrangel/teamsync-api/internal/model"
	"github.com/cleberrangel/teamsync-api/internal/repository"
	"github.com/cleberrangel/teamsync-api/internal/service"
	"github.com/gin-gonic/gin"
)

const testToken = "integration-test-token"

// fakeLLM answers every completion with the next scripted response
type fakeLLM struct {
	mu        sync.Mutex
	responses []string
	calls     int
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.responses) == 0 {
		return "", errors.New("no scripted responses")
	}
	resp := f.responses[f.calls%len(f.responses)]
	f.calls++
	return resp, nil
}

func (f *fakeLLM) Name() string { return "fake" }

type fakeEmbedder struct{}

func (fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

func (f fakeEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeVectorStore struct {
	mu          sync.Mutex
	collections []string
	points      map[string][]client.Point
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{points: make(map[string][]client.Point)}
}

func (f *fakeVectorStore) ListCollections(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.collections...), nil
}

func (f *fakeVectorStore) EnsureCollection(ctx context.Context, name string, vectorSize int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.collections {
		if c == name {
			return nil
		}
	}
	f.collections = append(f.collections, name)
	return nil
}

func (f *fakeVectorStore) UpsertPoints(ctx context.Context, collection string, points []client.Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points[collection] = append(f.points[collection], points...)
	return nil
}

func (f *fakeVectorStore) Search(ctx context.Context, collection string, vector []float32, limit int) ([]client.ScoredPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var results []client.ScoredPoint
	for _, p := range f.points[collection] {
		results = append(results, client.ScoredPoint{ID: p.ID, Score: 0.9, Payload: p.Payload})
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

type fakeProjects struct{}

func (fakeProjects) GetByID(ctx context.Context, id int) (*repository.Project, error) {
	if id != 1 {
		return nil, model.ErrProjectNotFound
	}
	return &repository.Project{ID: 1, Title: "TeamSync"}, nil
}

type fakeTasks struct{}

func (fakeTasks) GetByID(ctx context.Context, id, projectID int) (*repository.Task, error) {
	return nil, model.ErrTaskNotFound
}

func (fakeTasks) ListSiblings(ctx context.Context, parentTaskID, projectID, limit int) ([]repository.Task, error) {
	return nil, nil
}

func (fakeTasks) ListExamples(ctx context.Context, projectID, limit int) ([]repository.Task, error) {
	return nil, nil
}

// fakeUsers keeps every session anonymous
type fakeUsers struct{}

func (fakeUsers) GetByID(ctx context.Context, id int) (*repository.User, error) {
	return nil, model.ErrUserNotFound
}

func (fakeUsers) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	return nil, model.ErrUserNotFound
}

// TestContext holds all dependencies for integration tests
type TestContext struct {
	Router  *gin.Engine
	LLM     *fakeLLM
	Store   *fakeVectorStore
	History *history.Store
}

// setupTestContext wires the router with faked external boundaries
func setupTestContext(t *testing.T, llmResponses []string) *TestContext {
	t.Helper()
	gin.SetMode(gin.TestMode)

	llm := &fakeLLM{responses: llmResponses}
	store := newFakeVectorStore()
	hist := history.NewStore(time.Minute)
	t.Cleanup(hist.Stop)

	estimateService := service.NewEstimateService(fakeProjects{}, fakeTasks{}, llm, 3, time.Second)
	ingestService := service.NewIngestionService(fakeEmbedder{}, store, service.IngestionConfig{
		ChunkSize:    50,
		ChunkOverlap: 10,
		BatchSize:    5,
		MaxRetries:   3,
		RetryDelay:   time.Millisecond,
	}, nil)
	agentService := service.NewAgentService(llm, nil)
	chatService := service.NewChatService(llm, fakeEmbedder{}, store, hist, agentService)

	estimateHandler := handler.NewEstimateHandler(estimateService)
	chatbotHandler := handler.NewChatbotHandler(chatService, ingestService, fakeUsers{})
	collectionHandler := handler.NewCollectionHandler(ingestService)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(gin.Recovery())

	api := r.Group("/api/v1")
	api.Use(middleware.BearerAuth(middleware.AuthConfig{TokenAPI: testToken}))
	{
		api.POST("/tasks/estimate-deadline", estimateHandler.EstimateDeadline)
		api.GET("/chatbot/context", chatbotHandler.ListContexts)
		api.POST("/chatbot/:user_id", chatbotHandler.Chat)
		api.GET("/chatbot/:user_id", chatbotHandler.GetHistory)
		api.DELETE("/chatbot/:user_id", chatbotHandler.ClearHistory)
		api.GET("/collections", collectionHandler.ListCollections)
		api.POST("/collections/:name/documents", collectionHandler.IngestDocument)
	}

	return &TestContext{Router: r, LLM: llm, Store: store, History: hist}
}

func (tc *TestContext) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)

	w := httptest.NewRecorder()
	tc.Router.ServeHTTP(w, req)
	return w
}

func TestEstimateWorkflow(t *testing.T) {
	tc := setupTestContext(t, []string{
		"Priority: high\nEstimated Time: 8 hours\nComment: Non-trivial backend work",
	})

	w := tc.request(t, http.MethodPost, "/api/v1/tasks/estimate-deadline", map[string]any{
		"title":       "Add export endpoint",
		"description": "Expose project data as CSV",
		"project_id":  1,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var result model.AggregatedEstimate
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Priority != "high" {
		t.Errorf("priority = %q", result.Priority)
	}
	if result.EstimatedTime != "8.0 hours" {
		t.Errorf("estimated_time = %q", result.EstimatedTime)
	}
	if result.Comment == "" {
		t.Error("comment must not be empty")
	}
}

func TestEstimateUnknownProject(t *testing.T) {
	tc := setupTestContext(t, []string{
		"Priority: low\nEstimated Time: 1 hours\nComment: n/a",
	})

	w := tc.request(t, http.MethodPost, "/api/v1/tasks/estimate-deadline", map[string]any{
		"title":       "Task",
		"description": "Desc",
		"project_id":  99,
	})

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, esperado 404", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	tc := setupTestContext(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/collections", nil)
	w := httptest.NewRecorder()
	tc.Router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, esperado 401", w.Code)
	}
}

func TestIngestThenChatWorkflow(t *testing.T) {
	tc := setupTestContext(t, []string{
		"The deploy window is every Friday at 14:00.",
	})

	// Ingere um documento na coleção
	text := strings.Repeat("deploys happen on fridays. ", 20)
	w := tc.request(t, http.MethodPost, "/api/v1/collections/runbooks/documents", map[string]any{
		"text":      text,
		"source_id": "runbook-1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("ingest status = %d, body = %s", w.Code, w.Body.String())
	}

	var report model.IngestionReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.FailedBatches != 0 {
		t.Fatalf("failed batches = %d, body = %s", report.FailedBatches, w.Body.String())
	}
	if report.SucceededBatches != report.TotalBatches {
		t.Fatalf("succeeded = %d de %d", report.SucceededBatches, report.TotalBatches)
	}

	// A coleção aparece na listagem de contextos
	w = tc.request(t, http.MethodGet, "/api/v1/chatbot/context", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("contexts status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "runbooks") {
		t.Errorf("contexts body = %s", w.Body.String())
	}

	// Chat no modo RAG contra a coleção recém-criada
	w = tc.request(t, http.MethodPost, "/api/v1/chatbot/sessao-teste", map[string]any{
		"query":   "when do deploys happen?",
		"context": "runbooks",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("chat status = %d, body = %s", w.Code, w.Body.String())
	}

	var chat model.ChatResult
	if err := json.Unmarshal(w.Body.Bytes(), &chat); err != nil {
		t.Fatalf("decode chat: %v", err)
	}
	if chat.ResponseType != model.ResponseRAG {
		t.Errorf("response_type = %s, esperado rag", chat.ResponseType)
	}
	if chat.TurnCount != 2 {
		t.Errorf("message_count = %d, esperado 2", chat.TurnCount)
	}
}

func TestChatHistoryLifecycle(t *testing.T) {
	tc := setupTestContext(t, []string{"resposta simulada"})

	for i := 0; i < 3; i++ {
		w := tc.request(t, http.MethodPost, "/api/v1/chatbot/sessao-x", map[string]any{
			"query": fmt.Sprintf("pergunta %d", i),
		})
		if w.Code != http.StatusOK {
			t.Fatalf("chat status = %d", w.Code)
		}
	}

	// Histórico contém os 6 turnos
	w := tc.request(t, http.MethodGet, "/api/v1/chatbot/sessao-x", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history status = %d", w.Code)
	}
	var hist struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if hist.Count != 6 {
		t.Errorf("count = %d, esperado 6", hist.Count)
	}

	// Limpa e confere
	if w = tc.request(t, http.MethodDelete, "/api/v1/chatbot/sessao-x", nil); w.Code != http.StatusOK {
		t.Fatalf("clear status = %d", w.Code)
	}
	w = tc.request(t, http.MethodGet, "/api/v1/chatbot/sessao-x", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if hist.Count != 0 {
		t.Errorf("count após clear = %d, esperado 0", hist.Count)
	}
}
