package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cleberrangel/teamsync-api/internal/client"
	"github.com/cleberrangel/teamsync-api/internal/model"
)

// fakeEmbedder devolve vetores de dimensão fixa; failAfter > 0 faz as
// chamadas seguintes falharem
type fakeEmbedder struct {
	mu        sync.Mutex
	calls     int
	failCalls map[int]bool // chamadas de EmbedDocuments que devem falhar (1-based)
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()

	if f.failCalls[call] {
		return nil, errors.New("falha simulada de embedding")
	}

	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

// fakeVectorStore registra os upserts recebidos
type fakeVectorStore struct {
	mu          sync.Mutex
	collections []string
	upserts     [][]client.Point
	upsertErr   error
	ensureErr   error
}

func (f *fakeVectorStore) ListCollections(ctx context.Context) ([]string, error) {
	return f.collections, nil
}

func (f *fakeVectorStore) EnsureCollection(ctx context.Context, name string, vectorSize int) error {
	return f.ensureErr
}

func (f *fakeVectorStore) UpsertPoints(ctx context.Context, collection string, points []client.Point) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, points)
	return nil
}

func (f *fakeVectorStore) Search(ctx context.Context, collection string, vector []float32, limit int) ([]client.ScoredPoint, error) {
	return nil, nil
}

// progressRecorder captura os eventos publicados pela ingestão
type progressRecorder struct {
	mu     sync.Mutex
	events []IngestionProgress
}

func (p *progressRecorder) PublishIngestion(progress IngestionProgress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, progress)
}

func fastConfig() IngestionConfig {
	return IngestionConfig{
		ChunkSize:    50,
		ChunkOverlap: 10,
		BatchSize:    5,
		MaxRetries:   3,
		RetryDelay:   time.Millisecond,
	}
}

func TestIngestHappyPath(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := &fakeVectorStore{}
	sink := &progressRecorder{}

	svc := NewIngestionService(embedder, store, fastConfig(), sink)

	// 520 runas, chunk=50, overlap=10, step=40 -> 13 chunks -> lotes [5,5,3]
	text := strings.Repeat("x", 520)
	report, err := svc.Ingest(context.Background(), text, "doc-1", "docs")
	if err != nil {
		t.Fatalf("Ingest() erro inesperado: %v", err)
	}

	if report.TotalChunks != 13 {
		t.Errorf("TotalChunks = %d, esperado 13", report.TotalChunks)
	}
	if report.TotalBatches != 3 {
		t.Errorf("TotalBatches = %d, esperado 3", report.TotalBatches)
	}
	if report.SucceededBatches != 3 || report.FailedBatches != 0 {
		t.Errorf("succeeded=%d failed=%d, esperado 3/0", report.SucceededBatches, report.FailedBatches)
	}

	if len(store.upserts) != 3 {
		t.Fatalf("esperados 3 upserts, obtidos %d", len(store.upserts))
	}
	for _, points := range store.upserts {
		for _, p := range points {
			if p.ID == "" {
				t.Error("ponto sem ID")
			}
			if p.Payload["source_id"] != "doc-1" {
				t.Errorf("payload source_id = %v", p.Payload["source_id"])
			}
		}
	}
}

func TestIngestRetriesFailedBatchAndContinues(t *testing.T) {
	// O primeiro lote falha nas 3 tentativas (chamadas 1, 2 e 3 de
	// EmbedDocuments); os lotes seguintes processam normalmente
	embedder := &fakeEmbedder{failCalls: map[int]bool{1: true, 2: true, 3: true}}
	store := &fakeVectorStore{}
	sink := &progressRecorder{}

	svc := NewIngestionService(embedder, store, fastConfig(), sink)

	text := strings.Repeat("x", 520)
	report, err := svc.Ingest(context.Background(), text, "doc-1", "docs")
	if err != nil {
		t.Fatalf("Ingest() erro inesperado: %v", err)
	}

	if report.FailedBatches != 1 {
		t.Errorf("FailedBatches = %d, esperado 1", report.FailedBatches)
	}
	if report.SucceededBatches != 2 {
		t.Errorf("SucceededBatches = %d, esperado 2", report.SucceededBatches)
	}

	failed := report.Batches[0]
	if failed.Status != model.BatchFailed {
		t.Errorf("lote 1 Status = %s, esperado failed", failed.Status)
	}
	if failed.AttemptCount != 3 {
		t.Errorf("lote 1 AttemptCount = %d, esperado 3", failed.AttemptCount)
	}
	if failed.LastError == "" {
		t.Error("lote 1 deve registrar o último erro")
	}

	// Eventos de retry foram publicados para o lote 1
	var sawRetrying bool
	for _, ev := range sink.events {
		if ev.BatchNumber == 1 && ev.Status == model.BatchRetrying {
			sawRetrying = true
		}
	}
	if !sawRetrying {
		t.Error("esperado evento de progresso com status retrying para o lote 1")
	}
}

func TestIngestTransientFailureRecovers(t *testing.T) {
	// Primeira tentativa do primeiro lote falha; a segunda passa
	embedder := &fakeEmbedder{failCalls: map[int]bool{1: true}}
	store := &fakeVectorStore{}

	svc := NewIngestionService(embedder, store, fastConfig(), nil)

	text := strings.Repeat("x", 200) // 5 chunks -> 1 lote
	report, err := svc.Ingest(context.Background(), text, "doc-1", "docs")
	if err != nil {
		t.Fatalf("Ingest() erro inesperado: %v", err)
	}

	if report.SucceededBatches != 1 || report.FailedBatches != 0 {
		t.Fatalf("succeeded=%d failed=%d, esperado 1/0", report.SucceededBatches, report.FailedBatches)
	}
	if report.Batches[0].AttemptCount != 2 {
		t.Errorf("AttemptCount = %d, esperado 2", report.Batches[0].AttemptCount)
	}
}

func TestIngestCollectionFailureMarksAllBatchesFailed(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := &fakeVectorStore{ensureErr: errors.New("qdrant indisponível")}

	svc := NewIngestionService(embedder, store, fastConfig(), nil)

	text := strings.Repeat("x", 520)
	report, err := svc.Ingest(context.Background(), text, "doc-1", "docs")
	if err != nil {
		t.Fatalf("a ingestão sempre retorna relatório, obtido erro: %v", err)
	}

	if report.FailedBatches != report.TotalBatches {
		t.Errorf("FailedBatches = %d, esperado %d", report.FailedBatches, report.TotalBatches)
	}
	if len(store.upserts) != 0 {
		t.Errorf("nenhum upsert deveria ocorrer, obtidos %d", len(store.upserts))
	}
}

func TestIngestEmptyDocument(t *testing.T) {
	svc := NewIngestionService(&fakeEmbedder{}, &fakeVectorStore{}, fastConfig(), nil)

	report, err := svc.Ingest(context.Background(), "", "doc-1", "docs")
	if err != nil {
		t.Fatalf("Ingest() erro inesperado: %v", err)
	}
	if report.TotalChunks != 0 || report.TotalBatches != 0 {
		t.Errorf("documento vazio: chunks=%d batches=%d", report.TotalChunks, report.TotalBatches)
	}
}
