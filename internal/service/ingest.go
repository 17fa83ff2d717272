package service

import (
	"context"
	"time"

	"github.com/cleberrangel/teamsync-api/internal/client"
	"github.com/cleberrangel/teamsync-api/internal/embedding"
	"github.com/cleberrangel/teamsync-api/internal/logger"
	"github.com/cleberrangel/teamsync-api/internal/metrics"
	"github.com/cleberrangel/teamsync-api/internal/model"
	"github.com/google/uuid"
)

// IngestionConfig agrupa as constantes de projeto da ingestão.
// Valores padrão: chunk_size=500, chunk_overlap=100, batch_size=5,
// max_retries=3.
type IngestionConfig struct {
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
	MaxRetries   int
	RetryDelay   time.Duration
}

// IngestionProgress é o evento emitido a cada transição de estado de lote
type IngestionProgress struct {
	SourceID     string            `json:"source_id"`
	Collection   string            `json:"collection"`
	BatchNumber  int               `json:"batch_number"`
	TotalBatches int               `json:"total_batches"`
	Status       model.BatchStatus `json:"status"`
	Attempt      int               `json:"attempt"`
	Message      string            `json:"message,omitempty"`
}

// ProgressSink recebe eventos de progresso da ingestão (ex.: hub websocket)
type ProgressSink interface {
	PublishIngestion(progress IngestionProgress)
}

// IngestionService executa o pipeline de ingestão: chunking, embeddings em
// lotes e upsert no vector store com retry e backoff por lote
type IngestionService struct {
	embedder embedding.Client
	store    client.VectorStore
	cfg      IngestionConfig
	sink     ProgressSink
}

// NewIngestionService cria um novo serviço de ingestão
func NewIngestionService(embedder embedding.Client, store client.VectorStore, cfg IngestionConfig, sink ProgressSink) *IngestionService {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 500
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = 100
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	return &IngestionService{
		embedder: embedder,
		store:    store,
		cfg:      cfg,
		sink:     sink,
	}
}

// ListCollections retorna as coleções disponíveis no vector store
func (s *IngestionService) ListCollections(ctx context.Context) ([]string, error) {
	return s.store.ListCollections(ctx)
}

// Ingest processa um documento inteiro na coleção indicada. Sempre retorna
// um relatório: um lote que esgota os retries é marcado como failed e o
// processamento CONTINUA no próximo lote.
func (s *IngestionService) Ingest(ctx context.Context, documentText, sourceID, collection string) (*model.IngestionReport, error) {
	log := logger.Get(ctx)
	start := time.Now()

	chunks := SplitDocument(documentText, sourceID, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	batches := BatchChunks(chunks, s.cfg.BatchSize)

	report := &model.IngestionReport{
		SourceID:     sourceID,
		Collection:   collection,
		TotalChunks:  len(chunks),
		TotalBatches: len(batches),
	}

	log.Info().
		Str("source_id", sourceID).
		Str("collection", collection).
		Int("chunks", len(chunks)).
		Int("batches", len(batches)).
		Msg("Iniciando ingestão")

	if len(batches) == 0 {
		report.Elapsed = time.Since(start)
		return report, nil
	}

	// Garante a coleção antes de processar; a dimensão vem de um embedding
	// de sondagem (a API não expõe a dimensão do modelo)
	if err := s.ensureCollection(ctx, collection); err != nil {
		log.Error().Err(err).Msg("Falha ao preparar coleção, todos os lotes marcados como failed")
		for i := range batches {
			batches[i].Status = model.BatchFailed
			batches[i].LastError = err.Error()
			report.FailedBatches++
			metrics.Get().IncrementIngestBatches(false)
		}
		report.Batches = batches
		report.Elapsed = time.Since(start)
		return report, nil
	}

	for i := range batches {
		s.processBatch(ctx, collection, &batches[i], len(batches))

		switch batches[i].Status {
		case model.BatchSucceeded:
			report.SucceededBatches++
			metrics.Get().IncrementIngestBatches(true)
		case model.BatchFailed:
			report.FailedBatches++
			metrics.Get().IncrementIngestBatches(false)
		}
	}

	report.Batches = batches
	report.Elapsed = time.Since(start)

	log.Info().
		Int("total_chunks", report.TotalChunks).
		Int("succeeded_batches", report.SucceededBatches).
		Int("failed_batches", report.FailedBatches).
		Dur("elapsed", report.Elapsed).
		Msg("Ingestão concluída")

	return report, nil
}

// processBatch leva um lote por sua máquina de estados:
// pending -> retrying(n) -> succeeded | failed.
// Embedding e upsert falham e são retentados de forma idêntica.
func (s *IngestionService) processBatch(ctx context.Context, collection string, batch *model.UploadBatch, totalBatches int) {
	log := logger.Get(ctx)

	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		batch.AttemptCount = attempt
		if attempt > 1 {
			batch.Status = model.BatchRetrying
		}
		s.publish(collection, batch, totalBatches, "")

		batchStart := time.Now()
		err := s.uploadBatch(ctx, collection, batch)
		batch.Elapsed = time.Since(batchStart)

		if err == nil {
			batch.Status = model.BatchSucceeded
			s.publish(collection, batch, totalBatches, "")
			log.Info().
				Int("batch", batch.Number).
				Int("chunks", len(batch.Chunks)).
				Int("attempt", attempt).
				Dur("elapsed", batch.Elapsed).
				Msg("Lote enviado")
			return
		}

		batch.LastError = err.Error()

		if ctx.Err() != nil {
			// Contexto cancelado: lote vira failed, sem novas tentativas
			break
		}

		if attempt < s.cfg.MaxRetries {
			backoff := s.cfg.RetryDelay * time.Duration(attempt)
			log.Warn().
				Int("batch", batch.Number).
				Int("attempt", attempt).
				Int("max_attempts", s.cfg.MaxRetries).
				Err(err).
				Dur("backoff", backoff).
				Msg("Tentativa do lote falhou, aguardando retry")

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				batch.Status = model.BatchFailed
				s.publish(collection, batch, totalBatches, batch.LastError)
				return
			}
		}
	}

	batch.Status = model.BatchFailed
	s.publish(collection, batch, totalBatches, batch.LastError)
	log.Error().
		Int("batch", batch.Number).
		Int("attempts", batch.AttemptCount).
		Str("error", batch.LastError).
		Msg("Lote falhou definitivamente, seguindo para o próximo")
}

// uploadBatch computa os embeddings do lote e faz o upsert dos pontos
func (s *IngestionService) uploadBatch(ctx context.Context, collection string, batch *model.UploadBatch) error {
	texts := make([]string, len(batch.Chunks))
	for i, chunk := range batch.Chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return err
	}

	points := make([]client.Point, len(batch.Chunks))
	for i, chunk := range batch.Chunks {
		points[i] = client.Point{
			ID:     uuid.New().String(),
			Vector: vectors[i],
			Payload: map[string]any{
				"text":        chunk.Text,
				"source_id":   chunk.SourceID,
				"chunk_index": chunk.ChunkIndex,
			},
		}
	}

	return s.store.UpsertPoints(ctx, collection, points)
}

func (s *IngestionService) ensureCollection(ctx context.Context, collection string) error {
	probe, err := s.embedder.EmbedQuery(ctx, "dimension probe")
	if err != nil {
		return err
	}
	return s.store.EnsureCollection(ctx, collection, len(probe))
}

func (s *IngestionService) publish(collection string, batch *model.UploadBatch, totalBatches int, message string) {
	if s.sink == nil {
		return
	}
	s.sink.PublishIngestion(IngestionProgress{
		SourceID:     firstSourceID(batch),
		Collection:   collection,
		BatchNumber:  batch.Number,
		TotalBatches: totalBatches,
		Status:       batch.Status,
		Attempt:      batch.AttemptCount,
		Message:      message,
	})
}

func firstSourceID(batch *model.UploadBatch) string {
	if len(batch.Chunks) > 0 {
		return batch.Chunks[0].SourceID
	}
	return ""
}
