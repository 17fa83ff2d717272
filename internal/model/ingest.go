package model

import "time"

// DocumentChunk é uma janela de texto produzida pelo splitting do documento
type DocumentChunk struct {
	SourceID            string
	Text                string
	ChunkIndex          int
	OverlapWithPrevious int
}

// BatchStatus representa o estado de um lote de upload
type BatchStatus string

const (
	BatchPending   BatchStatus = "pending"
	BatchRetrying  BatchStatus = "retrying"
	BatchSucceeded BatchStatus = "succeeded"
	BatchFailed    BatchStatus = "failed"
)

// UploadBatch é um lote de chunks com estado explícito de retry.
// Estados terminais: succeeded ou failed.
type UploadBatch struct {
	Number       int
	Chunks       []DocumentChunk
	AttemptCount int
	Status       BatchStatus
	Elapsed      time.Duration
	LastError    string
}

// IngestionReport é o resultado final de uma ingestão.
// Sempre retornado, mesmo com falhas parciais.
type IngestionReport struct {
	SourceID         string        `json:"source_id"`
	Collection       string        `json:"collection"`
	TotalChunks      int           `json:"total_chunks"`
	TotalBatches     int           `json:"total_batches"`
	SucceededBatches int           `json:"succeeded_batches"`
	FailedBatches    int           `json:"failed_batches"`
	Elapsed          time.Duration `json:"elapsed_ms"`
	Batches          []UploadBatch `json:"-"`
}
