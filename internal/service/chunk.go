package service

import "github.com/cleberrangel/teamsync-api/internal/model"

// SplitDocument divide o texto em janelas de tamanho fixo com sobreposição.
// Janelas são medidas em runas; a última pode ser menor. chunkSize deve ser
// maior que overlap (validado na configuração).
func SplitDocument(text, sourceID string, chunkSize, overlap int) []model.DocumentChunk {
	if text == "" || chunkSize <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	runes := []rune(text)
	step := chunkSize - overlap

	var chunks []model.DocumentChunk
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		actualOverlap := 0
		if start > 0 {
			actualOverlap = overlap
		}

		chunks = append(chunks, model.DocumentChunk{
			SourceID:            sourceID,
			Text:                string(runes[start:end]),
			ChunkIndex:          len(chunks),
			OverlapWithPrevious: actualOverlap,
		})

		if end == len(runes) {
			break
		}
	}

	return chunks
}

// BatchChunks agrupa os chunks em lotes de até batchSize, na ordem original
func BatchChunks(chunks []model.DocumentChunk, batchSize int) []model.UploadBatch {
	if batchSize <= 0 {
		batchSize = 1
	}

	var batches []model.UploadBatch
	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batches = append(batches, model.UploadBatch{
			Number: len(batches) + 1,
			Chunks: chunks[i:end],
			Status: model.BatchPending,
		})
	}

	return batches
}
