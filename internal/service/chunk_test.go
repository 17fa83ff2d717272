package service

import (
	"strings"
	"testing"

	"github.com/cleberrangel/teamsync-api/internal/model"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestSplitDocument(t *testing.T) {
	t.Run("texto vazio retorna nil", func(t *testing.T) {
		if chunks := SplitDocument("", "doc-1", 500, 100); chunks != nil {
			t.Fatalf("esperado nil, obtido %d chunks", len(chunks))
		}
	})

	t.Run("texto menor que o chunk vira um único chunk", func(t *testing.T) {
		chunks := SplitDocument("hello world", "doc-1", 500, 100)

		if len(chunks) != 1 {
			t.Fatalf("esperado 1 chunk, obtido %d", len(chunks))
		}
		if chunks[0].Text != "hello world" {
			t.Errorf("Text = %q", chunks[0].Text)
		}
		if chunks[0].ChunkIndex != 0 {
			t.Errorf("ChunkIndex = %d, esperado 0", chunks[0].ChunkIndex)
		}
		if chunks[0].OverlapWithPrevious != 0 {
			t.Errorf("primeiro chunk não deve ter overlap, obtido %d", chunks[0].OverlapWithPrevious)
		}
	})

	t.Run("janelas consecutivas compartilham o overlap", func(t *testing.T) {
		// 12 runas, chunk=5, overlap=2 -> janelas em 0, 3, 6, 9
		text := "abcdefghijkl"
		chunks := SplitDocument(text, "doc-1", 5, 2)

		want := []string{"abcde", "defgh", "ghijk", "jkl"}
		if len(chunks) != len(want) {
			t.Fatalf("esperado %d chunks, obtido %d", len(want), len(chunks))
		}
		for i, w := range want {
			if chunks[i].Text != w {
				t.Errorf("chunk %d = %q, esperado %q", i, chunks[i].Text, w)
			}
			if chunks[i].ChunkIndex != i {
				t.Errorf("chunk %d tem ChunkIndex %d", i, chunks[i].ChunkIndex)
			}
		}

		// Os 2 últimos caracteres de cada chunk abrem o seguinte
		for i := 1; i < len(chunks); i++ {
			if chunks[i].OverlapWithPrevious != 2 {
				t.Errorf("chunk %d OverlapWithPrevious = %d, esperado 2", i, chunks[i].OverlapWithPrevious)
			}
			prevTail := chunks[i-1].Text[len(chunks[i-1].Text)-2:]
			if !strings.HasPrefix(chunks[i].Text, prevTail) {
				t.Errorf("chunk %d não começa com o fim do anterior: %q vs %q", i, chunks[i].Text, prevTail)
			}
		}
	})

	t.Run("runas multibyte não são cortadas", func(t *testing.T) {
		text := strings.Repeat("ação", 10) // 40 runas
		chunks := SplitDocument(text, "doc-1", 7, 2)

		var rebuilt strings.Builder
		for i, c := range chunks {
			runes := []rune(c.Text)
			if i > 0 {
				runes = runes[c.OverlapWithPrevious:]
			}
			rebuilt.WriteString(string(runes))
		}
		if rebuilt.String() != text {
			t.Errorf("reconstrução dos chunks difere do texto original")
		}
	})
}

func TestBatchChunks(t *testing.T) {
	makeChunks := func(n int) []model.DocumentChunk {
		chunks := make([]model.DocumentChunk, n)
		for i := range chunks {
			chunks[i] = model.DocumentChunk{SourceID: "doc-1", ChunkIndex: i}
		}
		return chunks
	}

	t.Run("13 chunks em lotes de 5", func(t *testing.T) {
		batches := BatchChunks(makeChunks(13), 5)

		wantSizes := []int{5, 5, 3}
		if len(batches) != len(wantSizes) {
			t.Fatalf("esperado %d lotes, obtido %d", len(wantSizes), len(batches))
		}
		for i, size := range wantSizes {
			if len(batches[i].Chunks) != size {
				t.Errorf("lote %d com %d chunks, esperado %d", i+1, len(batches[i].Chunks), size)
			}
			if batches[i].Number != i+1 {
				t.Errorf("lote %d numerado como %d", i, batches[i].Number)
			}
			if batches[i].Status != model.BatchPending {
				t.Errorf("lote %d com status %s, esperado pending", i+1, batches[i].Status)
			}
		}
	})

	t.Run("sem chunks não há lotes", func(t *testing.T) {
		if batches := BatchChunks(nil, 5); batches != nil {
			t.Fatalf("esperado nil, obtido %d lotes", len(batches))
		}
	})
}

func TestChunkingProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	// ceil(K/B) lotes, ordem preservada, nenhum chunk perdido
	properties.Property("batching preserves every chunk in order", prop.ForAll(
		func(total, batchSize int) bool {
			chunks := make([]model.DocumentChunk, total)
			for i := range chunks {
				chunks[i] = model.DocumentChunk{ChunkIndex: i}
			}

			batches := BatchChunks(chunks, batchSize)

			wantBatches := (total + batchSize - 1) / batchSize
			if len(batches) != wantBatches {
				return false
			}

			next := 0
			for _, b := range batches {
				for _, c := range b.Chunks {
					if c.ChunkIndex != next {
						return false
					}
					next++
				}
			}
			return next == total
		},
		gen.IntRange(1, 200),
		gen.IntRange(1, 20),
	))

	// A divisão nunca perde texto: a reconstrução sem overlaps é o original
	properties.Property("splitting loses no content", prop.ForAll(
		func(text string, chunkSize, overlap int) bool {
			if overlap >= chunkSize {
				overlap = chunkSize - 1
			}
			chunks := SplitDocument(text, "prop-doc", chunkSize, overlap)
			if text == "" {
				return chunks == nil
			}

			var rebuilt []rune
			for i, c := range chunks {
				runes := []rune(c.Text)
				if i > 0 {
					runes = runes[c.OverlapWithPrevious:]
				}
				rebuilt = append(rebuilt, runes...)
			}
			return string(rebuilt) == text
		},
		gen.AnyString(),
		gen.IntRange(2, 50),
		gen.IntRange(0, 49),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
