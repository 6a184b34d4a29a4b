package entity

import (
	"time"

	"github.com/google/uuid"
)

type FAQChunk struct {
	Id         uuid.UUID
	Source     string
	ChunkIndex int
	Content    string
	Metadata   map[string]string
	Embedding  []float32
	CreatedAt  time.Time
}

// ScoredFAQChunk pairs a chunk with its cosine similarity to the query.
type ScoredFAQChunk struct {
	Chunk      *FAQChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}
