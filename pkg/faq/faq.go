// Package faq answers general questions from the institutional knowledge index.
package faq

import (
	"context"
	"fmt"
	"strings"

	"udla-mentor-be/internal/entity"
	"udla-mentor-be/pkg/llm"
)

const (
	// DefaultLimit is how many snippets the agent receives.
	DefaultLimit = 3

	NoResults    = "No se encontraron respuestas relevantes en las FAQs."
	SearchFailed = "Ocurrió un error al buscar en las FAQs."
)

// Searcher returns the k most relevant snippets for a question, best first.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]string, error)
}

// ChunkFinder is the vector index the VectorSearcher reads.
type ChunkFinder interface {
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.ScoredFAQChunk, error)
}

type VectorSearcher struct {
	embedder llm.Embedder
	chunks   ChunkFinder
	minScore float64
}

// NewVectorSearcher drops hits below minScore cosine similarity; 0 keeps everything.
func NewVectorSearcher(embedder llm.Embedder, chunks ChunkFinder, minScore float64) *VectorSearcher {
	return &VectorSearcher{embedder: embedder, chunks: chunks, minScore: minScore}
}

func (s *VectorSearcher) Search(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 {
		k = DefaultLimit
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("faq: embed query: %w", err)
	}
	hits, err := s.chunks.SearchSimilar(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("faq: vector search: %w", err)
	}

	snippets := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.Similarity < s.minScore {
			continue
		}
		if text := strings.TrimSpace(h.Chunk.Content); text != "" {
			snippets = append(snippets, text)
		}
	}
	return snippets, nil
}

// Unavailable is wired when no knowledge index is configured.
type Unavailable struct{}

func (Unavailable) Search(ctx context.Context, query string, k int) ([]string, error) {
	return nil, nil
}

// Render joins snippets by blank lines, or returns NoResults.
func Render(snippets []string) string {
	if len(snippets) == 0 {
		return NoResults
	}
	return strings.Join(snippets, "\n\n")
}
