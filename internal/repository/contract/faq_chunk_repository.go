package contract

import (
	"context"

	"udla-mentor-be/internal/entity"
	"udla-mentor-be/internal/repository/specification"
)

type FAQChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.FAQChunk) error
	DeleteBySource(ctx context.Context, source string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FAQChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilar orders by cosine distance to embedding, nearest first.
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.ScoredFAQChunk, error)
}
