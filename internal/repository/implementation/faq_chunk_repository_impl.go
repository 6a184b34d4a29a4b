package implementation

import (
	"context"

	"udla-mentor-be/internal/entity"
	"udla-mentor-be/internal/mapper"
	"udla-mentor-be/internal/model"
	"udla-mentor-be/internal/repository/contract"
	"udla-mentor-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type FAQChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FAQChunkMapper
}

func NewFAQChunkRepository(db *gorm.DB) contract.FAQChunkRepository {
	return &FAQChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewFAQChunkMapper(),
	}
}

func (r *FAQChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FAQChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.FAQChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := r.mapper.ToModels(chunks)
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}

	// Update IDs back to entities
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

// DeleteBySource removes every chunk of a file so re-seeding replaces it.
func (r *FAQChunkRepositoryImpl) DeleteBySource(ctx context.Context, source string) error {
	return r.db.WithContext(ctx).Where("source = ?", source).Delete(&model.FAQChunk{}).Error
}

func (r *FAQChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FAQChunk, error) {
	var models []*model.FAQChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *FAQChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.FAQChunk{}).Count(&count).Error
	return count, err
}

func (r *FAQChunkRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.ScoredFAQChunk, error) {
	if limit <= 0 {
		limit = 3
	}

	// Cosine distance in pgvector is: 1 - cosine_similarity
	type result struct {
		model.FAQChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table(model.FAQChunk{}.TableName()).
		Select("faq_chunks.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Order(gorm.Expr("embedding <=> ?", queryVector)).
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredFAQChunk, len(results))
	for i := range results {
		scored[i] = &entity.ScoredFAQChunk{
			Chunk:      r.mapper.ToEntity(&results[i].FAQChunk),
			Similarity: results[i].Similarity,
		}
	}
	return scored, nil
}
