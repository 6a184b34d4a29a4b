package mapper

import (
	"encoding/json"

	"udla-mentor-be/internal/entity"
	"udla-mentor-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type FAQChunkMapper struct{}

func NewFAQChunkMapper() *FAQChunkMapper {
	return &FAQChunkMapper{}
}

func (m *FAQChunkMapper) ToEntity(c *model.FAQChunk) *entity.FAQChunk {
	if c == nil {
		return nil
	}

	var metadata map[string]string
	if len(c.Metadata) > 0 {
		// Malformed metadata is dropped rather than failing the read
		_ = json.Unmarshal(c.Metadata, &metadata)
	}

	return &entity.FAQChunk{
		Id:         c.Id,
		Source:     c.Source,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		Metadata:   metadata,
		Embedding:  c.Embedding.Slice(),
		CreatedAt:  c.CreatedAt,
	}
}

func (m *FAQChunkMapper) ToModel(c *entity.FAQChunk) *model.FAQChunk {
	if c == nil {
		return nil
	}

	var metadata datatypes.JSON
	if len(c.Metadata) > 0 {
		raw, err := json.Marshal(c.Metadata)
		if err == nil {
			metadata = datatypes.JSON(raw)
		}
	}

	return &model.FAQChunk{
		Id:         c.Id,
		Source:     c.Source,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		Metadata:   metadata,
		Embedding:  pgvector.NewVector(c.Embedding),
		CreatedAt:  c.CreatedAt,
	}
}

func (m *FAQChunkMapper) ToEntities(chunks []*model.FAQChunk) []*entity.FAQChunk {
	entities := make([]*entity.FAQChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *FAQChunkMapper) ToModels(chunks []*entity.FAQChunk) []*model.FAQChunk {
	models := make([]*model.FAQChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}
