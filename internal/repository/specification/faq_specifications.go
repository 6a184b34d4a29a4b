package specification

import "gorm.io/gorm"

// BySource filters FAQ chunks by the file they were seeded from
type BySource struct {
	Source string
}

func (s BySource) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source = ?", s.Source)
}

// ChunkOrder returns chunks in document order
type ChunkOrder struct{}

func (s ChunkOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("source ASC").Order("chunk_index ASC")
}
