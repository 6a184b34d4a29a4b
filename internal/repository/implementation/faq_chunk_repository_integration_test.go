package implementation

import (
	"context"
	"log"
	"os"
	"testing"

	"udla-mentor-be/internal/entity"
	"udla-mentor-be/internal/repository/specification"
	"udla-mentor-be/pkg/database"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(hot int) []float32 {
	v := make([]float32, 1536)
	v[hot] = 1
	return v
}

// Runs against a real pgvector database when DB_CONNECTION_STRING is set.
func TestFAQChunkRepositoryPostgres(t *testing.T) {
	if err := godotenv.Load("../../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	ctx := context.Background()
	repo := NewFAQChunkRepository(db)
	const source = "integration_test_faq.txt"
	require.NoError(t, repo.DeleteBySource(ctx, source))
	t.Cleanup(func() { _ = repo.DeleteBySource(ctx, source) })

	require.NoError(t, repo.CreateBulk(ctx, []*entity.FAQChunk{
		{Source: source, ChunkIndex: 0, Content: "La biblioteca abre a las 7h00.", Embedding: vec(0)},
		{Source: source, ChunkIndex: 1, Content: "Las justificaciones se presentan en 48 horas.", Embedding: vec(1)},
	}))

	count, err := repo.Count(ctx, specification.BySource{Source: source})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	all, err := repo.FindAll(ctx, specification.BySource{Source: source}, specification.ChunkOrder{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[1].ChunkIndex)

	hits, err := repo.SearchSimilar(ctx, vec(1), 1)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "Las justificaciones se presentan en 48 horas.", hits[0].Chunk.Content)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
}
