// Command seed_faq loads FAQ text files into the knowledge index.
//
//	seed_faq [-chunk 800] [-overlap 150] faq_general.txt faq_justificaciones.txt
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"udla-mentor-be/internal/config"
	"udla-mentor-be/internal/entity"
	"udla-mentor-be/internal/repository/implementation"
	"udla-mentor-be/pkg/database"
	"udla-mentor-be/pkg/llm/factory"
	"udla-mentor-be/pkg/utils"
)

func main() {
	chunkSize := flag.Int("chunk", 800, "chunk size in runes")
	overlap := flag.Int("overlap", 150, "overlap between chunks in runes")
	migrate := flag.Bool("migrate", true, "create the pgvector extension and faq_chunks table first")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("usage: seed_faq [flags] file.txt...")
	}

	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}
	if *migrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("Error: migration failed:", err)
		}
	}

	embedder, err := factory.NewLLMProvider(factory.Config{
		Provider:       cfg.Ai.Provider,
		APIKey:         cfg.Ai.APIKey,
		Endpoint:       cfg.Ai.Endpoint,
		APIVersion:     cfg.Ai.APIVersion,
		ChatModel:      cfg.Ai.ChatModel,
		EmbeddingModel: cfg.Ai.EmbeddingModel,
	})
	if err != nil {
		log.Fatal("Error: LLM provider:", err)
	}

	repo := implementation.NewFAQChunkRepository(db)
	ctx := context.Background()

	for _, path := range flag.Args() {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Skipping %s: %v", path, err)
			continue
		}
		source := filepath.Base(path)

		var chunks []*entity.FAQChunk
		for i, text := range utils.SplitText(strings.TrimSpace(string(raw)), *chunkSize, *overlap) {
			if strings.TrimSpace(text) == "" {
				continue
			}
			vec, err := embedder.Embed(ctx, text)
			if err != nil {
				log.Fatalf("Error: embedding chunk %d of %s: %v", i, source, err)
			}
			chunks = append(chunks, &entity.FAQChunk{
				Source:     source,
				ChunkIndex: i,
				Content:    text,
				Metadata:   map[string]string{"source": source},
				Embedding:  vec,
			})
		}

		// re-seeding a file replaces its chunks
		if err := repo.DeleteBySource(ctx, source); err != nil {
			log.Fatalf("Error: clearing %s: %v", source, err)
		}
		if err := repo.CreateBulk(ctx, chunks); err != nil {
			log.Fatalf("Error: storing %s: %v", source, err)
		}
		log.Printf("Seeded %d chunks from %s", len(chunks), source)
	}
}
