package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/aletheialabs/aletheia/internal/chunker"
	"github.com/aletheialabs/aletheia/internal/config"
	"github.com/aletheialabs/aletheia/internal/core"
	"github.com/aletheialabs/aletheia/internal/embed"
	"github.com/aletheialabs/aletheia/internal/logger"
	"github.com/aletheialabs/aletheia/internal/memory"
	"github.com/aletheialabs/aletheia/internal/store"
)

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	manifestPath := flag.String("manifest", "configs/ingest_manifest.yaml", "Path to the ingestion manifest")
	chunkSize := flag.Int("chunk-size", chunker.DefaultSize, "Chunk size in characters")
	chunkOverlap := flag.Int("chunk-overlap", chunker.DefaultOverlap, "Chunk overlap in characters")
	flag.Parse()

	logger.Init(*debug)
	defer logger.Sync()

	logger.Info("Starting Aletheia ingestion...")

	if err := godotenv.Load(); err != nil {
		logger.Info("Warning: No .env file found or error loading it")
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		logger.Error("OPENAI_API_KEY environment variable is required")
		os.Exit(1)
	}

	manifest, err := config.LoadManifest(*manifestPath)
	if err != nil {
		logger.Error("Failed to load ingestion manifest %s: %v", *manifestPath, err)
		os.Exit(1)
	}
	if len(manifest.Documents) == 0 {
		logger.Warn("Manifest %s lists no documents, nothing to do", *manifestPath)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	embedder, err := embed.NewOpenAI(apiKey, config.GetEnv("EMBEDDING_MODEL", embed.DefaultModel), 0)
	if err != nil {
		logger.Error("Failed to initialize embedder: %v", err)
		os.Exit(1)
	}

	milvusAddr := config.GetEnv("MILVUS_HOST", "localhost") + ":" + config.GetEnv("MILVUS_PORT", "19530")
	collection := config.GetEnv("MILVUS_COLLECTION", store.DefaultCollection)
	handle := store.Open(ctx, milvusAddr, collection, embedder.Dimensions())
	defer handle.Store.Close()
	if !handle.Persistent {
		logger.Warn("Milvus is unreachable, ingesting into in-memory storage only")
	}

	ch, err := chunker.New(*chunkSize, *chunkOverlap)
	if err != nil {
		logger.Error("Invalid chunking parameters: %v", err)
		os.Exit(1)
	}
	service := memory.NewService(handle.Store, embedder, ch)

	var ingested, skippedDocs, skippedChunks, written int
	for _, entry := range manifest.Documents {
		contentType, err := core.ParseContentType(entry.ContentType)
		if err != nil {
			logger.Warn("Skipping %q: %v", entry.File, err)
			skippedDocs++
			continue
		}

		path := manifest.PathFor(entry)
		if _, err := os.Stat(path); err != nil {
			logger.Warn("Skipping %q: %v", entry.File, err)
			skippedDocs++
			continue
		}

		logger.Info("Ingesting %q as %q (%s)", path, entry.Title, contentType)
		result := service.IngestDocument(ctx, path, entry.Title, contentType)
		if result.Err != nil {
			logger.Warn("Skipping %q: %v", entry.File, result.Err)
			skippedDocs++
			continue
		}

		ingested++
		written += result.Written
		skippedChunks += result.SkippedChunks
	}

	logger.Info("Ingestion complete: %d documents ingested, %d documents skipped, %d chunks written, %d chunks skipped",
		ingested, skippedDocs, written, skippedChunks)
	if skippedDocs > 0 || skippedChunks > 0 {
		os.Exit(1)
	}
}
