package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/researchbot/researchbot/internal/adapters/driven/config/file"
	openaiembed "github.com/researchbot/researchbot/internal/adapters/driven/embedding/openai"
	"github.com/researchbot/researchbot/internal/adapters/driven/extractor/tika"
	openaillm "github.com/researchbot/researchbot/internal/adapters/driven/llm/openai"
	"github.com/researchbot/researchbot/internal/adapters/driven/processor"
	"github.com/researchbot/researchbot/internal/adapters/driven/storage/sqlite"
	"github.com/researchbot/researchbot/internal/adapters/driven/vector/chroma"
	"github.com/researchbot/researchbot/internal/adapters/driving/cli"
	"github.com/researchbot/researchbot/internal/connectors/filesystem"
	"github.com/researchbot/researchbot/internal/core/domain"
	"github.com/researchbot/researchbot/internal/core/ports/driven"
	"github.com/researchbot/researchbot/internal/core/services"
	"github.com/researchbot/researchbot/internal/logger"
	"github.com/researchbot/researchbot/internal/postprocessors/chunker"
)

// buildServices constructs the full adapter and service graph from
// configuration. The returned cleanup closes the catalog store.
func buildServices() (cli.Services, func(), error) {
	noop := func() {}

	cfg, err := file.NewConfigStore("")
	if err != nil {
		return cli.Services{}, noop, fmt.Errorf("loading config: %w", err)
	}

	uploadDir := cfg.GetString(file.KeyUploadDir)
	if uploadDir == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return cli.Services{}, noop, fmt.Errorf("resolving home directory: %w", homeErr)
		}
		uploadDir = filepath.Join(home, ".researchbot", "uploads")
	}

	store, err := sqlite.NewStore(cfg.GetString(file.KeyDataDir))
	if err != nil {
		return cli.Services{}, noop, fmt.Errorf("opening catalog: %w", err)
	}
	cleanup := func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warn("closing catalog: %v", closeErr)
		}
	}

	scanner := filesystem.NewScanner(uploadDir, cfg.GetStringSlice(file.KeyExtensions))

	apiKey := cfg.GetString(file.KeyAPIKey)
	mockMode := cfg.GetBool(file.KeyMockMode) || apiKey == ""

	var (
		proc   driven.DocumentProcessor
		lister driven.CollectionLister
	)
	if mockMode {
		logger.Debug("no API key or mock mode set, using mock processor")
		mock := processor.NewMock()
		proc, lister = mock, mock
	} else {
		vectors := chroma.NewClient(chroma.Config{
			BaseURL: cfg.GetString(file.KeyChromaURL),
		})
		extractor := tika.NewExtractor(tika.Config{
			BaseURL: cfg.GetString(file.KeyTikaURL),
		})
		embedder, embedErr := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  apiKey,
			BaseURL: cfg.GetString(file.KeyAPIBaseURL),
			Model:   cfg.GetString(file.KeyEmbeddingModel),
		})
		if embedErr != nil {
			cleanup()
			return cli.Services{}, noop, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, embedErr)
		}
		pipeline, pipeErr := processor.NewPipeline(extractor, chunker.New(), embedder, vectors)
		if pipeErr != nil {
			cleanup()
			return cli.Services{}, noop, fmt.Errorf("configuring pipeline: %w", pipeErr)
		}
		proc, lister = pipeline, vectors
	}

	var llm driven.LLMService
	if apiKey != "" {
		llmService, llmErr := openaillm.NewLLMService(openaillm.Config{
			APIKey:  apiKey,
			BaseURL: cfg.GetString(file.KeyAPIBaseURL),
			Model:   cfg.GetString(file.KeyLLMModel),
		})
		if llmErr != nil {
			cleanup()
			return cli.Services{}, noop, fmt.Errorf("configuring LLM: %w", llmErr)
		}
		llm = llmService
	}

	catalog := store.DocumentCatalog()
	queue := store.JobQueue()
	writer := store.ReconcileWriter()

	return cli.Services{
		Reconciler: services.NewReconcilerService(scanner, catalog, writer, lister),
		Worker:     services.NewWorkerService(catalog, queue, scanner, proc),
		Documents:  services.NewDocumentService(uploadDir, scanner, catalog, writer),
		Answerer:   services.NewChatService(catalog, proc, llm),
		Status:     services.NewStatusService(catalog, queue),
		Config:     cfg,
		UploadDir:  uploadDir,
	}, cleanup, nil
}
