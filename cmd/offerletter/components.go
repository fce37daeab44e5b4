package main

import (
	"fmt"
	"log"
	"time"

	"offerletter/internal/chunker"
	"offerletter/internal/config"
	"offerletter/internal/domain"
	"offerletter/internal/embedding/hashing"
	"offerletter/internal/embedding/openai"
	"offerletter/internal/embedding/tfidf"
	"offerletter/internal/service"
	"offerletter/internal/vectorstore/memory"
	"offerletter/internal/vectorstore/qdrant"
)

// buildComponents turns the config into the pipeline's chunker and factories.
func buildComponents(cfg *config.AppConfig) (service.Components, error) {
	var comp service.Components

	switch cfg.Chunker.Type {
	case "window", "":
		ch, err := chunker.NewWindowChunker(cfg.Chunker.Size, cfg.Chunker.Overlap)
		if err != nil {
			return comp, err
		}
		comp.Chunker = ch
	default:
		return comp, fmt.Errorf("unknown chunker: %s", cfg.Chunker.Type)
	}

	switch cfg.Embedder.Type {
	case "hashing", "":
		dim := cfg.Embedder.Dimension
		comp.NewEmbedder = func() (domain.Embedder, error) { return hashing.NewEmbedder(dim), nil }
	case "tfidf":
		comp.NewEmbedder = func() (domain.Embedder, error) { return tfidf.NewEmbedder(), nil }
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return comp, fmt.Errorf("openai embedder config missing")
		}
		ocfg := openai.Config{
			BaseURL:    cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv:  cfg.Embedder.OpenAI.APIKeyEnv,
			Model:      cfg.Embedder.OpenAI.Model,
			Timeout:    time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Embedder.OpenAI.MaxRetries,
			Dimension:  cfg.Embedder.Dimension,
		}
		comp.NewEmbedder = func() (domain.Embedder, error) {
			client, err := openai.NewClient(ocfg)
			if err != nil {
				return nil, err
			}
			return client, nil
		}
	default:
		return comp, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}

	switch cfg.VectorStore.Type {
	case "memory", "":
		comp.NewStore = func() (domain.VectorStore, error) { return memory.NewStorage(), nil }
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			return comp, fmt.Errorf("qdrant config missing")
		}
		qcfg := qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		}
		comp.NewStore = func() (domain.VectorStore, error) { return qdrant.NewStorage(qcfg), nil }
	default:
		return comp, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	return comp, nil
}

// newService builds the offer service described by cfg.
func newService(cfg *config.AppConfig, logger *log.Logger) (*service.Service, error) {
	comp, err := buildComponents(cfg)
	if err != nil {
		return nil, err
	}
	return service.New(service.Sources{
		Roster:       cfg.Sources.Roster,
		LeavePolicy:  cfg.Sources.LeavePolicy,
		TravelPolicy: cfg.Sources.TravelPolicy,
	}, comp,
		service.WithTopK(cfg.Retrieval.TopK),
		service.WithLogger(logger),
	)
}
