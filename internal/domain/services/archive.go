package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/linkflow-ai/insights/internal/insights"
	"github.com/linkflow-ai/insights/internal/pkg/logger"
)

// ObjectStore persists archive objects.
type ObjectStore interface {
	Key(parts ...string) string
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type ExportSource interface {
	Export(ctx context.Context, integrationID string, rng insights.DateRange) (*insights.AutomationExport, error)
}

// ArchiveService writes automation export bundles to object storage.
type ArchiveService struct {
	exports ExportSource
	store   ObjectStore
}

func NewArchiveService(exports ExportSource, store ObjectStore) *ArchiveService {
	return &ArchiveService{exports: exports, store: store}
}

// Archive builds the export for the window and stores it as
// {prefix}/{integration}/{exportID}.json, returning the object key.
func (s *ArchiveService) Archive(ctx context.Context, integrationID, exportID string, rng insights.DateRange) (string, error) {
	export, err := s.exports.Export(ctx, integrationID, rng)
	if err != nil {
		return "", fmt.Errorf("build export: %w", err)
	}

	data, err := json.Marshal(export)
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}

	key := s.store.Key(integrationID, exportID+".json")
	etag, err := s.store.Put(ctx, key, "application/json", data)
	if err != nil {
		return "", err
	}

	logger.WithIntegrationID(integrationID).Info().
		Str("key", key).
		Str("etag", etag).
		Int("events", len(export.Events)).
		Msg("export archived")
	return key, nil
}
