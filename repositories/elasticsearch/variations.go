package elasticsearch

import (
	"context"
	"time"

	"importer/models"
	"importer/models/indexes"

	"github.com/google/uuid"
)

func (s *Store) SaveVariation(ctx context.Context, variation *indexes.Variation) (string, error) {
	if variation.Id == "" {
		variation.Id = uuid.NewString()
	}
	if variation.CreatedAt == "" {
		variation.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	ref, err := s.indexDocument(ctx, indexes.VariationsIndex, variation.Id, variation)
	if err != nil {
		return "", &models.StoreError{Op: "save variation " + variation.Name, Err: err}
	}
	s.logger.Infof("Saved variation %s as %s", variation.Name, ref)
	return ref, nil
}

func (s *Store) GetVariation(ctx context.Context, id string) (*indexes.Variation, error) {
	var variation indexes.Variation
	if err := s.getDocument(ctx, indexes.VariationsIndex, id, &variation); err != nil {
		return nil, &models.StoreError{Op: "get variation " + id, Err: err}
	}
	return &variation, nil
}
