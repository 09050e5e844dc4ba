package elasticsearch

import (
	"context"
	"errors"
	"time"

	"importer/models"
	"importer/models/indexes"
)

func (s *Store) ContigsFor(ctx context.Context, genomeRef string) (models.ContigSet, error) {
	var assembly indexes.Assembly
	if err := s.getDocument(ctx, indexes.AssembliesIndex, genomeRef, &assembly); err != nil {
		return nil, &models.AssemblyLookupError{
			GenomeRef: genomeRef,
			NotFound:  errors.Is(err, models.ErrObjectNotFound),
			Err:       err,
		}
	}

	s.logger.Debugf("Assembly %s has %d contigs", genomeRef, len(assembly.Contigs))
	return models.NewContigSet(assembly.Contigs...), nil
}

func (s *Store) PutAssembly(ctx context.Context, genomeRef string, contigs []string) error {
	assembly := indexes.Assembly{
		GenomeRef: genomeRef,
		Contigs:   contigs,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := s.indexDocument(ctx, indexes.AssembliesIndex, genomeRef, assembly); err != nil {
		return &models.StoreError{Op: "put assembly " + genomeRef, Err: err}
	}
	s.logger.Infof("Registered assembly %s with %d contigs", genomeRef, len(contigs))
	return nil
}
