package repositories

import (
	"context"

	"importer/models"
	"importer/models/indexes"
)

// AssemblyContigProvider resolves a genome reference to its assembly's contig ids.
type AssemblyContigProvider interface {
	ContigsFor(ctx context.Context, genomeRef string) (models.ContigSet, error)
}

type AssemblyRegistry interface {
	AssemblyContigProvider
	PutAssembly(ctx context.Context, genomeRef string, contigs []string) error
}

// VariationStore persists variation records. SaveVariation returns the
// reference "<collection>/<id>/<version>" of the stored record.
type VariationStore interface {
	SaveVariation(ctx context.Context, variation *indexes.Variation) (string, error)
	GetVariation(ctx context.Context, id string) (*indexes.Variation, error)
}

type ReportPublisher interface {
	PublishReport(ctx context.Context, report *indexes.Report) (string, error)
	GetReport(ctx context.Context, name string) (*indexes.Report, error)
}

// Store is everything the importer persists, behind one backend.
type Store interface {
	AssemblyRegistry
	VariationStore
	ReportPublisher

	// EnsureSchema creates missing indices / tables.
	EnsureSchema(ctx context.Context) error
}
