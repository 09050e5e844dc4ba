package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"importer/models"
	"importer/models/indexes"
	"importer/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "importer.db"), utils.NewSilentLogger())
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema(context.Background()))
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAssemblies(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	_, err := store.ContigsFor(ctx, "GRCh38")
	var lookupErr *models.AssemblyLookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.True(t, lookupErr.NotFound)

	require.NoError(t, store.PutAssembly(ctx, "GRCh38", []string{"chr1", "chr2"}))
	require.NoError(t, store.PutAssembly(ctx, "GRCh38", []string{"chr1", "chr2", "chrM"}))

	contigs, err := store.ContigsFor(ctx, "GRCh38")
	require.NoError(t, err)
	assert.Equal(t, models.NewContigSet("chr1", "chr2", "chrM"), contigs)
}

func TestVariationsAndReports(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	variation := &indexes.Variation{
		Name:          "poplar",
		Genome:        "Ptrichocarpa_v3",
		Population:    models.PopulationRecord{Description: "None Provided", Strains: []models.StrainInfo{{SourceId: "s1"}}},
		Contigs:       []string{"Chr01"},
		FormatVersion: 4.2,
		SampleIds:     []string{"s1"},
	}

	ref, err := store.SaveVariation(ctx, variation)
	require.NoError(t, err)
	assert.NotEmpty(t, variation.Id)
	assert.Equal(t, "variations/"+variation.Id+"/1", ref)

	ref, err = store.SaveVariation(ctx, variation)
	require.NoError(t, err)
	assert.Equal(t, "variations/"+variation.Id+"/2", ref)

	stored, err := store.GetVariation(ctx, variation.Id)
	require.NoError(t, err)
	assert.Equal(t, variation, stored)

	_, err = store.GetVariation(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrObjectNotFound)

	report := &indexes.Report{Name: "variation_report_1", Html: "<p>ok</p>", IsValid: true}
	ref, err = store.PublishReport(ctx, report)
	require.NoError(t, err)
	assert.Equal(t, "variation-reports/variation_report_1/1", ref)

	storedReport, err := store.GetReport(ctx, "variation_report_1")
	require.NoError(t, err)
	assert.Equal(t, report, storedReport)
}
