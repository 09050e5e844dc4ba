package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"importer/models"
	"importer/models/ingest"
	"importer/repositories/sqlite"
	"importer/services/fetch"
	"importer/services/reports"
	"importer/services/stats"
	"importer/services/validation"
	"importer/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passingValidator struct{}

func (passingValidator) Run(ctx context.Context, vcfPath string, version float64, outputDir string) (*validation.SyntaxReport, error) {
	if err := os.MkdirAll(outputDir, 0700); err != nil {
		return nil, err
	}
	reportPath := filepath.Join(outputDir, "variants.vcf.errors_summary.txt")
	if err := os.WriteFile(reportPath, []byte("Reading from input file...\nAccording to the VCF specification, the input file is valid\n"), 0644); err != nil {
		return nil, err
	}
	return &validation.SyntaxReport{ReportPath: reportPath}, nil
}

type importFixture struct {
	service *ImportService
	store   *sqlite.Store
	cfg     *models.Config
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()
	logger := utils.NewSilentLogger()
	root := t.TempDir()

	cfg := &models.Config{}
	cfg.Api.ScratchPath = filepath.Join(root, "scratch")
	cfg.Api.StagingPath = filepath.Join(root, "staging")
	cfg.Api.ReportsPath = filepath.Join(root, "reports")
	cfg.Api.ImportConcurrency = 2

	require.NoError(t, os.MkdirAll(cfg.Api.StagingPath, 0700))
	writeStaged(t, cfg, "variants.vcf",
		"##fileformat=VCFv4.2",
		"##contig=<ID=chr1>",
		"##contig=<ID=chr2>",
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\ts1\ts2",
		"chr1\t10\t.\tA\tG\t30\tPASS\t.\tGT\t0/1\t0/0")
	writeStaged(t, cfg, "attributes.tsv",
		"id\tlatitude\tlongitude",
		"s1\t45.5\t-73.6",
		"s2\t43.7\t-79.4")

	store, err := sqlite.Open(filepath.Join(root, "importer.db"), logger)
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema(context.Background()))
	t.Cleanup(func() { store.Close() })

	service := NewImportService(cfg,
		fetch.NewStagingFetcher(cfg.Api.StagingPath, logger),
		store,
		validation.NewOrchestrator(passingValidator{}, 4.1, logger),
		nil,
		reports.NewBuilder(logger),
		logger)
	service.Init()

	return &importFixture{service: service, store: store, cfg: cfg}
}

func writeStaged(t *testing.T, cfg *models.Config, name string, lines ...string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Api.StagingPath, name), []byte(strings.Join(lines, "\n")+"\n"), 0644))
}

func scratchEntries(t *testing.T, cfg *models.Config) []os.DirEntry {
	entries, err := os.ReadDir(cfg.Api.ScratchPath)
	require.NoError(t, err)
	return entries
}

var importParams = ingest.ImportParams{
	VariationFile:  "variants.vcf",
	AttributesFile: "attributes.tsv",
	GenomeRef:      "GRCh38",
	ObjectName:     "poplar_variation",
}

func TestImport(t *testing.T) {
	ctx := context.Background()

	t.Run("should save the variation and publish a report for valid files", func(t *testing.T) {
		fx := newImportFixture(t)
		require.NoError(t, fx.store.PutAssembly(ctx, "GRCh38", []string{"chr1", "chr2", "chrM"}))

		result, err := fx.service.Import(ctx, importParams)
		require.NoError(t, err)

		assert.True(t, result.IsValid)
		require.NotEmpty(t, result.VariationRef)
		assert.Equal(t, "variation-reports/"+result.ReportName+"/1", result.ReportRef)

		parts := strings.Split(result.VariationRef, "/")
		require.Len(t, parts, 3)
		variation, err := fx.store.GetVariation(ctx, parts[1])
		require.NoError(t, err)
		assert.Equal(t, "GRCh38", variation.Genome)
		assert.Equal(t, []string{"chr1", "chr2"}, variation.Contigs)
		assert.Equal(t, []string{"s1", "s2"}, variation.SampleIds)
		assert.Len(t, variation.Population.Strains, 2)
		assert.Equal(t, "variants.vcf", variation.VariationFileReference)

		report, err := fx.store.GetReport(ctx, result.ReportName)
		require.NoError(t, err)
		assert.True(t, report.IsValid)
		require.Len(t, report.FileLinks, 1)
		assert.FileExists(t, report.FileLinks[0].Path)
		assert.FileExists(t, report.HtmlPath)

		assert.Empty(t, scratchEntries(t, fx.cfg))
	})

	t.Run("should only publish a report for files with unknown contigs", func(t *testing.T) {
		fx := newImportFixture(t)
		require.NoError(t, fx.store.PutAssembly(ctx, "GRCh38", []string{"chr1"}))
		fx.cfg.Api.KeepWorkDirs = true

		result, err := fx.service.Import(ctx, importParams)
		require.NoError(t, err)

		assert.False(t, result.IsValid)
		assert.Empty(t, result.VariationRef)

		report, err := fx.store.GetReport(ctx, result.ReportName)
		require.NoError(t, err)
		assert.False(t, report.IsValid)
		assert.Empty(t, report.ObjectsCreated)
		assert.Contains(t, report.Html, "chr2")

		entries := scratchEntries(t, fx.cfg)
		require.Len(t, entries, 1)
		validContigs, err := os.ReadFile(filepath.Join(fx.cfg.Api.ScratchPath, entries[0].Name(), "output", reports.ValidContigsFileName))
		require.NoError(t, err)
		assert.Equal(t, "chr1\n", string(validContigs))
	})

	t.Run("should fail without a registered assembly", func(t *testing.T) {
		fx := newImportFixture(t)

		_, err := fx.service.Import(ctx, importParams)

		var lookupErr *models.AssemblyLookupError
		require.True(t, errors.As(err, &lookupErr))
		assert.True(t, lookupErr.NotFound)
		assert.Empty(t, scratchEntries(t, fx.cfg))
	})

	t.Run("should fail on missing staged files", func(t *testing.T) {
		fx := newImportFixture(t)
		require.NoError(t, fx.store.PutAssembly(ctx, "GRCh38", []string{"chr1", "chr2"}))

		missing := importParams
		missing.AttributesFile = "nope.tsv"
		_, err := fx.service.Import(ctx, missing)

		var fetchErr *models.FetchError
		assert.True(t, errors.As(err, &fetchErr))
	})

	t.Run("should fetch files sharing a base name side by side", func(t *testing.T) {
		fx := newImportFixture(t)
		require.NoError(t, fx.store.PutAssembly(ctx, "GRCh38", []string{"chr1", "chr2"}))
		for _, dir := range []string{"calls", "sites"} {
			require.NoError(t, os.MkdirAll(filepath.Join(fx.cfg.Api.StagingPath, dir), 0700))
		}
		vcf, err := os.ReadFile(filepath.Join(fx.cfg.Api.StagingPath, "variants.vcf"))
		require.NoError(t, err)
		attributes, err := os.ReadFile(filepath.Join(fx.cfg.Api.StagingPath, "attributes.tsv"))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(fx.cfg.Api.StagingPath, "calls", "poplar"), vcf, 0644))
		require.NoError(t, os.WriteFile(filepath.Join(fx.cfg.Api.StagingPath, "sites", "poplar"), attributes, 0644))

		sameName := importParams
		sameName.VariationFile = "calls/poplar"
		sameName.AttributesFile = "sites/poplar"
		result, err := fx.service.Import(ctx, sameName)
		require.NoError(t, err)

		assert.True(t, result.IsValid)
	})

	t.Run("should hand extra flags to the statistics run", func(t *testing.T) {
		fx := newImportFixture(t)
		require.NoError(t, fx.store.PutAssembly(ctx, "GRCh38", []string{"chr1", "chr2"}))

		argsFile := filepath.Join(t.TempDir(), "args.txt")
		plink := filepath.Join(t.TempDir(), "plink")
		require.NoError(t, os.WriteFile(plink, []byte(`#!/bin/sh
echo "$@" > "`+argsFile+`"
while [ $# -gt 0 ]; do
  if [ "$1" = "--out" ]; then out="$2"; fi
  shift
done
touch "$out.frq" "$out.hwe"
`), 0755))
		fx.service.stats = stats.NewStatisticsRunner(plink, time.Minute, utils.NewRunner(), utils.NewSilentLogger())

		withArgs := importParams
		withArgs.StatsArguments = "--maf 0.05;--geno 0.1"
		result, err := fx.service.Import(ctx, withArgs)
		require.NoError(t, err)
		require.True(t, result.IsValid)

		recorded, err := os.ReadFile(argsFile)
		require.NoError(t, err)
		args := strings.Fields(string(recorded))
		require.GreaterOrEqual(t, len(args), 7)
		assert.Equal(t, "--vcf", args[0])
		assert.Equal(t, filepath.Join("variation", "variants.vcf"), filepath.Join(filepath.Base(filepath.Dir(args[1])), filepath.Base(args[1])))
		assert.Equal(t, []string{"--maf", "0.05", "--geno", "0.1", "--freq"}, args[2:7])
	})

	t.Run("should not point at validator output that was already removed", func(t *testing.T) {
		fx := newImportFixture(t)
		require.NoError(t, fx.store.PutAssembly(ctx, "GRCh38", []string{"chr1", "chr2"}))

		verdict, err := fx.service.Validate(ctx, importParams)
		require.NoError(t, err)
		assert.Empty(t, verdict.ExternalValidatorReportPath)

		fx.cfg.Api.KeepWorkDirs = true
		verdict, err = fx.service.Validate(ctx, importParams)
		require.NoError(t, err)
		assert.FileExists(t, verdict.ExternalValidatorReportPath)
	})

	t.Run("should validate without persisting anything", func(t *testing.T) {
		fx := newImportFixture(t)
		require.NoError(t, fx.store.PutAssembly(ctx, "GRCh38", []string{"chr1"}))

		verdict, err := fx.service.Validate(ctx, importParams)
		require.NoError(t, err)

		assert.False(t, verdict.IsValid)
		assert.Equal(t, []string{"chr2"}, verdict.ContigSummary.UnknownContigs)
		assert.Empty(t, scratchEntries(t, fx.cfg))
	})
}

func TestEnqueue(t *testing.T) {
	fx := newImportFixture(t)
	require.NoError(t, fx.store.PutAssembly(context.Background(), "GRCh38", []string{"chr1", "chr2"}))

	request := fx.service.Enqueue(importParams)
	assert.Equal(t, ingest.Queued, request.State)

	assert.Eventually(t, func() bool {
		current, ok := fx.service.GetImportRequest(request.Id.String())
		return ok && current.State == ingest.Done
	}, 10*time.Second, 20*time.Millisecond)

	current, _ := fx.service.GetImportRequest(request.Id.String())
	require.NotNil(t, current.Result)
	assert.True(t, current.Result.IsValid)
	assert.Len(t, fx.service.GetImportRequests(), 1)
}
