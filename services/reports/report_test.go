package reports

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"importer/models"
	"importer/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verdictFixture(t *testing.T, dir string) *models.ValidationVerdict {
	reportPath := filepath.Join(dir, "variants.vcf.errors_summary.txt")
	require.NoError(t, os.WriteFile(reportPath, []byte(strings.Join([]string{
		"Reading from input file...",
		"Error: line 12: <b>REF</b> is empty",
		"Warning: line 20: no INFO",
	}, "\n")+"\n"), 0644))

	return &models.ValidationVerdict{
		IsValid:                     false,
		FileName:                    "variants.vcf",
		FormatVersion:               4.2,
		SampleCount:                 3,
		DeclaredContigs:             []string{"chr1", "chr2", "chrUn"},
		ContigSummary:               models.ContigReconciliationResult{KnownContigs: models.NewContigSet("chr1", "chr2"), UnknownContigs: []string{"chrUn"}},
		ExternalValidatorExitCode:   1,
		ExternalValidatorReportPath: reportPath,
		Findings:                    []string{"1 contigs are not part of the reference assembly"},
	}
}

func TestRender(t *testing.T) {
	builder := NewBuilder(utils.NewSilentLogger())

	t.Run("should show every finding of an invalid run", func(t *testing.T) {
		dir := t.TempDir()
		verdict := verdictFixture(t, dir)

		path, html, err := builder.Render(Input{
			Verdict:      verdict,
			ValidContigs: filepath.Join(dir, ValidContigsFileName),
		}, dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "report.html"), path)

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		require.NoError(t, err)

		assert.Equal(t, "variants.vcf", doc.Find("#filename").Text())
		assert.Equal(t, "Variation file is not valid", doc.Find("#verdict").Text())

		validator := doc.Find("#validator li")
		require.Equal(t, 2, validator.Length())
		assert.Equal(t, "Error: line 12: <b>REF</b> is empty", validator.First().Text())
		assert.Equal(t, 0, doc.Find("#validator b").Length())

		assert.Equal(t, "chrUn", doc.Find("#unknown-contigs li").Text())
		assert.Contains(t, doc.Find("#valid-contigs").Text(), ValidContigsFileName)
		assert.Equal(t, 0, doc.Find("#missing-contigs").Length())

		cells := doc.Find("#summary td")
		assert.Equal(t, "3", cells.Eq(0).Text())
		assert.Equal(t, "3", cells.Eq(1).Text())
		assert.Equal(t, "4.2", cells.Eq(2).Text())
		assert.Equal(t, "not available", cells.Eq(3).Text())
	})

	t.Run("should build a report document for a valid run", func(t *testing.T) {
		dir := t.TempDir()
		verdict := &models.ValidationVerdict{
			IsValid:               true,
			FileName:              "clean.vcf",
			FormatVersion:         4.1,
			SampleCount:           1,
			MissingContigMetadata: true,
		}

		report, err := builder.Build("variation_report_1", Input{
			ObjectName:   "poplar",
			Verdict:      verdict,
			VariationRef: "variations/abc/1",
			StatsFiles:   []string{"plink.frq"},
			ArchivePath:  filepath.Join(dir, "results.zip"),
			ArchiveLabel: "results",
		}, dir)
		require.NoError(t, err)

		assert.True(t, report.IsValid)
		assert.Equal(t, []string{"variations/abc/1"}, report.ObjectsCreated)
		assert.Equal(t, "Variation object poplar created", report.Message)
		require.Len(t, report.FileLinks, 1)
		assert.Equal(t, "results.zip", report.FileLinks[0].Name)

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(report.Html))
		require.NoError(t, err)
		assert.Equal(t, "Variation file is valid", doc.Find("#verdict").Text())
		assert.Equal(t, 1, doc.Find("#missing-contigs").Length())
		assert.Equal(t, 0, doc.Find("#validator").Length())
		assert.Equal(t, "available", doc.Find("#summary td").Eq(3).Text())
	})
}

func TestPackage(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"variants.vcf", "variants.vcf.gz", "report.html", ".DS_Store", "old.zip", "report.txt", "valid_contigs.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "stats"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stats", "plink.frq"), []byte("freq"), 0644))

	archivePath := filepath.Join(dir, "results.zip")
	added, err := Package(dir, archivePath)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"report.txt", "valid_contigs.txt", "stats/plink.frq"}, added)

	r, err := zip.OpenReader(archivePath)
	require.NoError(t, err)
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, added, names)
}
