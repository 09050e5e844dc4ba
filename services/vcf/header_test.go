package vcf

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"importer/models"
	"importer/utils"

	"github.com/biogo/hts/bgzf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const columnHeader = "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT"

func writeFixture(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeBgzfFixture(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := bgzf.NewWriter(f, 1)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return path
}

func header(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestParseHeader(t *testing.T) {
	parser := NewHeaderParser(utils.NewSilentLogger())

	t.Run("should extract version, contigs and samples", func(t *testing.T) {
		path := writeFixture(t, "sample.vcf", header(
			"##fileformat=VCFv4.2",
			"##source=test",
			"##contig=<ID=chr1,length=248956422>",
			"##contig=<ID=chr2,length=242193529,assembly=\"GRCh38, primary\">",
			"##contig=<ID=chr1,length=248956422>",
			columnHeader+"\ts1\ts2",
			"chr1\t100\t.\tA\tT\t50\tPASS\t.\tGT\t0/1\t1/1",
		))

		summary, err := parser.Parse(path)
		require.NoError(t, err)

		assert.Equal(t, "VCFv4.2", summary.FileFormat)
		assert.Equal(t, 4.2, summary.FormatVersion)
		assert.Equal(t, []string{"chr1", "chr2", "chr1"}, summary.DeclaredContigs)
		assert.Equal(t, []string{"s1", "s2"}, summary.SampleIds)
	})

	t.Run("should read samples from bgzf compressed files", func(t *testing.T) {
		path := writeBgzfFixture(t, "sample.vcf.gz", header(
			"##fileformat=VCFv4.3",
			"##contig=<ID=1>",
			columnHeader+"\tNA00001\tNA00002\tNA00003",
		))

		summary, err := parser.Parse(path)
		require.NoError(t, err)

		assert.Equal(t, 4.3, summary.FormatVersion)
		assert.Equal(t, []string{"1"}, summary.DeclaredContigs)
		assert.Equal(t, []string{"NA00001", "NA00002", "NA00003"}, summary.SampleIds)
	})

	t.Run("should skip blank lines and a utf-8 byte order mark", func(t *testing.T) {
		path := writeFixture(t, "bom.vcf", "\xef\xbb\xbf"+header(
			"",
			"##fileformat=VCFv4.1",
			"",
			"##contig=<ID=chrX>",
			columnHeader+"\ts1",
		))

		summary, err := parser.Parse(path)
		require.NoError(t, err)
		assert.Equal(t, 4.1, summary.FormatVersion)
		assert.Equal(t, []string{"chrX"}, summary.DeclaredContigs)
		assert.Equal(t, []string{"s1"}, summary.SampleIds)
	})

	t.Run("should report, not fail on, missing contig metadata", func(t *testing.T) {
		path := writeFixture(t, "nocontigs.vcf", header(
			"##fileformat=VCFv4.2",
			columnHeader+"\ts1",
		))

		summary, err := parser.Parse(path)
		require.NoError(t, err)
		assert.Empty(t, summary.DeclaredContigs)
	})

	t.Run("should return no samples for a sites-only file", func(t *testing.T) {
		path := writeFixture(t, "sites.vcf", header(
			"##fileformat=VCFv4.2",
			columnHeader,
		))

		summary, err := parser.Parse(path)
		require.NoError(t, err)
		assert.Empty(t, summary.SampleIds)
	})

	t.Run("should skip contig lines without an id", func(t *testing.T) {
		path := writeFixture(t, "badcontigs.vcf", header(
			"##fileformat=VCFv4.2",
			"##contig=<length=10>",
			"##contig=chr1",
			"##contig=<ID=chr2,length=20>",
			columnHeader+"\ts1",
		))

		summary, err := parser.Parse(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"chr2"}, summary.DeclaredContigs)
		assert.Equal(t, []string{"s1"}, summary.SampleIds)
	})

	t.Run("should fail with malformed header errors", func(t *testing.T) {
		cases := []struct {
			name    string
			content string
		}{
			{"missing fileformat", header("##contig=<ID=chr1>", columnHeader+"\ts1")},
			{"unreadable version", header("##fileformat=VCF", columnHeader+"\ts1")},
			{"empty file", ""},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				path := writeFixture(t, "bad.vcf", tc.content)

				summary, err := parser.Parse(path)
				assert.Nil(t, summary)

				var headerErr *models.MalformedHeaderError
				assert.True(t, errors.As(err, &headerErr), "got %v", err)
			})
		}
	})

	t.Run("should fail when the column header is missing", func(t *testing.T) {
		cases := map[string]string{
			"end of stream": header("##fileformat=VCFv4.2", "##contig=<ID=chr1>"),
			"record first":  header("##fileformat=VCFv4.2", "chr1\t100\t.\tA\tT\t50\tPASS\t.\tGT\t0/1"),
		}

		for name, content := range cases {
			t.Run(name, func(t *testing.T) {
				path := writeFixture(t, "nosamples.vcf", content)

				_, err := parser.Parse(path)

				var sampleErr *models.MissingSampleHeaderError
				assert.True(t, errors.As(err, &sampleErr), "got %v", err)
			})
		}
	})

	t.Run("should fail on invalid utf-8", func(t *testing.T) {
		path := writeFixture(t, "latin1.vcf", header(
			"##fileformat=VCFv4.2",
			"##contig=<ID=chr\xc3\x28>",
			columnHeader+"\ts1",
		))

		_, err := parser.Parse(path)

		var encodingErr *models.UnsupportedEncodingError
		assert.True(t, errors.As(err, &encodingErr), "got %v", err)
	})
}

func TestContigIdFromMetaLine(t *testing.T) {
	cases := []struct {
		line     string
		expected string
	}{
		{"##contig=<ID=chr1>", "chr1"},
		{"##contig=<ID=chr1,length=10>", "chr1"},
		{"##contig=<length=10,ID=chrM>", "chrM"},
		{`##contig=<ID="HLA-A*01:01:01:01",length=3503>`, "HLA-A*01:01:01:01"},
		{`##contig=<Description="a, b",ID=scaffold_7>`, "scaffold_7"},
	}

	for _, tc := range cases {
		id, err := contigIdFromMetaLine(tc.line)
		assert.NoError(t, err)
		assert.Equal(t, tc.expected, id)
	}
}
