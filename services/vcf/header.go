package vcf

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"importer/models"
	"importer/models/constants"
	vc "importer/models/constants/vcf"
	"importer/utils"

	"github.com/biogo/hts/bgzf"
	"github.com/labstack/gommon/log"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// a #CHROM line listing thousands of samples easily outgrows bufio's default token size
const maxHeaderLineBytes = 64 * 1000000

var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)\s*$`)

type HeaderParser struct {
	logger *log.Logger
}

func NewHeaderParser(logger *log.Logger) *HeaderParser {
	return &HeaderParser{logger: logger}
}

// Parse streams the header block of the VCF file at path. Only the meta lines and the
// #CHROM line are read; variant records are never touched.
func (p *HeaderParser) Parse(path string) (*models.VcfHeaderSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := p.openStream(path, f)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	summary, err := p.parseHeader(path, r)
	if err != nil {
		var encErr *models.UnsupportedEncodingError
		if !errors.As(err, &encErr) && errors.Is(err, encoding.ErrInvalidUTF8) {
			err = &models.UnsupportedEncodingError{Path: path, Err: err}
		}
		return nil, err
	}

	p.logger.Infof("VCF version: %.1f", summary.FormatVersion)
	p.logger.Infof("Number Genotypes in vcf: %d", len(summary.SampleIds))
	if len(summary.DeclaredContigs) == 0 {
		p.logger.Warnf("No contig data in %s header.", path)
	}

	return summary, nil
}

// openStream picks the decompression by file name suffix, then validates the character
// stream: a UTF-8 (or UTF-16 with BOM) byte order mark is honored and invalid UTF-8
// surfaces as encoding.ErrInvalidUTF8 from Read.
func (p *HeaderParser) openStream(path string, f *os.File) (io.ReadCloser, error) {
	var raw io.ReadCloser = io.NopCloser(f)

	if utils.HasAnySuffix(path, vc.CompressedSuffixes) {
		bgReader, err := bgzf.NewReader(f, 1)
		if err == nil {
			raw = bgReader
		} else {
			// not BGZF blocked; fall back to a plain gzip stream
			p.logger.Debugf("%s is not bgzf compressed (%v), trying gzip", path, err)
			if _, seekErr := f.Seek(0, io.SeekStart); seekErr != nil {
				return nil, seekErr
			}
			gr, gzErr := gzip.NewReader(f)
			if gzErr != nil {
				return nil, &models.UnsupportedEncodingError{Path: path, Err: gzErr}
			}
			raw = gr
		}
	}

	decoded := transform.NewReader(raw, transform.Chain(unicode.BOMOverride(transform.Nop), encoding.UTF8Validator))
	return &readCloser{Reader: decoded, closer: raw}, nil
}

type readCloser struct {
	io.Reader
	closer io.Closer
}

func (r *readCloser) Close() error { return r.closer.Close() }

func (p *HeaderParser) parseHeader(path string, r io.Reader) (*models.VcfHeaderSummary, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxHeaderLineBytes)

	summary := &models.VcfHeaderSummary{
		DeclaredContigs: []string{},
		SampleIds:       []string{},
	}

	lineNumber := 0
	sawFileFormat := false

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if !sawFileFormat {
			fileFormat, version, err := parseFileFormat(line)
			if err != nil {
				return nil, &models.MalformedHeaderError{Path: path, Line: lineNumber, Reason: err.Error()}
			}
			summary.FileFormat = fileFormat
			summary.FormatVersion = version
			sawFileFormat = true
			continue
		}

		if strings.HasPrefix(line, vc.ColumnHeaderLine) {
			summary.SampleIds = sampleIdsFromColumnHeader(line)
			return summary, nil
		}

		if !strings.HasPrefix(line, vc.MetaLinePrefix) {
			// the meta block ended without a column header line
			return nil, &models.MissingSampleHeaderError{Path: path}
		}

		key, _, _ := strings.Cut(line, "=")
		if key != vc.ContigKey {
			continue
		}

		contigId, err := contigIdFromMetaLine(line)
		if err != nil {
			p.logger.Warnf("Skipping line %d of %s: %v", lineNumber, path, err)
			continue
		}
		summary.DeclaredContigs = append(summary.DeclaredContigs, contigId)
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, encoding.ErrInvalidUTF8) {
			return nil, &models.UnsupportedEncodingError{Path: path, Err: err}
		}
		return nil, err
	}

	if !sawFileFormat {
		return nil, &models.MalformedHeaderError{Path: path, Line: lineNumber, Reason: "file is empty"}
	}
	return nil, &models.MissingSampleHeaderError{Path: path}
}

// parseFileFormat reads "##fileformat=VCFv<major>.<minor>".
func parseFileFormat(line string) (string, float64, error) {
	key, value, found := strings.Cut(line, "=")
	if !found || !strings.HasPrefix(key, vc.FileFormatKey) {
		return "", 0, fmt.Errorf("first line must declare %s, got %q", vc.FileFormatKey, line)
	}

	value = strings.TrimSpace(value)
	match := versionPattern.FindStringSubmatch(value)
	if match == nil {
		return "", 0, fmt.Errorf("no <major>.<minor> version in %q", value)
	}

	version, err := strconv.ParseFloat(match[1]+"."+match[2], 64)
	if err != nil {
		return "", 0, fmt.Errorf("unreadable version in %q: %w", value, err)
	}
	return value, version, nil
}

// contigIdFromMetaLine reads the ID entry out of "##contig=<ID=chr1,length=248956422,...>".
func contigIdFromMetaLine(line string) (string, error) {
	_, content, _ := strings.Cut(line, "=")
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "<") || !strings.HasSuffix(content, ">") {
		return "", fmt.Errorf("contig declaration is not a <key=value,...> list: %q", line)
	}

	fields := splitMetaFields(content[1 : len(content)-1])
	for _, field := range fields {
		k, v, found := strings.Cut(field, "=")
		if !found || !strings.EqualFold(strings.TrimSpace(k), vc.ContigIdField) {
			continue
		}
		id := strings.Trim(strings.TrimSpace(v), `"`)
		if id == "" {
			break
		}
		return id, nil
	}
	return "", fmt.Errorf("contig declaration has no %s: %q", vc.ContigIdField, line)
}

// splitMetaFields splits on commas that are not inside a quoted value.
func splitMetaFields(content string) []string {
	var (
		fields []string
		word   strings.Builder
		quote  rune
	)
	for _, letter := range content {
		switch {
		case letter == ',' && quote == 0:
			fields = append(fields, word.String())
			word.Reset()
			continue
		case letter == quote:
			quote = 0
		case quote == 0 && (letter == '"' || letter == '\''):
			quote = letter
		}
		word.WriteRune(letter)
	}
	return append(fields, word.String())
}

// sampleIdsFromColumnHeader returns every column after the fixed VCF columns.
func sampleIdsFromColumnHeader(line string) []string {
	columns := strings.Fields(line)
	if len(columns) <= len(constants.VcfHeaders) {
		return []string{}
	}
	return columns[len(constants.VcfHeaders):]
}
