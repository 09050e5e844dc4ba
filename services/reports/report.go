package reports

import (
	"bufio"
	"bytes"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"importer/models"
	"importer/models/indexes"

	"github.com/labstack/gommon/log"
)

const ValidContigsFileName = "valid_contigs.txt"

// Input is everything a report shows about one import run.
type Input struct {
	ObjectName   string
	Verdict      *models.ValidationVerdict
	VariationRef string
	StatsFiles   []string
	StatsErrors  []string
	ValidContigs string
	ArchivePath  string
	ArchiveLabel string
}

type reportView struct {
	FileName              string
	IsValid               bool
	ValidatorLines        []string
	UnknownContigs        []string
	ValidContigsFile      string
	MissingContigMetadata bool
	Findings              []string
	SampleCount           int
	ContigCount           int
	FormatVersion         float64
	StatsAvailable        bool
	StatsErrors           []string
	VariationRef          string
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Variation import report: {{.FileName}}</title></head>
<body>
<h1 id="filename">{{.FileName}}</h1>
{{if .IsValid}}<h2 id="verdict" class="valid">Variation file is valid</h2>
{{else}}<h2 id="verdict" class="invalid">Variation file is not valid</h2>
{{end}}
{{- if .ValidatorLines}}
<h3>Validator report</h3>
<ul id="validator">
{{- range .ValidatorLines}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
{{- if .UnknownContigs}}
<h3>Contigs not found in the reference assembly</h3>
<ul id="unknown-contigs">
{{- range .UnknownContigs}}
<li>{{.}}</li>
{{- end}}
</ul>
<p id="valid-contigs">The contigs of the reference assembly are listed in {{.ValidContigsFile}}.</p>
{{- end}}
{{- if .MissingContigMetadata}}
<p id="missing-contigs">The VCF header declares no contigs; contig names could not be checked.</p>
{{- end}}
{{- if .Findings}}
<h3>Findings</h3>
<ul id="findings">
{{- range .Findings}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
<h3>Summary</h3>
<table id="summary">
<tr><th>Samples</th><td>{{.SampleCount}}</td></tr>
<tr><th>Contigs</th><td>{{.ContigCount}}</td></tr>
<tr><th>VCF version</th><td>{{printf "%.1f" .FormatVersion}}</td></tr>
<tr><th>Statistics</th><td>{{if .StatsAvailable}}available{{else}}not available{{end}}</td></tr>
{{- if .VariationRef}}
<tr><th>Variation object</th><td>{{.VariationRef}}</td></tr>
{{- end}}
</table>
{{- if .StatsErrors}}
<ul id="stats-errors">
{{- range .StatsErrors}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
</body>
</html>
`))

type Builder struct {
	logger *log.Logger
}

func NewBuilder(logger *log.Logger) *Builder {
	return &Builder{logger: logger}
}

// Render writes report.html into dir and returns its path and contents.
func (b *Builder) Render(input Input, dir string) (string, string, error) {
	verdict := input.Verdict

	lines, err := validatorReportLines(verdict.ExternalValidatorReportPath)
	if err != nil {
		b.logger.Warnf("Could not read validator report %s: %v", verdict.ExternalValidatorReportPath, err)
	}

	view := reportView{
		FileName:              verdict.FileName,
		IsValid:               verdict.IsValid,
		ValidatorLines:        lines,
		UnknownContigs:        verdict.ContigSummary.UnknownContigs,
		ValidContigsFile:      filepath.Base(input.ValidContigs),
		MissingContigMetadata: verdict.MissingContigMetadata,
		Findings:              verdict.Findings,
		SampleCount:           verdict.SampleCount,
		ContigCount:           len(verdict.DeclaredContigs),
		FormatVersion:         verdict.FormatVersion,
		StatsAvailable:        len(input.StatsFiles) > 0,
		StatsErrors:           input.StatsErrors,
		VariationRef:          input.VariationRef,
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return "", "", err
	}

	path := filepath.Join(dir, "report.html")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", "", err
	}
	return path, buf.String(), nil
}

// Build renders the report and wraps it into the persisted report document.
func (b *Builder) Build(name string, input Input, dir string) (*indexes.Report, error) {
	htmlPath, html, err := b.Render(input, dir)
	if err != nil {
		return nil, err
	}

	report := &indexes.Report{
		Name:           name,
		Message:        summaryMessage(input),
		ObjectsCreated: []string{},
		Html:           html,
		HtmlPath:       htmlPath,
		FileLinks:      []indexes.ReportFile{},
		VariationRef:   input.VariationRef,
		IsValid:        input.Verdict.IsValid,
	}
	if input.VariationRef != "" {
		report.ObjectsCreated = append(report.ObjectsCreated, input.VariationRef)
	}
	if input.ArchivePath != "" {
		report.FileLinks = append(report.FileLinks, indexes.ReportFile{
			Path:        input.ArchivePath,
			Name:        filepath.Base(input.ArchivePath),
			Label:       input.ArchiveLabel,
			Description: "Validation and statistics output",
		})
	}
	return report, nil
}

func summaryMessage(input Input) string {
	if input.Verdict.IsValid {
		return "Variation object " + input.ObjectName + " created"
	}
	return "Variation file " + input.Verdict.FileName + " is not valid; no variation object was created"
}

// validatorReportLines returns the report without its first line, which only names the input.
func validatorReportLines(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue
		}
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
