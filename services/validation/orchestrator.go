package validation

import (
	"context"
	"fmt"
	"path/filepath"

	"importer/models"
	"importer/services/contigs"
	"importer/services/population"
	"importer/services/vcf"
	"importer/utils"

	"github.com/labstack/gommon/log"
)

// SyntaxReport is what an external syntax validator leaves behind.
type SyntaxReport struct {
	ExitCode    int
	ReportPath  string
	Diagnostics utils.Diagnostics
}

// ExternalSyntaxValidator checks a VCF file line by line with a third-party tool,
// writing its report under outputDir.
type ExternalSyntaxValidator interface {
	Run(ctx context.Context, vcfPath string, version float64, outputDir string) (*SyntaxReport, error)
}

type Orchestrator struct {
	MinimumVersion        float64
	PopulationDescription string

	parser    *vcf.HeaderParser
	merger    *population.Merger
	validator ExternalSyntaxValidator
	logger    *log.Logger
}

func NewOrchestrator(validator ExternalSyntaxValidator, minimumVersion float64, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		MinimumVersion: minimumVersion,
		parser:         vcf.NewHeaderParser(logger),
		merger:         population.NewMerger(logger),
		validator:      validator,
		logger:         logger,
	}
}

// WithPopulationDescription returns a copy of o that gives built populations description.
func (o *Orchestrator) WithPopulationDescription(description string) *Orchestrator {
	copied := *o
	copied.PopulationDescription = description
	return &copied
}

// Validate runs header parsing, the version gate, external syntax validation, contig
// reconciliation and the population merge, in that order, for one VCF file.
//
// An error means the run could not complete and no verdict exists. Problems that still
// let the run complete (validator failures, unknown contigs, no contig metadata) are
// recorded on the returned verdict instead.
func (o *Orchestrator) Validate(ctx context.Context, vcfPath string, attributesPath string, reference models.ContigSet, workDir string) (*models.ValidationVerdict, error) {
	summary, err := o.parser.Parse(vcfPath)
	if err != nil {
		return nil, err
	}

	if summary.FormatVersion < o.MinimumVersion {
		o.logger.Warnf("%s declares version %.1f, below %.1f", vcfPath, summary.FormatVersion, o.MinimumVersion)
		return nil, &models.UnsupportedVersionError{Version: summary.FormatVersion, Minimum: o.MinimumVersion}
	}

	verdict := &models.ValidationVerdict{
		FileName:        filepath.Base(vcfPath),
		FormatVersion:   summary.FormatVersion,
		SampleCount:     len(summary.SampleIds),
		SampleIds:       summary.SampleIds,
		DeclaredContigs: summary.DeclaredContigs,
		Findings:        []string{},
	}

	report, err := o.validator.Run(ctx, vcfPath, summary.FormatVersion, workDir)
	if err != nil {
		return nil, err
	}
	verdict.ExternalValidatorExitCode = report.ExitCode
	verdict.ExternalValidatorReportPath = report.ReportPath
	verdict.ExternalValidatorErrors = nonNil(report.Diagnostics.Errors)
	verdict.ExternalValidatorWarnings = nonNil(report.Diagnostics.Warnings)
	if report.ExitCode != 0 {
		verdict.Findings = append(verdict.Findings,
			fmt.Sprintf("external validator exited with code %d (%d errors, %d warnings)",
				report.ExitCode, len(report.Diagnostics.Errors), len(report.Diagnostics.Warnings)))
	}

	verdict.ContigSummary = contigs.Reconcile(summary.DeclaredContigs, reference)
	if n := len(verdict.ContigSummary.UnknownContigs); n > 0 {
		verdict.Findings = append(verdict.Findings, fmt.Sprintf("%d contigs are not part of the reference assembly", n))
	}
	if len(summary.DeclaredContigs) == 0 {
		verdict.MissingContigMetadata = true
		verdict.Findings = append(verdict.Findings, "no contig metadata in the VCF header")
	}

	verdict.Population, err = o.merger.Merge(attributesPath, summary.SampleIds, o.PopulationDescription)
	if err != nil {
		return nil, err
	}

	verdict.IsValid = verdict.ExternalValidatorExitCode == 0 && len(verdict.ContigSummary.UnknownContigs) == 0

	o.logger.Infof("Validation of %s finished, valid: %t", verdict.FileName, verdict.IsValid)
	return verdict, nil
}

func nonNil(lines []string) []string {
	if lines == nil {
		return []string{}
	}
	return lines
}
