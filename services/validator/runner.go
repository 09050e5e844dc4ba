package validator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"importer/services/validation"
	"importer/utils"

	"github.com/labstack/gommon/log"
)

// oldest version the current vcf_validator understands; older files go to the legacy perl tool
const legacyVersionCutoff = 4.1

const legacyReportName = "vcf-validator.txt"

type SyntaxValidatorRunner struct {
	Binary       string
	LegacyBinary string
	Timeout      time.Duration

	runner utils.CommandRunner
	logger *log.Logger
}

func NewSyntaxValidatorRunner(binary string, legacyBinary string, timeout time.Duration, runner utils.CommandRunner, logger *log.Logger) *SyntaxValidatorRunner {
	return &SyntaxValidatorRunner{
		Binary:       binary,
		LegacyBinary: legacyBinary,
		Timeout:      timeout,
		runner:       runner,
		logger:       logger,
	}
}

func (v *SyntaxValidatorRunner) Run(ctx context.Context, vcfPath string, version float64, outputDir string) (*validation.SyntaxReport, error) {
	if v.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.Timeout)
		defer cancel()
	}

	if err := os.MkdirAll(outputDir, 0700); err != nil {
		return nil, err
	}

	if version < legacyVersionCutoff {
		return v.runLegacy(ctx, vcfPath, outputDir)
	}

	v.logger.Infof("Running %s on %s", v.Binary, vcfPath)
	result, err := v.runner.Run(ctx, outputDir, v.Binary, "-i", vcfPath, "-o", outputDir)
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", v.Binary, err)
	}

	reportPath, err := firstTextReport(outputDir)
	if err != nil {
		return nil, err
	}

	v.logger.Infof("%s exited with %d, report at %s", v.Binary, result.ExitCode, reportPath)
	return &validation.SyntaxReport{
		ExitCode:    result.ExitCode,
		ReportPath:  reportPath,
		Diagnostics: result.Diagnostics,
	}, nil
}

// runLegacy runs the old validator, which only prints to stdout; its output becomes the report.
func (v *SyntaxValidatorRunner) runLegacy(ctx context.Context, vcfPath string, outputDir string) (*validation.SyntaxReport, error) {
	v.logger.Infof("Running %s on %s", v.LegacyBinary, vcfPath)
	result, err := v.runner.Run(ctx, outputDir, v.LegacyBinary, vcfPath)
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", v.LegacyBinary, err)
	}

	reportPath := filepath.Join(outputDir, legacyReportName)
	if err := utils.WriteLines(reportPath, result.Lines); err != nil {
		return nil, err
	}

	return &validation.SyntaxReport{
		ExitCode:    result.ExitCode,
		ReportPath:  reportPath,
		Diagnostics: result.Diagnostics,
	}, nil
}

func firstTextReport(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no validator report written to %s", dir)
	}
	sort.Strings(matches)
	return matches[0], nil
}

var _ validation.ExternalSyntaxValidator = (*SyntaxValidatorRunner)(nil)
