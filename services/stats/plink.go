package stats

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"importer/utils"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

// Result describes one allele frequency / Hardy-Weinberg run.
type Result struct {
	ExitCode     int
	OutputPrefix string
	Files        []string
	Diagnostics  utils.Diagnostics
}

// Succeeded reports whether plink finished cleanly and produced output.
func (r *Result) Succeeded() bool {
	return r != nil && r.ExitCode == 0 && len(r.Files) > 0
}

type StatisticsRunner struct {
	Binary  string
	Timeout time.Duration

	runner utils.CommandRunner
	logger *log.Logger
}

func NewStatisticsRunner(binary string, timeout time.Duration, runner utils.CommandRunner, logger *log.Logger) *StatisticsRunner {
	return &StatisticsRunner{
		Binary:  binary,
		Timeout: timeout,
		runner:  runner,
		logger:  logger,
	}
}

// ParseExtraArgs splits user supplied plink flags given as "--maf 0.05;--geno 0.1".
func ParseExtraArgs(value string) ([]string, error) {
	var args []string
	for _, group := range strings.Split(value, ";") {
		for _, arg := range strings.Fields(group) {
			if _, reserved := reservedFlags[arg]; reserved {
				return nil, fmt.Errorf("plink flag %s is set by the importer", arg)
			}
			args = append(args, arg)
		}
	}
	return args, nil
}

var reservedFlags = map[string]struct{}{"--vcf": {}, "--out": {}}

// Run computes allele frequencies and Hardy-Weinberg statistics for vcfPath. Every call
// writes under its own output prefix inside outputDir, so runs never overwrite each other.
// extraArgs go right after the input file, ahead of the statistics flags.
func (s *StatisticsRunner) Run(ctx context.Context, vcfPath string, outputDir string, extraArgs ...string) (*Result, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	if err := os.MkdirAll(outputDir, 0700); err != nil {
		return nil, err
	}

	prefix := filepath.Join(outputDir, "plink_"+uuid.NewString())
	s.logger.Infof("Running %s on %s with output prefix %s", s.Binary, vcfPath, prefix)

	args := append([]string{"--vcf", vcfPath}, extraArgs...)
	args = append(args, "--freq", "--hardy", "--allow-extra-chr", "--out", prefix)

	cmdResult, err := s.runner.Run(ctx, outputDir, s.Binary, args...)
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", s.Binary, err)
	}

	files, err := filepath.Glob(prefix + ".*")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	result := &Result{
		ExitCode:     cmdResult.ExitCode,
		OutputPrefix: prefix,
		Files:        files,
		Diagnostics:  cmdResult.Diagnostics,
	}
	if !result.Succeeded() {
		s.logger.Warnf("%s exited with %d and %d errors", s.Binary, result.ExitCode, len(result.Diagnostics.Errors))
	}
	return result, nil
}
