package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"importer/models"
	"importer/models/ingest"
	"importer/repositories/sqlite"
	"importer/services"
	"importer/services/fetch"
	"importer/services/reports"
	"importer/services/stats"
	"importer/services/validation"
	"importer/services/validator"
	"importer/utils"

	"github.com/fatih/color"
	"github.com/labstack/gommon/log"
	cli "github.com/urfave/cli/v2"
)

type session struct {
	cfg     *models.Config
	store   *sqlite.Store
	service *services.ImportService
	logger  *log.Logger
}

func openSession(cCtx *cli.Context) (*session, error) {
	cfg, err := models.LoadConfig(cCtx.String("config"))
	if err != nil {
		return nil, cli.Exit(err, 2)
	}
	if cCtx.Bool("debug") {
		cfg.Debug = true
	}

	logger := utils.NewLogger("vcfimport", cfg.Debug)
	if !cfg.Debug {
		logger.SetLevel(log.WARN)
	}

	store, err := sqlite.Open(cCtx.String("db"), logger)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(cCtx.Context); err != nil {
		store.Close()
		return nil, err
	}

	return &session{cfg: cfg, store: store, logger: logger}, nil
}

// withPipeline wires an import service reading local files.
func (s *session) withPipeline(reportsDir string) *session {
	runner := utils.NewRunner()
	runner.OnLine = func(line string) { s.logger.Debug(line) }

	orchestrator := validation.NewOrchestrator(
		validator.NewSyntaxValidatorRunner(s.cfg.Validation.ValidatorBinary, s.cfg.Validation.LegacyValidator,
			s.cfg.Validation.SubprocessTimeout, runner, s.logger),
		s.cfg.Validation.MinimumVersion, s.logger)
	orchestrator.PopulationDescription = s.cfg.Validation.PopulationDescription

	var statsRunner *stats.StatisticsRunner
	if s.cfg.Validation.StatsEnabled {
		statsRunner = stats.NewStatisticsRunner(s.cfg.Validation.PlinkBinary, s.cfg.Validation.SubprocessTimeout, runner, s.logger)
	}

	if reportsDir != "" {
		s.cfg.Api.ReportsPath = reportsDir
	}
	s.cfg.Api.ScratchPath = filepath.Join(os.TempDir(), "vcfimport")

	s.service = services.NewImportService(s.cfg,
		fetch.NewStagingFetcher(string(filepath.Separator), s.logger),
		s.store, orchestrator, statsRunner, reports.NewBuilder(s.logger), s.logger)
	return s
}

func paramsFromFlags(cCtx *cli.Context) (ingest.ImportParams, error) {
	vcfPath, err := filepath.Abs(cCtx.String("vcf"))
	if err != nil {
		return ingest.ImportParams{}, err
	}
	attributesPath, err := filepath.Abs(cCtx.String("attributes"))
	if err != nil {
		return ingest.ImportParams{}, err
	}

	name := cCtx.String("name")
	if name == "" {
		base := filepath.Base(vcfPath)
		name = strings.TrimSuffix(strings.TrimSuffix(base, ".gz"), ".vcf")
	}

	return ingest.ImportParams{
		VariationFile:  vcfPath,
		AttributesFile: attributesPath,
		GenomeRef:      cCtx.String("genome-ref"),
		ObjectName:     name,
		PopulationDesc: cCtx.String("description"),
		StatsArguments: cCtx.String("stats-args"),
	}, nil
}

func validateAction(cCtx *cli.Context) error {
	s, err := openSession(cCtx)
	if err != nil {
		return err
	}
	defer s.store.Close()

	params, err := paramsFromFlags(cCtx)
	if err != nil {
		return err
	}

	verdict, err := s.withPipeline("").service.Validate(cCtx.Context, params)
	if err != nil {
		printStatus("✗", "Validation could not run: "+err.Error(), color.FgRed)
		return cli.Exit("", 2)
	}

	printVerdict(verdict)
	if !verdict.IsValid {
		return cli.Exit("", 1)
	}
	return nil
}

func importAction(cCtx *cli.Context) error {
	s, err := openSession(cCtx)
	if err != nil {
		return err
	}
	defer s.store.Close()

	params, err := paramsFromFlags(cCtx)
	if err != nil {
		return err
	}
	reportsDir, err := filepath.Abs(cCtx.String("reports"))
	if err != nil {
		return err
	}

	result, err := s.withPipeline(reportsDir).service.Import(cCtx.Context, params)
	if err != nil {
		printStatus("✗", "Import could not run: "+err.Error(), color.FgRed)
		return cli.Exit("", 2)
	}

	if result.IsValid {
		printStatus("✓", "Variation stored as "+result.VariationRef, color.FgGreen)
	} else {
		printStatus("✗", "Variation file is not valid, nothing stored", color.FgRed)
	}
	printStatus("•", "Report "+result.ReportName+" stored as "+result.ReportRef, color.FgCyan)
	printStatus("•", "Report files in "+filepath.Join(reportsDir, result.ReportName), color.FgCyan)

	if !result.IsValid {
		return cli.Exit("", 1)
	}
	return nil
}

func loadAssemblyAction(cCtx *cli.Context) error {
	if cCtx.NArg() != 1 {
		return cli.Exit("expected exactly one contigs file", 2)
	}

	s, err := openSession(cCtx)
	if err != nil {
		return err
	}
	defer s.store.Close()

	f, err := os.Open(cCtx.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	contigs, err := readContigList(f)
	if err != nil {
		return err
	}
	if len(contigs) == 0 {
		return cli.Exit("no contig names found in "+cCtx.Args().First(), 1)
	}

	genomeRef := cCtx.String("genome-ref")
	if err := s.store.PutAssembly(context.Background(), genomeRef, contigs); err != nil {
		return err
	}
	printStatus("✓", fmt.Sprintf("Registered %d contigs for %s", len(contigs), genomeRef), color.FgGreen)
	return nil
}

func printVerdict(verdict *models.ValidationVerdict) {
	if verdict.IsValid {
		printStatus("✓", verdict.FileName+" is valid", color.FgGreen)
	} else {
		printStatus("✗", verdict.FileName+" is not valid", color.FgRed)
	}

	fmt.Printf("  VCF version      %.1f\n", verdict.FormatVersion)
	fmt.Printf("  Samples          %d\n", verdict.SampleCount)
	fmt.Printf("  Contigs          %d declared, %d known\n",
		len(verdict.DeclaredContigs), len(verdict.ContigSummary.KnownContigList()))
	fmt.Printf("  Validator exit   %d\n", verdict.ExternalValidatorExitCode)

	for _, contig := range verdict.ContigSummary.UnknownContigs {
		printStatus("✗", "Unknown contig "+contig, color.FgRed)
	}
	for _, line := range verdict.ExternalValidatorErrors {
		printStatus("✗", line, color.FgRed)
	}
	for _, line := range verdict.ExternalValidatorWarnings {
		printStatus("⚠", line, color.FgYellow)
	}
	for _, finding := range verdict.Findings {
		printStatus("⚠", finding, color.FgYellow)
	}
}

func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}
