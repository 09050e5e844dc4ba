package services

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"importer/models"
	"importer/models/constants"
	"importer/models/indexes"
	"importer/models/ingest"
	"importer/repositories"
	"importer/services/fetch"
	"importer/services/reports"
	"importer/services/stats"
	"importer/services/validation"
	"importer/utils"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

type (
	ImportService struct {
		Initialized         bool
		ImportRequestChan   chan ingest.ImportRequest
		ImportRequestMap    map[string]ingest.ImportRequest
		ImportRequestMapMux sync.RWMutex
		ImportSemaphore     *semaphore.Weighted

		cfg          *models.Config
		fetcher      fetch.FileFetcher
		store        repositories.Store
		orchestrator *validation.Orchestrator
		stats        *stats.StatisticsRunner
		reports      *reports.Builder
		logger       *log.Logger
	}

	// workArea is the private directory tree of one run.
	workArea struct {
		Id         string
		Root       string
		Output     string
		Variation  string
		Attributes string
	}
)

// NewImportService wires the pipeline. statsRunner may be nil when statistics are disabled.
func NewImportService(cfg *models.Config, fetcher fetch.FileFetcher, store repositories.Store,
	orchestrator *validation.Orchestrator, statsRunner *stats.StatisticsRunner,
	builder *reports.Builder, logger *log.Logger) *ImportService {

	concurrency := cfg.Api.ImportConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &ImportService{
		Initialized:       false,
		ImportRequestChan: make(chan ingest.ImportRequest),
		ImportRequestMap:  map[string]ingest.ImportRequest{},
		ImportSemaphore:   semaphore.NewWeighted(concurrency),
		cfg:               cfg,
		fetcher:           fetcher,
		store:             store,
		orchestrator:      orchestrator,
		stats:             statsRunner,
		reports:           builder,
		logger:            logger,
	}
}

func (s *ImportService) Init() {
	// safeguard to prevent multiple initilizations
	if s.Initialized {
		return
	}

	// listener for import request updates
	go func() {
		for request := range s.ImportRequestChan {
			if request.State == ingest.Queued {
				s.logger.Infof("Queueing a new variation import request for %s", request.Params.VariationFile)
			}

			request.UpdatedAt = time.Now().String()
			s.ImportRequestMapMux.Lock()
			s.ImportRequestMap[request.Id.String()] = request
			s.ImportRequestMapMux.Unlock()
		}
	}()

	s.Initialized = true
}

// Enqueue registers an import request and runs it in the background once a slot is free.
func (s *ImportService) Enqueue(params ingest.ImportParams) ingest.ImportRequest {
	now := time.Now().String()
	request := ingest.ImportRequest{
		Id:        uuid.New(),
		Params:    params,
		State:     ingest.Queued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.ImportRequestChan <- request

	go func(request ingest.ImportRequest) {
		ctx := context.Background()
		if err := s.ImportSemaphore.Acquire(ctx, 1); err != nil {
			request.State = ingest.Error
			request.Message = err.Error()
			s.ImportRequestChan <- request
			return
		}
		defer s.ImportSemaphore.Release(1)

		request.State = ingest.Running
		s.ImportRequestChan <- request

		result, err := s.Import(ctx, params)
		if err != nil {
			request.State = ingest.Error
			request.Message = err.Error()
			s.ImportRequestChan <- request
			return
		}

		request.State = ingest.Done
		request.Result = result
		if result.IsValid {
			request.Message = "Variation object created"
		} else {
			request.Message = "Variation file is not valid, see report " + result.ReportName
		}
		s.ImportRequestChan <- request
	}(request)

	return request
}

// GetImportRequests returns a snapshot of every known request, oldest first.
func (s *ImportService) GetImportRequests() []ingest.ImportRequest {
	s.ImportRequestMapMux.RLock()
	defer s.ImportRequestMapMux.RUnlock()

	requests := make([]ingest.ImportRequest, 0, len(s.ImportRequestMap))
	for _, request := range s.ImportRequestMap {
		requests = append(requests, request)
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt < requests[j].CreatedAt
	})
	return requests
}

func (s *ImportService) GetImportRequest(id string) (ingest.ImportRequest, bool) {
	s.ImportRequestMapMux.RLock()
	defer s.ImportRequestMapMux.RUnlock()

	request, ok := s.ImportRequestMap[id]
	return request, ok
}

// Validate fetches the inputs into a fresh work area and validates them, without
// persisting anything.
func (s *ImportService) Validate(ctx context.Context, params ingest.ImportParams) (*models.ValidationVerdict, error) {
	area, err := s.newWorkArea()
	if err != nil {
		return nil, err
	}
	defer s.release(area)

	fetched, _, err := s.validate(ctx, params, area)
	if err != nil {
		return nil, err
	}
	verdict := fetched.Verdict
	if !s.cfg.Api.KeepWorkDirs {
		// the work area is gone once this returns
		verdict.ExternalValidatorReportPath = ""
	}
	return verdict, nil
}

// Import runs the whole pipeline for one variation file: validation, statistics,
// the variation record (valid files only) and the report.
func (s *ImportService) Import(ctx context.Context, params ingest.ImportParams) (*ingest.ImportResult, error) {
	area, err := s.newWorkArea()
	if err != nil {
		return nil, err
	}
	defer s.release(area)

	fetched, reference, err := s.validate(ctx, params, area)
	if err != nil {
		return nil, err
	}
	verdict := fetched.Verdict

	input := reports.Input{
		ObjectName:   params.ObjectName,
		Verdict:      verdict,
		ArchiveLabel: params.ObjectName + " results",
	}

	if len(verdict.ContigSummary.UnknownContigs) > 0 {
		input.ValidContigs = filepath.Join(area.Output, reports.ValidContigsFileName)
		if err := utils.WriteLines(input.ValidContigs, reference.Sorted()); err != nil {
			return nil, err
		}
	}

	if s.stats != nil && verdict.IsValid {
		if statsResult, err := s.runStats(ctx, params, fetched.VariationPath, filepath.Join(area.Output, "stats")); err != nil {
			s.logger.Warnf("Statistics for %s failed: %v", verdict.FileName, err)
			input.StatsErrors = []string{err.Error()}
		} else {
			input.StatsFiles = statsResult.Files
			input.StatsErrors = statsResult.Diagnostics.Errors
		}
	}

	result := &ingest.ImportResult{
		IsValid:    verdict.IsValid,
		ReportName: "variation_report_" + area.Id,
	}

	if verdict.IsValid {
		variation := &indexes.Variation{
			Name:                   params.ObjectName,
			Genome:                 params.GenomeRef,
			Population:             *verdict.Population,
			Contigs:                verdict.DeclaredContigs,
			FormatVersion:          verdict.FormatVersion,
			SampleIds:              verdict.SampleIds,
			VariationFileReference: params.VariationFile,
			Comment:                params.PopulationDesc,
		}
		result.VariationRef, err = s.store.SaveVariation(ctx, variation)
		if err != nil {
			return nil, err
		}
		input.VariationRef = result.VariationRef
	}

	reportDir := filepath.Join(s.cfg.Api.ReportsPath, result.ReportName)
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return nil, err
	}
	input.ArchivePath = filepath.Join(reportDir, result.ReportName+".zip")
	if _, err := reports.Package(area.Output, input.ArchivePath); err != nil {
		return nil, err
	}

	report, err := s.reports.Build(result.ReportName, input, reportDir)
	if err != nil {
		return nil, err
	}
	result.ReportRef, err = s.store.PublishReport(ctx, report)
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Import of %s finished: valid=%t variation=%q report=%q",
		verdict.FileName, result.IsValid, result.VariationRef, result.ReportRef)
	return result, nil
}

func (s *ImportService) runStats(ctx context.Context, params ingest.ImportParams, vcfPath string, outputDir string) (*stats.Result, error) {
	extraArgs, err := stats.ParseExtraArgs(params.StatsArguments)
	if err != nil {
		return nil, err
	}
	return s.stats.Run(ctx, vcfPath, outputDir, extraArgs...)
}

type fetchedVerdict struct {
	Verdict       *models.ValidationVerdict
	VariationPath string
}

// validate fetches both files and the reference contigs concurrently, then runs the
// validation pipeline in area. Each file lands in its own input directory.
func (s *ImportService) validate(ctx context.Context, params ingest.ImportParams, area *workArea) (*fetchedVerdict, models.ContigSet, error) {
	var (
		vcfPath        string
		attributesPath string
		reference      models.ContigSet
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vcfPath, err = s.fetcher.Fetch(gctx, params.VariationFile, area.Variation)
		return err
	})
	g.Go(func() error {
		var err error
		attributesPath, err = s.fetcher.Fetch(gctx, params.AttributesFile, area.Attributes)
		return err
	})
	g.Go(func() error {
		var err error
		reference, err = s.store.ContigsFor(gctx, params.GenomeRef)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	orchestrator := s.orchestrator
	if params.PopulationDesc != "" {
		orchestrator = orchestrator.WithPopulationDescription(params.PopulationDesc)
	}

	verdict, err := orchestrator.Validate(ctx, vcfPath, attributesPath, reference, filepath.Join(area.Output, "validation"))
	if err != nil {
		return nil, nil, err
	}
	return &fetchedVerdict{Verdict: verdict, VariationPath: vcfPath}, reference, nil
}

func (s *ImportService) newWorkArea() (*workArea, error) {
	id := uuid.NewString()
	root := filepath.Join(s.cfg.Api.ScratchPath, constants.WorkDirPrefix+id)
	area := &workArea{
		Id:         id,
		Root:       root,
		Output:     filepath.Join(root, "output"),
		Variation:  filepath.Join(root, "input", "variation"),
		Attributes: filepath.Join(root, "input", "attributes"),
	}

	for _, dir := range []string{area.Variation, area.Attributes, area.Output} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, err
		}
	}
	s.logger.Debugf("Allocated work area %s", root)
	return area, nil
}

func (s *ImportService) release(area *workArea) {
	if s.cfg.Api.KeepWorkDirs {
		s.logger.Infof("Keeping work area %s", area.Root)
		return
	}
	if err := os.RemoveAll(area.Root); err != nil {
		s.logger.Warnf("Could not remove work area %s: %v", area.Root, err)
	}
}
