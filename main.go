package main

import (
	"context"
	"net/http"
	"os"

	"importer/contexts"
	gam "importer/middleware"
	"importer/models"
	serviceInfo "importer/models/constants/service-info"
	serviceInfoMvc "importer/mvc/service-info"
	variationsMvc "importer/mvc/variations"
	workflowsMvc "importer/mvc/workflows"
	esRepo "importer/repositories/elasticsearch"
	"importer/services"
	"importer/services/fetch"
	"importer/services/reports"
	"importer/services/sanitation"
	"importer/services/stats"
	"importer/services/validation"
	"importer/services/validator"
	"importer/utils"

	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
)

func main() {
	cfg, err := models.LoadConfig(os.Getenv("IMPORTER_CONFIG_FILE"))
	if err != nil {
		utils.NewLogger("importer", false).Error(err)
		os.Exit(2)
	}

	logger := utils.NewLogger("importer", cfg.Debug)
	logger.Infof("Using : \n"+
		"\tDebug : %t \n"+
		"\tScratch Path : %s \n"+
		"\tStaging Path : %s \n"+
		"\tReports Path : %s \n"+
		"\tImport Concurrency : %d \n"+
		"\tMinimum VCF Version : %.1f \n"+
		"\tVCF Validator : %s (legacy: %s) \n"+
		"\tStatistics Enabled : %t \n"+
		"\tElasticsearch Url : %s \n"+
		"\tDRS Url : %s \n"+
		"\tAuthorization Enabled : %t \n"+
		"Running on Port : %s",
		cfg.Debug,
		cfg.Api.ScratchPath, cfg.Api.StagingPath, cfg.Api.ReportsPath,
		cfg.Api.ImportConcurrency,
		cfg.Validation.MinimumVersion,
		cfg.Validation.ValidatorBinary, cfg.Validation.LegacyValidator,
		cfg.Validation.StatsEnabled,
		cfg.Elasticsearch.Url,
		cfg.Drs.Url,
		cfg.AuthX.IsAuthorizationEnabled,
		cfg.Api.Port)

	// Service Connections:
	// -- Elasticsearch
	es, err := utils.CreateEsConnection(cfg, logger)
	if err != nil {
		logger.Fatal(err)
	}
	store := esRepo.NewStore(es, logger)
	if err := store.EnsureSchema(context.Background()); err != nil {
		logger.Fatal(err)
	}

	// -- Files
	var fetcher fetch.FileFetcher = fetch.NewStagingFetcher(cfg.Api.StagingPath, logger)
	if cfg.Drs.Url != "" {
		fetcher = fetch.NewDrsFetcher(cfg, nil, logger)
	}

	// -- Pipeline
	runner := utils.NewRunner()
	runner.OnLine = func(line string) { logger.Debug(line) }

	orchestrator := validation.NewOrchestrator(
		validator.NewSyntaxValidatorRunner(cfg.Validation.ValidatorBinary, cfg.Validation.LegacyValidator,
			cfg.Validation.SubprocessTimeout, runner, logger),
		cfg.Validation.MinimumVersion, logger)
	orchestrator.PopulationDescription = cfg.Validation.PopulationDescription

	var statsRunner *stats.StatisticsRunner
	if cfg.Validation.StatsEnabled {
		statsRunner = stats.NewStatisticsRunner(cfg.Validation.PlinkBinary, cfg.Validation.SubprocessTimeout, runner, logger)
	}

	iz := services.NewImportService(cfg, fetcher, store, orchestrator, statsRunner, reports.NewBuilder(logger), logger)
	iz.Init()

	az := services.NewAuthzService(cfg, logger)
	sanitation.NewSanitationService(cfg, logger)

	e := echo.New()
	e.Logger = logger
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
	}))

	e.Use(func(h echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &contexts.ImporterContext{
				Context:       c,
				Config:        cfg,
				Store:         store,
				ImportService: iz,
			}
			return h(cc)
		}
	})

	authorized := gam.MandateAuthorizationTokens(az)

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, serviceInfo.SERVICE_WELCOME)
	})
	e.GET("/service-info", serviceInfoMvc.GetServiceInfo)

	e.GET("/variations/validate", variationsMvc.ValidateVariation,
		gam.QueryDataEverythingPermissionAttribute,
		authorized,
		gam.MandateVariationFileAttribute,
		gam.MandateAttributesFileAttribute,
		gam.MandateGenomeRefAttribute)
	e.GET("/variations/import/run", variationsMvc.ImportVariation,
		gam.IngestDataEverythingPermissionAttribute,
		authorized,
		gam.MandateVariationFileAttribute,
		gam.MandateAttributesFileAttribute,
		gam.MandateGenomeRefAttribute)
	e.GET("/variations/import/requests", variationsMvc.GetImportRequests,
		gam.ViewDataEverythingPermissionAttribute,
		authorized)
	e.GET("/variations/reports/:name", variationsMvc.GetReport,
		gam.ViewDataEverythingPermissionAttribute,
		authorized)
	e.GET("/variations/:id", variationsMvc.GetVariation,
		gam.ViewDataEverythingPermissionAttribute,
		authorized)

	e.POST("/assemblies", variationsMvc.RegisterAssembly,
		gam.IngestDataEverythingPermissionAttribute,
		authorized,
		gam.MandateGenomeRefAttribute)

	e.GET("/workflows", workflowsMvc.WorkflowsGet)
	e.GET("/workflows/:file", workflowsMvc.WorkflowsServeFile)

	e.Logger.Fatal(e.Start(":" + cfg.Api.Port))
}
