package variations

import (
	"net/http"
	"path/filepath"
	"strings"

	"importer/contexts"
	"importer/models/dtos"
	"importer/models/dtos/errors"
	"importer/models/ingest"

	"github.com/labstack/echo"
)

func importParamsFromQuery(c echo.Context) ingest.ImportParams {
	params := ingest.ImportParams{
		VariationFile:  c.QueryParam("vcf"),
		AttributesFile: c.QueryParam("attributes"),
		GenomeRef:      c.QueryParam("genomeRef"),
		ObjectName:     c.QueryParam("objectName"),
		PopulationDesc: c.QueryParam("description"),
		StatsArguments: c.QueryParam("statsArgs"),
	}
	if params.ObjectName == "" {
		params.ObjectName = strings.TrimSuffix(filepath.Base(params.VariationFile), filepath.Ext(params.VariationFile))
	}
	return params
}

// ValidateVariation runs a synchronous validation. Completed runs answer 200 whether or
// not the file is valid; runs that could not complete answer with an error.
func ValidateVariation(c echo.Context) error {
	ic := c.(*contexts.ImporterContext)
	params := importParamsFromQuery(c)

	verdict, err := ic.ImportService.Validate(c.Request().Context(), params)
	if err != nil {
		errResponse := errors.FromRunError(err)
		return c.JSON(errResponse.Code, errResponse)
	}

	message := "Variation file is valid"
	if !verdict.IsValid {
		message = "Variation file is not valid"
	}
	return c.JSON(http.StatusOK, dtos.VerdictResponseDto{
		Status:         http.StatusOK,
		Message:        message,
		Verdict:        verdict,
		KnownContigs:   verdict.ContigSummary.KnownContigList(),
		UnknownContigs: verdict.ContigSummary.UnknownContigs,
	})
}

func ImportVariation(c echo.Context) error {
	ic := c.(*contexts.ImporterContext)
	params := importParamsFromQuery(c)

	request := ic.ImportService.Enqueue(params)
	return c.JSON(http.StatusAccepted, ingest.ImportResponseDTO{
		Id:       request.Id,
		Filename: params.VariationFile,
		State:    request.State,
		Message:  "Successfully queued..",
	})
}

func GetImportRequests(c echo.Context) error {
	ic := c.(*contexts.ImporterContext)
	return c.JSON(http.StatusOK, ic.ImportService.GetImportRequests())
}

func GetVariation(c echo.Context) error {
	ic := c.(*contexts.ImporterContext)

	variation, err := ic.Store.GetVariation(c.Request().Context(), c.Param("id"))
	if err != nil {
		errResponse := errors.FromRunError(err)
		return c.JSON(errResponse.Code, errResponse)
	}
	return c.JSON(http.StatusOK, variation)
}

// GetReport answers with the report document, or with its html when format=html.
func GetReport(c echo.Context) error {
	ic := c.(*contexts.ImporterContext)

	report, err := ic.Store.GetReport(c.Request().Context(), c.Param("name"))
	if err != nil {
		errResponse := errors.FromRunError(err)
		return c.JSON(errResponse.Code, errResponse)
	}

	if c.QueryParam("format") == "html" {
		return c.HTML(http.StatusOK, report.Html)
	}
	return c.JSON(http.StatusOK, report)
}

func RegisterAssembly(c echo.Context) error {
	ic := c.(*contexts.ImporterContext)
	genomeRef := c.QueryParam("genomeRef")

	var body dtos.AssemblyRegistrationDto
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest(err.Error()))
	}
	if len(body.Contigs) == 0 {
		return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest("an assembly needs at least one contig"))
	}

	if err := ic.Store.PutAssembly(c.Request().Context(), genomeRef, body.Contigs); err != nil {
		errResponse := errors.FromRunError(err)
		return c.JSON(errResponse.Code, errResponse)
	}
	return c.JSON(http.StatusCreated, dtos.AssemblyRegistrationResponseDto{
		GenomeRef:   genomeRef,
		ContigCount: len(body.Contigs),
	})
}
