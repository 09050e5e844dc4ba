package workflows

import (
	"net/http"
	"path/filepath"

	"importer/contexts"
	w "importer/workflows"

	"github.com/labstack/echo"
)

func WorkflowsGet(c echo.Context) error {
	return c.JSON(http.StatusOK, w.WORKFLOW_VARIATION_SCHEMA)
}

func WorkflowsServeFile(c echo.Context) error {
	// retrieve wdl from storage and send to client
	fileName := c.Param("file")
	if fileName == "" || filepath.Base(fileName) != fileName {
		return c.JSON(http.StatusBadRequest, "Invalid Request! Please only specify a filename; example : /workflows/vcf_attributes.wdl")
	}

	cfg := c.(*contexts.ImporterContext).Config
	return c.File(filepath.Join(cfg.Api.WorkflowsPath, fileName))
}
