package contexts

import (
	"importer/models"
	authzModels "importer/models/authorization"
	"importer/repositories"
	"importer/services"

	"github.com/labstack/echo"
)

type (
	// "Helper" Context to pass into routes that need
	// the store, the import service and other variables
	ImporterContext struct {
		echo.Context
		Config        *models.Config
		Store         repositories.Store
		ImportService *services.ImportService

		RequestedResource   authzModels.Resource
		RequiredPermissions []authzModels.Permission
	}
)
