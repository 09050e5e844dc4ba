package middleware

import (
	"errors"
	"net/http"

	"importer/contexts"
	authzModels "importer/models/authorization"
	c "importer/models/constants"
	authzConstants "importer/models/constants/authorization"
	e "importer/models/dtos/errors"
	"importer/services"

	"github.com/labstack/echo"
)

func ViewDataEverythingPermissionAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ec echo.Context) error {
		ic := ec.(*contexts.ImporterContext)
		addResourceEverything(ic)
		addPermissions(ic, authzConstants.VIEW, authzConstants.DATA)
		return next(ic)
	}
}
func QueryDataEverythingPermissionAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ec echo.Context) error {
		ic := ec.(*contexts.ImporterContext)
		addResourceEverything(ic)
		addPermissions(ic, authzConstants.QUERY, authzConstants.DATA)
		return next(ic)
	}
}
func IngestDataEverythingPermissionAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ec echo.Context) error {
		ic := ec.(*contexts.ImporterContext)
		addResourceEverything(ic)
		addPermissions(ic, authzConstants.INGEST, authzConstants.DATA)
		return next(ic)
	}
}

// MandateAuthorizationTokens checks the permissions set by the attribute middlewares
// above against the authorization service. Routes without required permissions pass.
func MandateAuthorizationTokens(az *services.AuthzService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			ic := ec.(*contexts.ImporterContext)
			if !az.IsEnabled() || len(ic.RequiredPermissions) == 0 {
				return next(ic)
			}

			// check request headers
			authnToken, missingHeaderErr := az.FetchAuthorizationHeader(ic.Request().Header)
			if missingHeaderErr != nil {
				return ic.JSON(http.StatusForbidden, e.CreateSimpleForbidden(missingHeaderErr.Error()))
			}

			// check user permission
			accessErr := az.EnsureAccessPermitted(ic.Request().Context(), authnToken, ic.RequestedResource, ic.RequiredPermissions)
			if errors.Is(accessErr, services.ErrAccessDenied) {
				return ic.JSON(http.StatusUnauthorized, e.CreateSimpleUnauthorized(accessErr.Error()))
			}
			if accessErr != nil {
				return ic.JSON(http.StatusInternalServerError, e.CreateSimpleInternalServerError(accessErr.Error()))
			}

			// access granted!
			return next(ic)
		}
	}
}

// -- helper functions
func addResourceEverything(ic *contexts.ImporterContext) {
	ic.RequestedResource = authzModels.ResourceEverything{
		Everything: true,
	}
}
func addPermissions(ic *contexts.ImporterContext, verb c.PermissionVerb, noun c.PermissionNoun) {
	ic.RequiredPermissions = []authzModels.Permission{{
		Verb: verb,
		Noun: noun,
	}}
}
