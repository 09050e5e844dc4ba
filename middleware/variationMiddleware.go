package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo"
)

/*
Echo middleware to ensure a `vcf` HTTP query parameter naming the variation file was provided
*/
func MandateVariationFileAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return mandateQueryParam("vcf", next)
}

/*
Echo middleware to ensure an `attributes` HTTP query parameter naming the location attributes file was provided
*/
func MandateAttributesFileAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return mandateQueryParam("attributes", next)
}

/*
Echo middleware to ensure a `genomeRef` HTTP query parameter was provided
*/
func MandateGenomeRefAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return mandateQueryParam("genomeRef", next)
}

func mandateQueryParam(name string, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if len(strings.TrimSpace(c.QueryParam(name))) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Missing '"+name+"' query parameter!")
		}

		return next(c)
	}
}
