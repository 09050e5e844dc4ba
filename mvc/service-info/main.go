package serviceInfo

import (
	"net/http"

	"importer/contexts"
	serviceInfo "importer/models/constants/service-info"

	"github.com/labstack/echo"
)

type (
	serviceType struct {
		Group    serviceInfo.ServiceInfo `json:"group"`
		Artifact serviceInfo.ServiceInfo `json:"artifact"`
		Version  serviceInfo.ServiceInfo `json:"version"`
	}

	platformInfo struct {
		DataService bool                    `json:"dataService"`
		ServiceKind serviceInfo.ServiceInfo `json:"serviceKind"`
		Ingestion   ingestionInfo           `json:"ingestion"`
	}

	ingestionInfo struct {
		MinimumVcfVersion float64 `json:"minimumVcfVersion"`
		Statistics        bool    `json:"statistics"`
		Workflows         string  `json:"workflows"`
	}

	ServiceInfoDto struct {
		Id          serviceInfo.ServiceInfo `json:"id"`
		Name        serviceInfo.ServiceInfo `json:"name"`
		Type        serviceType             `json:"type"`
		Description serviceInfo.ServiceInfo `json:"description"`
		ContactUrl  serviceInfo.ServiceInfo `json:"contactUrl"`
		Version     serviceInfo.ServiceInfo `json:"version"`
		Environment string                  `json:"environment"`
		Bento       platformInfo            `json:"bento"`
	}
)

// GA4GH service-info, see https://github.com/ga4gh-discovery/ga4gh-service-info
func GetServiceInfo(c echo.Context) error {
	info := ServiceInfoDto{
		Id:   serviceInfo.SERVICE_ID,
		Name: serviceInfo.SERVICE_NAME,
		Type: serviceType{
			Group:    serviceInfo.SERVICE_TYPE_NO_VER,
			Artifact: serviceInfo.SERVICE_ARTIFACT,
			Version:  serviceInfo.SERVICE_VERSION,
		},
		Description: serviceInfo.SERVICE_DESCRIPTION,
		ContactUrl:  serviceInfo.SERVICE_CONTACT,
		Version:     serviceInfo.SERVICE_VERSION,
		Environment: "prod",
		Bento: platformInfo{
			ServiceKind: serviceInfo.SERVICE_ARTIFACT,
			Ingestion:   ingestionInfo{Workflows: "/workflows"},
		},
	}

	// settings are only known when running behind the importer context
	if ic, ok := c.(*contexts.ImporterContext); ok && ic.Config != nil {
		if ic.Config.Debug {
			info.Environment = "dev"
		}
		info.Bento.Ingestion.MinimumVcfVersion = ic.Config.Validation.MinimumVersion
		info.Bento.Ingestion.Statistics = ic.Config.Validation.StatsEnabled
	}

	return c.JSON(http.StatusOK, info)
}
