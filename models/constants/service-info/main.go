package serviceInfo

import "fmt"

type ServiceInfo string

var (
	SERVICE_NAME        ServiceInfo = "Variation Importer Service"
	SERVICE_WELCOME     ServiceInfo = "Welcome to the Variation Importer API!"
	SERVICE_DESCRIPTION ServiceInfo = "Validates VCF files with location attributes and registers variation records."
	SERVICE_CONTACT     ServiceInfo = "mailto:variation-importer@localhost"

	SERVICE_ARTIFACT    ServiceInfo = "variation-importer"
	SERVICE_VERSION     ServiceInfo = "0.1.0"
	SERVICE_TYPE_NO_VER ServiceInfo = ServiceInfo(fmt.Sprintf("org.importer:%s", SERVICE_ARTIFACT))
	SERVICE_ID          ServiceInfo = SERVICE_TYPE_NO_VER
	SERVICE_TYPE        ServiceInfo = ServiceInfo(fmt.Sprintf("%s:%s", SERVICE_TYPE_NO_VER, SERVICE_VERSION))
)
