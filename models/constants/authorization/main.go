package authorization

import c "importer/models/constants"

const (
	QUERY  c.PermissionVerb = "query"
	VIEW   c.PermissionVerb = "view"
	INGEST c.PermissionVerb = "ingest"
)

const (
	DATA c.PermissionNoun = "data"
)
