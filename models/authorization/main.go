package authorization

import (
	"fmt"

	c "importer/models/constants"
)

type Resource interface{}
type ResourceEverything struct {
	Everything bool `json:"everything"`
}

type Permission struct {
	Verb c.PermissionVerb
	Noun c.PermissionNoun
}

// String renders the permission the way the authorization service names it, e.g. "ingest:data".
func (p Permission) String() string {
	return fmt.Sprintf("%s:%s", p.Verb, p.Noun)
}
