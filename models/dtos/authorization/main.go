package authorization

import (
	"encoding/json"

	mauthz "importer/models/authorization"
)

type PermissionRequestDto struct {
	RequestedResource   mauthz.Resource
	RequiredPermissions []mauthz.Permission
}

func (p *PermissionRequestDto) MarshalJSON() ([]byte, error) {
	permissions := make([]string, 0, len(p.RequiredPermissions))
	for _, permission := range p.RequiredPermissions {
		permissions = append(permissions, permission.String())
	}

	// - structure the request body using snake case
	return json.Marshal(map[string]interface{}{
		"requested_resource":   p.RequestedResource,
		"required_permissions": permissions,
	})
}
