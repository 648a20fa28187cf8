// internal/app/features/organizations/types.go
package organizations

import "github.com/dalemusser/tenanthub/internal/app/tenants"

// organizationRequest is the body of POST /org/create and PUT /org/update.
// On update, OrganizationName is the new name; the organization being
// changed is always the caller's own.
type organizationRequest struct {
	OrganizationName string `json:"organization_name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
}

type organizationResponse struct {
	OrganizationName string `json:"organization_name"`
	CollectionName   string `json:"collection_name"`
	AdminEmail       string `json:"admin_email"`
}

func toResponse(org tenants.Organization) organizationResponse {
	return organizationResponse{
		OrganizationName: org.Name,
		CollectionName:   org.CollectionName,
		AdminEmail:       org.AdminEmail,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}
