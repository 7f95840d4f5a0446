package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
}

// ActorRole is the role the caller acts under inside a business.
type ActorRole string

const (
	RoleOwner                ActorRole = "owner"
	RoleAccountant           ActorRole = "accountant"
	RoleAccountantSupervisor ActorRole = "accountant_supervisor"
	// RoleSystem is used by automated producers (invoice send, bill creation, receipt ingestion).
	RoleSystem ActorRole = "system"
)

// IsValid reports whether r is a known role.
func (r ActorRole) IsValid() bool {
	switch r {
	case RoleOwner, RoleAccountant, RoleAccountantSupervisor, RoleSystem:
		return true
	}
	return false
}

// RequestContext identifies who is calling and on behalf of which business.
// It is built once per request and passed explicitly to every core operation.
type RequestContext struct {
	TenantID string    // business id
	UserID   string    // acting user, or "system:<source>" for automated producers
	Role     ActorRole // role inside TenantID
}
