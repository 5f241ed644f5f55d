package shared

import (
	"strings"

	"github.com/google/uuid"
)

// Role is the capability set an actor was authenticated with upstream
type Role string

const (
	RoleFarmer         Role = "FARMER"
	RoleBusiness       Role = "BUSINESS"
	RoleAdmin          Role = "ADMIN"
	RoleQualityControl Role = "QUALITY_CONTROL"
	RolePartner        Role = "PARTNER"
)

// IsValid checks if the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleFarmer, RoleBusiness, RoleAdmin, RoleQualityControl, RolePartner:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// CanApprove reports whether the role may approve or reject product listings
func (r Role) CanApprove() bool {
	return r == RoleAdmin || r == RoleQualityControl
}

// CanListProducts reports whether the role may put produce on the catalog
func (r Role) CanListProducts() bool {
	return r == RoleFarmer || r == RoleAdmin
}

// CanPlaceOrders reports whether the role may buy from the catalog
func (r Role) CanPlaceOrders() bool {
	return r == RoleBusiness
}

// ParseRole parses a role name case-insensitively
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", NewValidationError("Unknown role: " + s)
	}
	return r, nil
}

// Actor is the already-authenticated caller of a core operation
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// NewActor creates an actor, rejecting empty ids and unknown roles
func NewActor(id uuid.UUID, role Role) (Actor, error) {
	if id == uuid.Nil {
		return Actor{}, NewUnauthorizedError("Actor ID is required")
	}
	if !role.IsValid() {
		return Actor{}, NewUnauthorizedError("Actor role is required")
	}
	return Actor{ID: id, Role: role}, nil
}

// Validate checks that the actor carries an identity and a known role
func (a Actor) Validate() error {
	_, err := NewActor(a.ID, a.Role)
	return err
}
