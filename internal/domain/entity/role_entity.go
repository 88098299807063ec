package entity

import "time"

// Role is a named permission grouping assigned to an actor.
// The set of variants is closed; names outside it are ignored by the authorization checks.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleQA      Role = "qa"
	RoleManager Role = "manager"
	RoleViewer  Role = "viewer"
	RoleAuditor Role = "auditor"
)

// AllRoles lists every declared variant in catalogue order.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleQA, RoleManager, RoleViewer, RoleAuditor}
}

// ParseRole matches name against the declared variants.
// Matching is case-sensitive and exact; no trimming or folding is applied.
func ParseRole(name string) (Role, bool) {
	switch Role(name) {
	case RoleAdmin, RoleQA, RoleManager, RoleViewer, RoleAuditor:
		return Role(name), true
	}
	return "", false
}

// CanReview reports whether membership in r alone grants change-control review.
// Every variant must be listed here; a new role lands in the default branch and is denied.
func (r Role) CanReview() bool {
	switch r {
	case RoleAdmin, RoleQA, RoleManager:
		return true
	case RoleViewer, RoleAuditor:
		return false
	default:
		return false
	}
}

// RoleMembership ties an actor to a role (many-to-many via user_roles).
type RoleMembership struct {
	ActorID   string
	Role      Role
	CreatedAt time.Time
}

// RoleSet holds the unique roles of one actor. Order is irrelevant.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from raw role names, dropping duplicates and unknown names.
func NewRoleSet(names []string) RoleSet {
	set := make(RoleSet, len(names))
	for _, n := range names {
		if r, ok := ParseRole(n); ok {
			set[r] = struct{}{}
		}
	}
	return set
}

func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Names returns the roles in catalogue order.
func (s RoleSet) Names() []string {
	out := make([]string, 0, len(s))
	for _, r := range AllRoles() {
		if s.Has(r) {
			out = append(out, string(r))
		}
	}
	return out
}

// ReviewPermission is derived per check and never stored.
type ReviewPermission struct {
	CanReview bool `json:"can_review"`
}

// CanReview = privileged OR (roles ∩ {admin, qa, manager} ≠ ∅).
func CanReview(privileged bool, roles RoleSet) bool {
	if privileged {
		return true
	}
	for r := range roles {
		if r.CanReview() {
			return true
		}
	}
	return false
}
