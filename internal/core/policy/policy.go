// Package policy is the single authorization evaluator shared by every
// endpoint. Callers describe what an operation needs as a Requirement and
// ask Evaluate (or Enforce) whether the request principal satisfies it.
package policy

import (
	"github.com/lemon/task-api/internal/core/domain"
	"github.com/lemon/task-api/internal/pkg/metrics"
)

// Kind identifies the shape of a requirement.
type Kind string

const (
	KindAuthenticated Kind = "authenticated"
	KindRole          Kind = "role"
	KindSelfOrRole    Kind = "self_or_role"
)

// Denial reasons reported in Decision.Reason.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonRoleMismatch    = "role_mismatch"
	ReasonNotOwner        = "not_owner"
)

// Requirement is a capability an operation demands from the principal.
type Requirement struct {
	Kind    Kind
	Role    domain.Role
	OwnerID int64
}

// Authenticated is satisfied by any resolved principal.
func Authenticated() Requirement {
	return Requirement{Kind: KindAuthenticated}
}

// RequireRole is satisfied iff principal.Role == role.
func RequireRole(role domain.Role) Requirement {
	return Requirement{Kind: KindRole, Role: role}
}

// RequireSelfOrRole is satisfied iff principal.ID == ownerID or
// principal.Role == role.
func RequireSelfOrRole(ownerID int64, role domain.Role) Requirement {
	return Requirement{Kind: KindSelfOrRole, Role: role, OwnerID: ownerID}
}

// Decision is the outcome of an evaluation. Reason is empty when allowed.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// Evaluate checks req against p. A nil principal is always denied.
func Evaluate(p *domain.Principal, req Requirement) Decision {
	d := evaluate(p, req)
	result := "allow"
	if !d.Allowed {
		result = "deny"
	}
	metrics.AuthzDecisionsTotal.WithLabelValues(string(req.Kind), result).Inc()
	return d
}

func evaluate(p *domain.Principal, req Requirement) Decision {
	if p == nil {
		return deny(ReasonUnauthenticated)
	}

	switch req.Kind {
	case KindAuthenticated:
		return allow()
	case KindRole:
		if p.Role == req.Role {
			return allow()
		}
		return deny(ReasonRoleMismatch)
	case KindSelfOrRole:
		if p.ID == req.OwnerID || p.Role == req.Role {
			return allow()
		}
		return deny(ReasonNotOwner)
	}
	// Unknown requirement kinds fail closed.
	return deny(ReasonRoleMismatch)
}

// Enforce is Evaluate expressed as an error: domain.ErrUnauthenticated when
// there is no principal, domain.ErrForbidden for any other denial.
func Enforce(p *domain.Principal, req Requirement) error {
	d := Evaluate(p, req)
	switch {
	case d.Allowed:
		return nil
	case d.Reason == ReasonUnauthenticated:
		return domain.ErrUnauthenticated
	default:
		return domain.ErrForbidden
	}
}
