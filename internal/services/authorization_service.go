// internal/services/authorization_service.go
package services

import (
	"github.com/lojinha/loja-backend/internal/apperrors"
	"github.com/lojinha/loja-backend/internal/models"
)

// Actor is the authenticated caller as seen by the service layer, built
// from validated JWT claims.
type Actor struct {
	ID    uint
	Roles string
}

func (a Actor) HasRole(required ...models.Role) bool {
	return models.HasRole(a.Roles, required...)
}

func (a Actor) IsAdmin() bool {
	return a.HasRole(models.RoleAdmin)
}

// AuthorizationService decides whether a caller may act on a resource owned
// by some user. Every ownership-scoped operation calls it immediately after
// the existence lookup and before any mutation.
type AuthorizationService struct{}

func NewAuthorizationService() *AuthorizationService {
	return &AuthorizationService{}
}

// CanAccess reports whether the actor owns the resource or is an admin.
func (s *AuthorizationService) CanAccess(ownerID uint, actor Actor) bool {
	return ownerID == actor.ID || actor.IsAdmin()
}

// RequireAccess returns Forbidden when CanAccess fails. Forbidden is
// deliberately distinct from NotFound: the resource exists, the caller may
// not touch it.
func (s *AuthorizationService) RequireAccess(ownerID uint, actor Actor) error {
	if !s.CanAccess(ownerID, actor) {
		return apperrors.Forbidden("you do not have permission to access this resource")
	}
	return nil
}

// RequireRole checks static role membership without an ownership
// comparison, the coarser authorization mode used by e.g. category
// management.
func (s *AuthorizationService) RequireRole(actor Actor, required ...models.Role) error {
	if !actor.HasRole(required...) {
		return apperrors.Forbidden("you do not have the required role for this operation")
	}
	return nil
}
