// Package tenant resolves the caller's business from the session and checks
// that a resource belongs to it. Every resource-scoped handler goes through
// Scope instead of reading tenant headers or claims on its own.
package tenant

import (
	"leadnest/platform/apperr"
	"leadnest/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RoleOwner and RoleMember are the roles a user holds within a business.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

const msgUnauthorized = "unauthorized"

// Scope is the tenant context of an authenticated request.
type Scope struct {
	UserID     uuid.UUID
	BusinessID uuid.UUID
	Slug       string
	Role       string
}

// FromIdentity builds a Scope. A session without a business is unauthorized.
func FromIdentity(id httpkit.Identity) (Scope, error) {
	if id == nil || !id.IsAuthenticated() {
		return Scope{}, apperr.Unauthorized(msgUnauthorized)
	}
	bid := id.BusinessID()
	if bid == nil || *bid == uuid.Nil {
		return Scope{}, apperr.Unauthorized(msgUnauthorized)
	}
	return Scope{
		UserID:     id.UserID(),
		BusinessID: *bid,
		Slug:       id.BusinessSlug(),
		Role:       id.Role(),
	}, nil
}

// Authorize fails with 403 when the resource belongs to another business.
func (s Scope) Authorize(resourceBusinessID uuid.UUID) error {
	if resourceBusinessID != s.BusinessID {
		return apperr.Forbidden("forbidden")
	}
	return nil
}

// RequireRole fails with 401 when the caller does not hold role.
func (s Scope) RequireRole(role string) error {
	if s.Role != role {
		return apperr.Unauthorized(msgUnauthorized)
	}
	return nil
}

// Required aborts requests whose session carries no business. With a
// non-nil members reader it also rejects callers whose membership was
// removed after the token was issued, and replaces the token role with the
// stored one.
func Required(members MembershipReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, err := FromIdentity(httpkit.GetIdentity(c))
		if err != nil {
			httpkit.HandleError(c, err)
			c.Abort()
			return
		}
		if members != nil {
			role, found, err := members.MemberRole(c.Request.Context(), scope.UserID, scope.BusinessID)
			if err != nil {
				httpkit.HandleError(c, apperr.Internal("tenant.membership", err))
				c.Abort()
				return
			}
			if !found {
				httpkit.HandleError(c, apperr.Unauthorized(msgUnauthorized))
				c.Abort()
				return
			}
			c.Set(httpkit.ContextRoleKey, role)
		}
		c.Next()
	}
}

// MustScope returns the request's Scope, writing the error response and
// returning false when there is none.
func MustScope(c *gin.Context) (Scope, bool) {
	scope, err := FromIdentity(httpkit.GetIdentity(c))
	if err != nil {
		httpkit.HandleError(c, err)
		c.Abort()
		return Scope{}, false
	}
	return scope, true
}
