package httpkit

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity is the caller resolved by AuthRequired. TrashTrack accounts carry
// exactly one app role, but the roles slice keeps RequireRole generic.
type Identity struct {
	userID uuid.UUID
	roles  []string
}

func (i *Identity) UserID() uuid.UUID { return i.userID }

func (i *Identity) Roles() []string { return i.roles }

// Role returns the primary app role, or "" for anonymous callers.
func (i *Identity) Role() string {
	if len(i.roles) == 0 {
		return ""
	}
	return i.roles[0]
}

func (i *Identity) HasRole(role string) bool {
	for _, r := range i.roles {
		if r == role {
			return true
		}
	}
	return false
}

func (i *Identity) IsAuthenticated() bool { return i.userID != uuid.Nil }

// GetIdentity reads the caller from the gin context. Requests that did not
// pass AuthRequired yield an anonymous Identity.
func GetIdentity(c *gin.Context) *Identity {
	uid, ok := c.Get(ContextUserIDKey)
	if !ok {
		return &Identity{}
	}
	userID, ok := uid.(uuid.UUID)
	if !ok {
		return &Identity{}
	}

	roles := c.GetStringSlice(ContextRolesKey)
	return &Identity{userID: userID, roles: roles}
}

// MustGetIdentity aborts with 401 and returns nil for anonymous callers.
func MustGetIdentity(c *gin.Context) *Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		abortUnauthorized(c, "unauthorized")
		return nil
	}
	return id
}
