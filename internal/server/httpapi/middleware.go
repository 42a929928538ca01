package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/skydrive/internal/common"
	"github.com/dmitrijs2005/skydrive/internal/server/auth"
)

const ownerIDKey = "ownerID"

// bearerAuth validates the Authorization header against the identity
// provider's shared secret and stores the owner identifier on the context.
// The server never issues tokens; it only verifies them.
func (a *API) bearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		ownerID, err := auth.OwnerIDFromToken(strings.TrimPrefix(header, common.BearerPrefix), a.secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ownerIDKey, ownerID)
		c.Next()
	}
}

// requestOwner returns the authenticated owner and enforces that any
// owner supplied in the request body or query matches it.
func requestOwner(c *gin.Context, claimed string) (string, bool) {
	ownerID := c.MustGet(ownerIDKey).(string)
	if claimed != "" && claimed != ownerID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "owner mismatch"})
		return "", false
	}
	return ownerID, true
}
