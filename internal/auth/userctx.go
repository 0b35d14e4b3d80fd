package auth

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// OwnerHeader identifies the agency user. There is no password layer;
	// first contact provisions the account.
	OwnerHeader = "X-Owner-Email"

	CtxOwnerEmail = "owner_email"
	CtxOwnerDBID  = "owner_db_id"
)

type UserStore interface {
	EnsureByEmail(ctx context.Context, email string) (string, error)
}

// WithOwner gates owner routes on the email header and resolves it to a
// database user id for downstream handlers.
func WithOwner(store UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.TrimSpace(strings.ToLower(c.GetHeader(OwnerHeader)))
		if email == "" || !strings.Contains(email, "@") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"ok":    false,
				"error": "missing or invalid " + OwnerHeader + " header",
			})
			return
		}

		id, err := store.EnsureByEmail(c.Request.Context(), email)
		if err != nil {
			log.Printf("[auth] ensure user failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"ok":    false,
				"error": "could not resolve user",
			})
			return
		}

		c.Set(CtxOwnerEmail, email)
		c.Set(CtxOwnerDBID, id)
		c.Next()
	}
}

func OwnerDBID(c *gin.Context) string {
	return c.GetString(CtxOwnerDBID)
}

func OwnerEmail(c *gin.Context) string {
	return c.GetString(CtxOwnerEmail)
}
