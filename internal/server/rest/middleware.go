package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/streamvault/accountd/internal/server/auth"
)

const accountIDKey = "accountID"

// requireAccess extracts the access token from the Authorization header or
// the access_token cookie and stores the verified account id on the context.
func (s *Server) requireAccess(c *gin.Context) {
	var token string

	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimPrefix(header, "Bearer ")
	}
	if token == "" {
		token, _ = c.Cookie("access_token")
	}
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing access token"})
		return
	}

	accountID, err := s.issuer.Verify(token, auth.KindAccess)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
		return
	}

	c.Set(accountIDKey, accountID)
	c.Next()
}

func currentAccountID(c *gin.Context) string {
	return c.GetString(accountIDKey)
}
