package middleware

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/madarame/studio-api/internal/auth"
)

// bearerUserID extracts and validates the Bearer token from the
// Authorization header, returning the user ID it carries.
func bearerUserID(c *gin.Context) (int64, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return 0, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}

	userID, err := auth.ValidateToken(parts[1])
	if err != nil {
		return 0, false
	}
	return userID, true
}

// AuthOptional attaches the requester's user ID to the context when a valid
// token is present, and lets anonymous requests through untouched. Checkout
// works for guests; the success view only attaches a profile when "userID"
// is set.
func AuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := bearerUserID(c); ok {
			c.Set("userID", userID)
		}
		c.Next()
	}
}

// AuthRequired rejects requests without a valid Bearer token.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := bearerUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing token"})
			c.Abort()
			return
		}
		c.Set("userID", userID)
		c.Next()
	}
}

// AdminRequired checks the requester's role against the users table.
// Must run after AuthRequired.
func AdminRequired(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDRaw, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		var role string
		err := db.QueryRow("SELECT role FROM users WHERE id = ?", userIDRaw.(int64)).Scan(&role)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Could not verify permissions"})
			c.Abort()
			return
		}

		if role != "administrator" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Administrator access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
