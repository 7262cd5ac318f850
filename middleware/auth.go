package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"tabletalk-server/auth"
	"tabletalk-server/database"
	"tabletalk-server/models"

	"github.com/gin-gonic/gin"
)

const (
	ctxClaims        = "claims"
	ctxVerifiedEmail = "verifiedEmail"
)

// UserFinder is the slice of the user store the admin guard needs.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// RequireAuth extracts the session token (cookie first, then bearer
// header), verifies it and stores the claims for the rest of the chain.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie("token")
		if err != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized access"})
			c.Abort()
			return
		}

		claims, err := auth.Parse(tokenString, secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized access"})
			c.Abort()
			return
		}

		c.Set(ctxClaims, claims)
		c.Next()
	}
}

// RequireVerifiedEmail binds the claims email into the request context.
// Runs after RequireAuth; an identity without an email is rejected.
func RequireVerifiedEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil || claims.Email == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden access"})
			c.Abort()
			return
		}

		c.Set(ctxVerifiedEmail, claims.Email)
		c.Next()
	}
}

// RequireAdmin looks the bound email up in the user store and rejects
// anyone without the admin role. Runs after RequireVerifiedEmail.
func RequireAdmin(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := VerifiedEmail(c)
		if email == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden access"})
			c.Abort()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := users.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, database.ErrUserNotFound) {
				c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: admin access only"})
				c.Abort()
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		if user.Role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: admin access only"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// Claims returns the verified claims set by RequireAuth, or nil.
func Claims(c *gin.Context) *auth.Claims {
	v, exists := c.Get(ctxClaims)
	if !exists {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

// VerifiedEmail returns the email bound by RequireVerifiedEmail.
func VerifiedEmail(c *gin.Context) string {
	v, exists := c.Get(ctxVerifiedEmail)
	if !exists {
		return ""
	}
	email, _ := v.(string)
	return email
}

// SetAuthCookie writes the session cookie. Cross-site deployments need
// Secure + SameSite=None; local development keeps Strict.
func SetAuthCookie(c *gin.Context, tokenString string, ttl time.Duration, env string) {
	maxAge := int(ttl.Seconds())

	secure := false
	sameSite := http.SameSiteStrictMode
	if env == "production" {
		secure = true
		sameSite = http.SameSiteNoneMode
	}

	c.SetSameSite(sameSite)
	c.SetCookie("token", tokenString, maxAge, "/", "", secure, true)
}

// ClearAuthCookie expires the session cookie immediately.
func ClearAuthCookie(c *gin.Context, env string) {
	secure := false
	sameSite := http.SameSiteStrictMode
	if env == "production" {
		secure = true
		sameSite = http.SameSiteNoneMode
	}

	c.SetSameSite(sameSite)
	c.SetCookie("token", "", -1, "/", "", secure, true)
}
