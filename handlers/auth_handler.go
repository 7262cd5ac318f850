package handlers

import (
	"net/http"

	"tabletalk-server/config"
	"tabletalk-server/middleware"

	"tabletalk-server/auth"

	"github.com/gin-gonic/gin"
)

// IssueTokenHandler signs a session token for an already-authenticated
// identity payload and sets it as the session cookie.
func IssueTokenHandler(cfg config.AuthConfig, env string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		}
		if err := c.ShouldBindJSON(&user); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid identity payload"})
			return
		}

		token, err := auth.Sign(user.Email, user.Name, cfg.Secret, cfg.TokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		middleware.SetAuthCookie(c, token, cfg.TokenTTL, env)
		c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
	}
}

func LogoutHandler(env string) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.ClearAuthCookie(c, env)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
