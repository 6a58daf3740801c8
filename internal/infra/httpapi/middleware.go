package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ctxUserID = "auth.user_id"
	ctxEmail  = "auth.email"
	ctxTier   = "auth.tier"
)

// Claims mirrors the tokens issued by the auth service: subject is the user
// id, tier feeds the priority heuristic.
type Claims struct {
	Email string `json:"email"`
	Tier  string `json:"tier,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuth validates the Bearer token and stashes the caller's identity on
// the request context.
func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{
				Success: false,
				Message: "missing or malformed authorization header",
			})
			return
		}

		claims := &Claims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})
		if err != nil || !parsed.Valid || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{
				Success: false,
				Message: "invalid token",
			})
			return
		}

		c.Set(ctxUserID, claims.Subject)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxTier, claims.Tier)
		c.Next()
	}
}

func authUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func authTier(c *gin.Context) string {
	return c.GetString(ctxTier)
}
