package middlewares

import (
	"admitgate/src/types"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

// OperatorAuth accepts HS256 bearer tokens minted by the session service.
// It only validates them; this service never issues tokens.
func OperatorAuth(jwtKey []byte) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	return func(ctx *gin.Context) {
		bearerToken := ctx.Request.Header.Get("Authorization")
		reqToken, ok := strings.CutPrefix(bearerToken, "Bearer ")
		if !ok || strings.TrimSpace(reqToken) == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims := &types.Claims{}
		tkn, err := parser.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
			return jwtKey, nil
		})
		if err != nil {
			log.Printf("token error: %s\n", err.Error())
			if errors.Is(err, jwt.ErrTokenExpired) {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
				return
			}
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !tkn.Valid || (claims.Role != types.ROLE_ADMIN && claims.Role != types.ROLE_GATE) {
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		ctx.Set("username", claims.Username)
		ctx.Set("role", string(claims.Role))
		ctx.Set("venue", claims.Venue)
	}
}

// RequireRole must run after OperatorAuth.
func RequireRole(roles ...types.OperatorRole) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role := types.OperatorRole(ctx.GetString("role"))
		if !slices.Contains(roles, role) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
	}
}
