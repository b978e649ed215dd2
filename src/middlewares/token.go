package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerScheme = "bearer"

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(ctx *gin.Context) (string, bool) {
	header := strings.TrimSpace(ctx.GetHeader("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
