package middlewares

import (
	"net/http"

	"eventreg/src/types"
	"eventreg/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	ContextUsername = "username"
	ContextRole     = "role"
)

type SessionVerifier interface {
	Verify(token string) (*types.SessionInfo, error)
}

// AuthMiddleware requires a valid admin session token. Every rejection uses
// the same response so callers cannot tell why a token was refused.
func AuthMiddleware(verifier SessionVerifier) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, ok := BearerToken(ctx)
		if !ok {
			utils.AbortWithCode(ctx, http.StatusUnauthorized, types.CODE_UNAUTHORIZED, types.MESSAGE_UNAUTHORIZED)
			return
		}
		session, err := verifier.Verify(token)
		if err != nil {
			zerolog.Ctx(ctx.Request.Context()).Debug().Err(err).Msg("session token rejected")
			utils.AbortWithCode(ctx, http.StatusUnauthorized, types.CODE_UNAUTHORIZED, types.MESSAGE_UNAUTHORIZED)
			return
		}
		ctx.Set(ContextUsername, session.Username)
		ctx.Set(ContextRole, session.Role)
		ctx.Next()
	}
}
