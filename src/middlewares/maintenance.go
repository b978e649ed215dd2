package middlewares

import (
	"net/http"
	"strings"

	"eventreg/src/types"
	"eventreg/src/utils"

	"github.com/gin-gonic/gin"
)

// MaintenanceMode rejects requests with 503 while enabled. Paths ending with
// one of the exempt suffixes are still served.
func MaintenanceMode(enabled bool, exempt ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !enabled || ctx.Request.Method == http.MethodOptions {
			ctx.Next()
			return
		}
		for _, path := range exempt {
			if strings.HasSuffix(ctx.Request.URL.Path, path) {
				ctx.Next()
				return
			}
		}
		utils.AbortWithCode(ctx, http.StatusServiceUnavailable, types.CODE_SERVICE_UNAVAILABLE, "Server is under maintenance")
	}
}
