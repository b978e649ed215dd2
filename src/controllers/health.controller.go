package controllers

import (
	"net/http"
	"os"
	"strings"

	"eventreg/src/lib"
	"eventreg/src/types"

	"github.com/gin-gonic/gin"
)

// Health reports liveness and which kind of Stripe key is configured. The
// key is read on every call, matching lib.GetStripeClient.
func Health(ctx *gin.Context) {
	key := strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY"))
	ctx.JSON(http.StatusOK, types.HealthResponse{
		OK: true,
		Stripe: types.StripeHealth{
			SecretKeyMode: lib.StripeKeyMode(key),
			HasSecretKey:  key != "",
		},
	})
}
