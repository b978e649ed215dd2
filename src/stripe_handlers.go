package main

import (
	"eventreg/src/controllers"
	"eventreg/src/utils"

	"github.com/gin-gonic/gin"
)

const stripeWebhookPath = "/webhooks/stripe"

func stripeWebhookRoute(g *gin.RouterGroup, c *controllers.WebhookController) *gin.RouterGroup {
	g.POST(stripeWebhookPath, func(ctx *gin.Context) {
		res, status, err := c.Stripe(ctx)
		if err != nil {
			utils.Fail(ctx, err)
			return
		}
		ctx.JSON(status, res)
	})
	return g
}
