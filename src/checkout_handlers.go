package main

import (
	"eventreg/src/controllers"
	"eventreg/src/utils"

	"github.com/gin-gonic/gin"
)

func checkoutHandlers(g *gin.RouterGroup, c *controllers.CheckoutController) *gin.RouterGroup {
	g.
		POST("/checkout/start", func(ctx *gin.Context) {
			res, status, err := c.Start(ctx)
			if err != nil {
				utils.Fail(ctx, err)
				return
			}
			utils.SuccessWithMessage(ctx, status, res, "Registration created successfully")
		}).
		POST("/checkout/create-payment-intent", func(ctx *gin.Context) {
			res, status, err := c.CreatePaymentIntent(ctx)
			utils.Respond(ctx, res, status, err)
		}).
		POST("/checkout/link-payment-intent", func(ctx *gin.Context) {
			res, status, err := c.LinkPaymentIntent(ctx)
			utils.Respond(ctx, res, status, err)
		}).
		POST("/checkout/confirm", func(ctx *gin.Context) {
			res, status, err := c.Confirm(ctx)
			if err != nil {
				utils.Fail(ctx, err)
				return
			}
			utils.SuccessWithMessage(ctx, status, res, "Registration confirmed")
		})
	return g
}
