package main

import (
	"eventreg/src/controllers"
	"eventreg/src/utils"

	"github.com/gin-gonic/gin"
)

// registrationHandlers expects g to be behind middlewares.AuthMiddleware.
func registrationHandlers(g *gin.RouterGroup, c *controllers.RegistrationController) *gin.RouterGroup {
	g.
		GET("/registrations", func(ctx *gin.Context) {
			res, status, err := c.List(ctx)
			utils.Respond(ctx, res, status, err)
		}).
		GET("/registrations/:id", func(ctx *gin.Context) {
			res, status, err := c.Get(ctx)
			utils.Respond(ctx, res, status, err)
		}).
		POST("/registrations/check-in", func(ctx *gin.Context) {
			res, status, err := c.CheckIn(ctx)
			if err != nil {
				utils.Fail(ctx, err)
				return
			}
			message := "Registration unchecked"
			if res.CheckedIn {
				message = "Registration checked in"
			}
			utils.SuccessWithMessage(ctx, status, res, message)
		})
	return g
}
