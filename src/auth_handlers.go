package main

import (
	"eventreg/src/controllers"
	"eventreg/src/utils"

	"github.com/gin-gonic/gin"
)

func guestAuthRoutes(g *gin.RouterGroup, c *controllers.AuthController) *gin.RouterGroup {
	g.POST("/auth/login", func(ctx *gin.Context) {
		res, status, err := c.Login(ctx)
		utils.Respond(ctx, res, status, err)
	})
	return g
}

func authRoutes(g *gin.RouterGroup, c *controllers.AuthController) *gin.RouterGroup {
	g.GET("/auth/verify", func(ctx *gin.Context) {
		res, status, err := c.Verify(ctx)
		utils.Respond(ctx, res, status, err)
	})
	return g
}
