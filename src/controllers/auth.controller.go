package controllers

import (
	"net/http"

	"eventreg/src/middlewares"
	"eventreg/src/services"
	"eventreg/src/types"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

func (c *AuthController) Login(ctx *gin.Context) (*types.LoginResponse, int, error) {
	var body types.LoginRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, types.BindingError(err)
	}
	token, err := c.auth.Login(body.Username, body.Password)
	if err != nil {
		return nil, types.HTTPStatus(err), err
	}
	return &types.LoginResponse{Token: token, Username: body.Username}, http.StatusOK, nil
}

// Verify reports the session established by middlewares.AuthMiddleware.
func (c *AuthController) Verify(ctx *gin.Context) (*types.SessionInfo, int, error) {
	username := ctx.GetString(middlewares.ContextUsername)
	if username == "" {
		return nil, http.StatusUnauthorized, types.ErrUnauthorized
	}
	return &types.SessionInfo{Username: username, Role: ctx.GetString(middlewares.ContextRole)}, http.StatusOK, nil
}
