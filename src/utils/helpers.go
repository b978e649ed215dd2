package utils

import (
	"net/http"

	"eventreg/src/types"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func Success(ctx *gin.Context, status int, data any) {
	ctx.JSON(status, types.APIResponse{Success: true, Data: data})
}

func SuccessWithMessage(ctx *gin.Context, status int, data any, message string) {
	ctx.JSON(status, types.APIResponse{Success: true, Data: data, Message: message})
}

// Fail writes the error envelope. Causes of 5xx errors are logged and never
// sent to the client.
func Fail(ctx *gin.Context, err error) {
	appErr := types.AsAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		zerolog.Ctx(ctx.Request.Context()).Error().
			Err(err).
			Str("kind", string(appErr.Kind)).
			Str("code", appErr.Code).
			Msg(appErr.Message)
	}
	ctx.AbortWithStatusJSON(appErr.Status, types.APIResponse{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

// Respond writes the result of a controller call.
func Respond(ctx *gin.Context, data any, status int, err error) {
	if err != nil {
		Fail(ctx, err)
		return
	}
	Success(ctx, status, data)
}

func AbortWithCode(ctx *gin.Context, status int, code, message string) {
	ctx.AbortWithStatusJSON(status, types.APIResponse{Success: false, Error: message, Code: code})
}
