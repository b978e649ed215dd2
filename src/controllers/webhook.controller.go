package controllers

import (
	"errors"
	"io"
	"net/http"

	"eventreg/src/services"
	"eventreg/src/types"

	"github.com/gin-gonic/gin"
)

const (
	maxWebhookBody  = 64 << 10
	signatureHeader = "Stripe-Signature"
)

type WebhookController struct {
	receiver *services.WebhookReceiver
}

func NewWebhookController(receiver *services.WebhookReceiver) *WebhookController {
	return &WebhookController{receiver: receiver}
}

// Stripe reads the raw body untouched since the signature covers its exact bytes.
func (c *WebhookController) Stripe(ctx *gin.Context) (gin.H, int, error) {
	payload, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, &types.AppError{
				Kind: types.ValidationError, Code: types.CODE_VALIDATION,
				Message: "Request body too large", Status: http.StatusRequestEntityTooLarge, Err: err,
			}
		}
		return nil, http.StatusBadRequest, types.NewValidationError(types.CODE_VALIDATION, "Invalid request body")
	}
	if err := c.receiver.Receive(ctx.Request.Context(), payload, ctx.GetHeader(signatureHeader)); err != nil {
		return nil, types.HTTPStatus(err), err
	}
	return gin.H{"received": true}, http.StatusOK, nil
}
