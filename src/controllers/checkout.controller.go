package controllers

import (
	"net/http"

	"eventreg/src/models"
	"eventreg/src/services"
	"eventreg/src/types"

	"github.com/gin-gonic/gin"
)

type CheckoutController struct {
	checkout *services.CheckoutService
}

func NewCheckoutController(checkout *services.CheckoutService) *CheckoutController {
	return &CheckoutController{checkout: checkout}
}

func (c *CheckoutController) Start(ctx *gin.Context) (*types.CheckoutStartResponse, int, error) {
	var body types.CheckoutStartRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, types.BindingError(err)
	}
	id, err := c.checkout.Start(ctx.Request.Context(), body)
	if err != nil {
		return nil, types.HTTPStatus(err), err
	}
	return &types.CheckoutStartResponse{RegistrationID: id}, http.StatusOK, nil
}

func (c *CheckoutController) CreatePaymentIntent(ctx *gin.Context) (*types.PaymentIntentResponse, int, error) {
	var body types.CreatePaymentIntentRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, types.BindingError(err)
	}
	res, err := c.checkout.CreatePaymentIntent(ctx.Request.Context(), body)
	if err != nil {
		return nil, types.HTTPStatus(err), err
	}
	return &types.PaymentIntentResponse{ClientSecret: res.ClientSecret, PaymentIntentID: res.PaymentIntentID}, http.StatusOK, nil
}

func (c *CheckoutController) LinkPaymentIntent(ctx *gin.Context) (*types.LinkPaymentIntentResponse, int, error) {
	var body types.LinkPaymentIntentRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, types.BindingError(err)
	}
	if err := c.checkout.LinkPaymentIntent(ctx.Request.Context(), body.PaymentIntentID, body.RegistrationID); err != nil {
		return nil, types.HTTPStatus(err), err
	}
	return &types.LinkPaymentIntentResponse{PaymentIntentID: body.PaymentIntentID, RegistrationID: body.RegistrationID}, http.StatusOK, nil
}

func (c *CheckoutController) Confirm(ctx *gin.Context) (*models.Registration, int, error) {
	var body types.ConfirmRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, types.BindingError(err)
	}
	r, err := c.checkout.Confirm(ctx.Request.Context(), body.RegistrationID)
	if err != nil {
		return nil, types.HTTPStatus(err), err
	}
	return r, http.StatusOK, nil
}
