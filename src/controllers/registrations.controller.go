package controllers

import (
	"net/http"

	"eventreg/src/models"
	"eventreg/src/services"
	"eventreg/src/types"

	"github.com/gin-gonic/gin"
)

type RegistrationController struct {
	registrations *services.RegistrationService
}

func NewRegistrationController(registrations *services.RegistrationService) *RegistrationController {
	return &RegistrationController{registrations: registrations}
}

func (c *RegistrationController) List(ctx *gin.Context) ([]models.Registration, int, error) {
	list, err := c.registrations.List(ctx.Request.Context())
	if err != nil {
		return nil, types.HTTPStatus(err), err
	}
	return list, http.StatusOK, nil
}

func (c *RegistrationController) Get(ctx *gin.Context) (*models.Registration, int, error) {
	var params types.RegistrationURIParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		return nil, http.StatusBadRequest, types.BindingError(err)
	}
	r, err := c.registrations.Get(ctx.Request.Context(), params.ID)
	if err != nil {
		return nil, types.HTTPStatus(err), err
	}
	return r, http.StatusOK, nil
}

func (c *RegistrationController) CheckIn(ctx *gin.Context) (*models.Registration, int, error) {
	var body types.CheckInRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, types.BindingError(err)
	}
	r, err := c.registrations.SetCheckedIn(ctx.Request.Context(), body.RegistrationID, *body.CheckedIn)
	if err != nil {
		return nil, types.HTTPStatus(err), err
	}
	return r, http.StatusOK, nil
}
