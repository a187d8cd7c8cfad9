package handler

import (
	"effisense-go/internal/middleware"
	"effisense-go/internal/model"
	"effisense-go/internal/service"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ApplianceIcons are the icon choices offered by the appliance form.
var ApplianceIcons = []string{
	"fa-plug", "fa-tv", "fa-lightbulb", "fa-fan", "fa-temperature-high",
	"fa-snowflake", "fa-blender", "fa-laptop", "fa-shower", "fa-fire",
}

// ApplianceHandler serves the appliance list and its CRUD pages.
type ApplianceHandler struct {
	appliances service.ApplianceService
	homes      service.HomeService
}

// NewApplianceHandler creates an ApplianceHandler.
func NewApplianceHandler(appliances service.ApplianceService, homes service.HomeService) *ApplianceHandler {
	return &ApplianceHandler{appliances: appliances, homes: homes}
}

func (h *ApplianceHandler) Index(c *gin.Context) {
	result, err := h.appliances.List(c.Request.Context(), middleware.CurrentUser(c).ID, 1)
	if err != nil {
		abortWithError(c, err)
		return
	}
	page(c, http.StatusOK, "appliances/index", "My Appliances", gin.H{"Items": result.Items, "HasMore": result.HasMore})
}

func (h *ApplianceHandler) LoadMoreAppliances(c *gin.Context) {
	result, err := h.appliances.List(c.Request.Context(), middleware.CurrentUser(c).ID, pageNumber(c, 2))
	if err != nil {
		abortWithError(c, err)
		return
	}
	loadMore(c, "appliances/items", result.Items, len(result.Items), result.HasMore)
}

func (h *ApplianceHandler) Details(c *gin.Context) {
	appliance, err := h.owned(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	page(c, http.StatusOK, "appliances/details", "Appliance Details", gin.H{"Appliance": appliance})
}

// CreatePage preselects the home given by ?homeId when present.
func (h *ApplianceHandler) CreatePage(c *gin.Context) {
	var form ApplianceForm
	if homeID, err := strconv.ParseUint(c.Query("homeId"), 10, 64); err == nil {
		form.HomeID = uint(homeID)
	}
	h.form(c, http.StatusOK, "Add Appliance", "/Appliances/Create", form, nil)
}

func (h *ApplianceHandler) Create(c *gin.Context) {
	var form ApplianceForm
	err := bindForm(c, &form)
	if err == nil {
		err = h.appliances.Create(c.Request.Context(), middleware.CurrentUser(c).ID, form.model(0))
	}
	if err != nil {
		formFailed(c, err, func(fields map[string]string) {
			h.form(c, http.StatusUnprocessableEntity, "Add Appliance", "/Appliances/Create", form, fields)
		})
		return
	}
	c.Redirect(http.StatusFound, "/Appliances")
}

func (h *ApplianceHandler) EditPage(c *gin.Context) {
	appliance, err := h.owned(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.form(c, http.StatusOK, "Edit Appliance", fmt.Sprintf("/Appliances/Edit/%d", appliance.ID), applianceFormFrom(appliance), nil)
}

func (h *ApplianceHandler) Edit(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	var form ApplianceForm
	err = bindForm(c, &form)
	if err == nil {
		err = h.appliances.Update(c.Request.Context(), middleware.CurrentUser(c).ID, form.model(id))
	}
	if err != nil {
		formFailed(c, err, func(fields map[string]string) {
			h.form(c, http.StatusUnprocessableEntity, "Edit Appliance", fmt.Sprintf("/Appliances/Edit/%d", id), form, fields)
		})
		return
	}
	c.Redirect(http.StatusFound, "/Appliances")
}

func (h *ApplianceHandler) DeletePage(c *gin.Context) {
	appliance, err := h.owned(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	page(c, http.StatusOK, "appliances/delete", "Delete Appliance", gin.H{"Appliance": appliance})
}

// Delete removes the appliance and its usages.
func (h *ApplianceHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err == nil {
		err = h.appliances.Delete(c.Request.Context(), middleware.CurrentUser(c).ID, id)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/Appliances")
}

func (h *ApplianceHandler) owned(c *gin.Context) (*model.Appliance, error) {
	id, err := idParam(c)
	if err != nil {
		return nil, err
	}
	return h.appliances.Get(c.Request.Context(), middleware.CurrentUser(c).ID, id)
}

// form lists the user's homes for the home picker.
func (h *ApplianceHandler) form(c *gin.Context, status int, title, action string, form ApplianceForm, fields map[string]string) {
	homes, err := h.homes.ListAll(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	page(c, status, "appliances/form", title, gin.H{
		"Form":   form,
		"Action": action,
		"Errors": fields,
		"Homes":  homes,
		"Icons":  ApplianceIcons,
	})
}
