package handler

import (
	"effisense-go/internal/middleware"
	"effisense-go/internal/model"
	"effisense-go/internal/service"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// UsageHandler serves the usage list, its CRUD pages and the list helpers.
type UsageHandler struct {
	usages service.UsageService
	homes  service.HomeService
}

// NewUsageHandler creates a UsageHandler.
func NewUsageHandler(usages service.UsageService, homes service.HomeService) *UsageHandler {
	return &UsageHandler{usages: usages, homes: homes}
}

// applianceOption is one entry of the appliance picker.
type applianceOption struct {
	ApplianceID uint   `json:"applianceId"`
	Name        string `json:"name"`
}

func (h *UsageHandler) Index(c *gin.Context) {
	result, err := h.usages.List(c.Request.Context(), middleware.CurrentUser(c).ID, 1)
	if err != nil {
		abortWithError(c, err)
		return
	}
	page(c, http.StatusOK, "usages/index", "Usages", gin.H{"Items": result.Items, "HasMore": result.HasMore})
}

// LoadMoreUsages returns the table rows of one further page, newest first.
func (h *UsageHandler) LoadMoreUsages(c *gin.Context) {
	result, err := h.usages.List(c.Request.Context(), middleware.CurrentUser(c).ID, pageNumber(c, 2))
	if err != nil {
		abortWithError(c, err)
		return
	}
	loadMore(c, "usages/rows", result.Items, len(result.Items), result.HasMore)
}

// FilterByDate returns the rows of one calendar day (?date=yyyy-MM-dd), or every row when date is empty.
func (h *UsageHandler) FilterByDate(c *gin.Context) {
	var day *time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(model.DateFormat, raw)
		if err != nil {
			c.String(http.StatusBadRequest, "Invalid date format.")
			return
		}
		day = &parsed
	}
	usages, err := h.usages.FilterByDate(c.Request.Context(), middleware.CurrentUser(c).ID, day)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.HTML(http.StatusOK, "usages/rows", gin.H{"Items": usages, "Empty": len(usages) == 0})
}

// GetAppliancesByHome lists the appliances of an owned home; other homes yield an empty list.
func (h *UsageHandler) GetAppliancesByHome(c *gin.Context) {
	homeID, err := strconv.ParseUint(c.Query("homeId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "homeId is required."})
		return
	}
	options, err := h.applianceOptions(c, uint(homeID))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, options)
}

func (h *UsageHandler) applianceOptions(c *gin.Context, homeID uint) ([]applianceOption, error) {
	options := []applianceOption{}
	appliances, err := h.homes.Appliances(c.Request.Context(), middleware.CurrentUser(c).ID, homeID)
	if err != nil {
		if _, invalid := service.IsValidation(err); invalid || errors.Is(err, service.ErrForbidden) {
			return options, nil
		}
		return nil, err
	}
	for _, a := range appliances {
		options = append(options, applianceOption{ApplianceID: a.ID, Name: a.Name})
	}
	return options, nil
}

func (h *UsageHandler) Details(c *gin.Context) {
	usage, err := h.owned(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	page(c, http.StatusOK, "usages/details", "Usage Details", gin.H{"Usage": usage})
}

func (h *UsageHandler) CreatePage(c *gin.Context) {
	now := time.Now()
	form := UsageForm{
		Date:           now.Format(model.DateFormat),
		Time:           now.Format(model.ClockFormat),
		UsageFrequency: int(model.FrequencySometimes),
	}
	h.form(c, http.StatusOK, "Add Usage", "/Usages/Create", form, nil)
}

// Create stores the usage; live subscribers are notified by the service.
func (h *UsageHandler) Create(c *gin.Context) {
	var form UsageForm
	err := bindForm(c, &form)
	if err == nil {
		var usage *model.Usage
		if usage, err = form.model(0); err == nil {
			err = h.usages.Create(c.Request.Context(), middleware.CurrentUser(c).ID, usage)
		}
	}
	if err != nil {
		formFailed(c, err, func(fields map[string]string) {
			h.form(c, http.StatusUnprocessableEntity, "Add Usage", "/Usages/Create", form, fields)
		})
		return
	}
	c.Redirect(http.StatusFound, "/Usages")
}

func (h *UsageHandler) EditPage(c *gin.Context) {
	usage, err := h.owned(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.form(c, http.StatusOK, "Edit Usage", fmt.Sprintf("/Usages/Edit/%d", usage.ID), usageFormFrom(usage), nil)
}

func (h *UsageHandler) Edit(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	var form UsageForm
	err = bindForm(c, &form)
	if err == nil {
		var usage *model.Usage
		if usage, err = form.model(id); err == nil {
			err = h.usages.Update(c.Request.Context(), middleware.CurrentUser(c).ID, usage)
		}
	}
	if err != nil {
		formFailed(c, err, func(fields map[string]string) {
			h.form(c, http.StatusUnprocessableEntity, "Edit Usage", fmt.Sprintf("/Usages/Edit/%d", id), form, fields)
		})
		return
	}
	c.Redirect(http.StatusFound, "/Usages")
}

func (h *UsageHandler) DeletePage(c *gin.Context) {
	usage, err := h.owned(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	page(c, http.StatusOK, "usages/delete", "Delete Usage", gin.H{"Usage": usage})
}

func (h *UsageHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err == nil {
		err = h.usages.Delete(c.Request.Context(), middleware.CurrentUser(c).ID, id)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/Usages")
}

func (h *UsageHandler) owned(c *gin.Context) (*model.Usage, error) {
	id, err := idParam(c)
	if err != nil {
		return nil, err
	}
	return h.usages.Get(c.Request.Context(), middleware.CurrentUser(c).ID, id)
}

// form fills the home picker and, once a home is chosen, its appliance picker.
func (h *UsageHandler) form(c *gin.Context, status int, title, action string, form UsageForm, fields map[string]string) {
	homes, err := h.homes.ListAll(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	options := []applianceOption{}
	if form.HomeID != 0 {
		if options, err = h.applianceOptions(c, form.HomeID); err != nil {
			abortWithError(c, err)
			return
		}
	}
	page(c, status, "usages/form", title, gin.H{
		"Form":        form,
		"Action":      action,
		"Errors":      fields,
		"Homes":       homes,
		"Appliances":  options,
		"Frequencies": model.UsageFrequencies(),
	})
}
