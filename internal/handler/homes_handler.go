package handler

import (
	"effisense-go/internal/middleware"
	"effisense-go/internal/model"
	"effisense-go/internal/service"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HomesHandler serves the home list and its CRUD pages.
type HomesHandler struct {
	homes service.HomeService
}

// NewHomesHandler creates a HomesHandler.
func NewHomesHandler(homes service.HomeService) *HomesHandler {
	return &HomesHandler{homes: homes}
}

func (h *HomesHandler) Index(c *gin.Context) {
	user := middleware.CurrentUser(c)
	result, err := h.homes.List(c.Request.Context(), user.ID, 1)
	if err != nil {
		abortWithError(c, err)
		return
	}
	page(c, http.StatusOK, "homes/index", "My Homes", gin.H{"Items": result.Items, "HasMore": result.HasMore})
}

// LoadMoreHomes returns the grid items of one further page.
func (h *HomesHandler) LoadMoreHomes(c *gin.Context) {
	user := middleware.CurrentUser(c)
	result, err := h.homes.List(c.Request.Context(), user.ID, pageNumber(c, 2))
	if err != nil {
		abortWithError(c, err)
		return
	}
	loadMore(c, "homes/items", result.Items, len(result.Items), result.HasMore)
}

func (h *HomesHandler) Details(c *gin.Context) {
	home, err := h.owned(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	appliances, err := h.homes.Appliances(c.Request.Context(), home.UserID, home.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	page(c, http.StatusOK, "homes/details", "Home Details", gin.H{"Home": home, "Appliances": appliances})
}

func (h *HomesHandler) CreatePage(c *gin.Context) {
	h.form(c, http.StatusOK, "Create Home", "/Homes/Create", HomeForm{}, nil)
}

func (h *HomesHandler) Create(c *gin.Context) {
	var form HomeForm
	err := bindForm(c, &form)
	if err == nil {
		err = h.homes.Create(c.Request.Context(), middleware.CurrentUser(c).ID, form.model(0))
	}
	if err != nil {
		formFailed(c, err, func(fields map[string]string) {
			h.form(c, http.StatusUnprocessableEntity, "Create Home", "/Homes/Create", form, fields)
		})
		return
	}
	c.Redirect(http.StatusFound, "/Homes")
}

func (h *HomesHandler) EditPage(c *gin.Context) {
	home, err := h.owned(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.form(c, http.StatusOK, "Edit Home", fmt.Sprintf("/Homes/Edit/%d", home.ID), homeFormFrom(home), nil)
}

func (h *HomesHandler) Edit(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	var form HomeForm
	err = bindForm(c, &form)
	if err == nil {
		err = h.homes.Update(c.Request.Context(), middleware.CurrentUser(c).ID, form.model(id))
	}
	if err != nil {
		formFailed(c, err, func(fields map[string]string) {
			h.form(c, http.StatusUnprocessableEntity, "Edit Home", fmt.Sprintf("/Homes/Edit/%d", id), form, fields)
		})
		return
	}
	c.Redirect(http.StatusFound, "/Homes")
}

func (h *HomesHandler) DeletePage(c *gin.Context) {
	home, err := h.owned(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	page(c, http.StatusOK, "homes/delete", "Delete Home", gin.H{"Home": home})
}

// Delete removes the home together with its appliances and their usages.
func (h *HomesHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err == nil {
		err = h.homes.Delete(c.Request.Context(), middleware.CurrentUser(c).ID, id)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/Homes")
}

func (h *HomesHandler) owned(c *gin.Context) (*model.Home, error) {
	id, err := idParam(c)
	if err != nil {
		return nil, err
	}
	return h.homes.Get(c.Request.Context(), middleware.CurrentUser(c).ID, id)
}

func (h *HomesHandler) form(c *gin.Context, status int, title, action string, form HomeForm, fields map[string]string) {
	page(c, status, "homes/form", title, gin.H{"Form": form, "Action": action, "Errors": fields})
}
