package handler

import (
	"effisense-go/internal/middleware"
	"effisense-go/internal/model"
	"effisense-go/internal/service"
	"effisense-go/pkg/log"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ChartEndpoint describes one chart route and the JSON key holding its labels.
type ChartEndpoint struct {
	Path  string
	Key   string
	Title string
	Kind  service.ChartKind
}

// URL is the route the dashboard script fetches.
func (e ChartEndpoint) URL() string {
	return "/Home/" + e.Path
}

// ChartEndpoints are the dashboard charts. GetCategoryData duplicates the appliance chart under "labels".
var ChartEndpoints = []ChartEndpoint{
	{Path: "GetApplianceData", Key: "applianceNames", Title: "Energy by appliance", Kind: service.ChartByAppliance},
	{Path: "GetHomeData", Key: "homeNames", Title: "Energy by home", Kind: service.ChartByHome},
	{Path: "GetDayOfWeekData", Key: "daysOfWeek", Title: "Energy by day of week", Kind: service.ChartByDayOfWeek},
	{Path: "GetMonthlyUsageData", Key: "months", Title: "Monthly energy", Kind: service.ChartByMonth},
	{Path: "GetPeakTimeData", Key: "hours", Title: "Peak hours", Kind: service.ChartByHour},
	{Path: "GetBuildingTypeData", Key: "buildingTypes", Title: "Energy by building type", Kind: service.ChartByBuildingType},
	{Path: "GetUsageData", Key: "labels", Title: "Daily energy", Kind: service.ChartByDay},
	{Path: "GetCategoryData", Key: "labels", Kind: service.ChartByAppliance},
}

// DashboardHandler serves the dashboard page, its chart data, the simulation controls and demo data.
type DashboardHandler struct {
	charts service.ChartService
	users  service.UserService
	seeds  service.SeedService
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(charts service.ChartService, users service.UserService, seeds service.SeedService) *DashboardHandler {
	return &DashboardHandler{charts: charts, users: users, seeds: seeds}
}

func (h *DashboardHandler) Index(c *gin.Context) {
	shown := make([]ChartEndpoint, 0, len(ChartEndpoints))
	for _, e := range ChartEndpoints {
		if e.Title != "" {
			shown = append(shown, e)
		}
	}
	page(c, http.StatusOK, "dashboard/index", "Dashboard", gin.H{
		"Charts":      shown,
		"MinInterval": service.MinSimulationInterval,
		"MaxInterval": service.MaxSimulationInterval,
	})
}

// Chart returns a handler answering {labelKey: [...], energyUsed: [...]} for kind.
func (h *DashboardHandler) Chart(kind service.ChartKind, labelKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		series, err := h.charts.Chart(c.Request.Context(), user.ID, kind)
		if err != nil {
			abortWithError(c, err)
			return
		}
		labels, energy := series.Labels, series.EnergyUsed
		if labels == nil {
			labels, energy = []string{}, []float64{}
		}
		c.JSON(http.StatusOK, gin.H{labelKey: labels, "energyUsed": energy})
	}
}

// ToggleSimulation sets the simulation flag and interval together.
func (h *DashboardHandler) ToggleSimulation(c *gin.Context) {
	user := middleware.CurrentUser(c)
	enable, _ := strconv.ParseBool(c.PostForm("enable"))
	interval, _ := strconv.Atoi(c.PostForm("interval"))

	if err := h.users.ToggleSimulation(user.ID, enable, interval); err != nil {
		simulationError(c, err)
		return
	}
	message := "Simulation stopped."
	if enable {
		message = "Simulation started."
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

func (h *DashboardHandler) UpdateSimulationInterval(c *gin.Context) {
	user := middleware.CurrentUser(c)
	interval, _ := strconv.Atoi(c.PostForm("interval"))

	if err := h.users.UpdateSimulationInterval(user.ID, interval); err != nil {
		simulationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("Interval updated to %ds.", interval)})
}

func simulationError(c *gin.Context, err error) {
	if verr, ok := service.IsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": verr.Fields["interval"]})
		return
	}
	abortWithError(c, err)
}

// GetSimulationState reads the flags fresh from the store rather than from the session user.
func (h *DashboardHandler) GetSimulationState(c *gin.Context) {
	user, err := h.users.GetByID(middleware.CurrentUser(c).ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"isRunning": user.IsSimulationEnabled,
		"interval":  user.SelectedSimulationInterval,
	})
}

// FillDatabase replaces the current user's data with generated demo data.
func (h *DashboardHandler) FillDatabase(c *gin.Context) {
	h.fill(c, middleware.CurrentUser(c))
}

// FillDatabaseFor is the admin variant targeting the account named by the "username" form field.
func (h *DashboardHandler) FillDatabaseFor(c *gin.Context) {
	target, err := h.users.GetByUsername(c.PostForm("username"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.fill(c, target)
}

func (h *DashboardHandler) fill(c *gin.Context, target *model.User) {
	result, err := h.seeds.FillDatabase(c.Request.Context(), target.ID)
	if err != nil {
		log.Errorw("fill database failed", "userId", target.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error filling the database."})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Database filled with %d homes, %d appliances and %d usages.", result.Homes, result.Appliances, result.Usages),
		"result":  result,
	})
}
