package handler

import (
	"effisense-go/internal/live"
	"effisense-go/internal/middleware"
	"effisense-go/internal/service"
	"effisense-go/internal/web"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Users      service.UserService
	Homes      service.HomeService
	Appliances service.ApplianceService
	Usages     service.UsageService
	Charts     service.ChartService
	Assistant  service.AssistantService
	Seeds      service.SeedService
	Hub        *live.Hub
	DB         *gorm.DB
	// SessionTTL is the lifetime of the session cookie; match it to the token lifetime.
	SessionTTL       time.Duration
	SecureCookies    bool
	AssistantLimiter *middleware.UserRateLimiter
}

// NewRouter builds the gin engine with every route.
func NewRouter(s Services) (*gin.Engine, error) {
	RegisterValidators()
	templates, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r := gin.New()
	r.SetHTMLTemplate(templates)
	r.Use(middleware.RequestID(), middleware.RequestLogger(), gin.Recovery())
	r.StaticFS("/static", http.FS(web.Static()))

	r.GET("/health", NewHealthHandler(s.DB).Check)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	accountHandler := NewAccountHandler(s.Users, s.SessionTTL, s.SecureCookies)
	account := r.Group("/Account")
	{
		account.GET("/Login", accountHandler.LoginPage)
		account.POST("/Login", accountHandler.Login)
		account.GET("/Register", accountHandler.RegisterPage)
		account.POST("/Register", accountHandler.Register)
		account.POST("/Logout", accountHandler.Logout)
	}

	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware(s.Users))

	dashboard := NewDashboardHandler(s.Charts, s.Users, s.Seeds)
	authed.GET("/", dashboard.Index)
	home := authed.Group("/Home")
	{
		home.GET("/Index", dashboard.Index)
		for _, e := range ChartEndpoints {
			home.GET("/"+e.Path, dashboard.Chart(e.Kind, e.Key))
		}
		home.POST("/ToggleSimulation", dashboard.ToggleSimulation)
		home.POST("/UpdateSimulationInterval", dashboard.UpdateSimulationInterval)
		home.GET("/GetSimulationState", dashboard.GetSimulationState)
		home.POST("/FillDatabase", dashboard.FillDatabase)
	}

	homesHandler := NewHomesHandler(s.Homes)
	homes := authed.Group("/Homes")
	{
		homes.GET("", homesHandler.Index)
		homes.GET("/Index", homesHandler.Index)
		homes.GET("/LoadMoreHomes", homesHandler.LoadMoreHomes)
		homes.GET("/Details/:id", homesHandler.Details)
		homes.GET("/Create", homesHandler.CreatePage)
		homes.POST("/Create", homesHandler.Create)
		homes.GET("/Edit/:id", homesHandler.EditPage)
		homes.POST("/Edit/:id", homesHandler.Edit)
		homes.GET("/Delete/:id", homesHandler.DeletePage)
		homes.POST("/Delete/:id", homesHandler.Delete)
	}

	applianceHandler := NewApplianceHandler(s.Appliances, s.Homes)
	appliances := authed.Group("/Appliances")
	{
		appliances.GET("", applianceHandler.Index)
		appliances.GET("/Index", applianceHandler.Index)
		appliances.GET("/LoadMoreAppliances", applianceHandler.LoadMoreAppliances)
		appliances.GET("/Details/:id", applianceHandler.Details)
		appliances.GET("/Create", applianceHandler.CreatePage)
		appliances.POST("/Create", applianceHandler.Create)
		appliances.GET("/Edit/:id", applianceHandler.EditPage)
		appliances.POST("/Edit/:id", applianceHandler.Edit)
		appliances.GET("/Delete/:id", applianceHandler.DeletePage)
		appliances.POST("/Delete/:id", applianceHandler.Delete)
	}

	usageHandler := NewUsageHandler(s.Usages, s.Homes)
	assistantHandler := NewAssistantHandler(s.Assistant)
	usages := authed.Group("/Usages")
	{
		usages.GET("", usageHandler.Index)
		usages.GET("/Index", usageHandler.Index)
		usages.GET("/LoadMoreUsages", usageHandler.LoadMoreUsages)
		usages.GET("/FilterByDate", usageHandler.FilterByDate)
		usages.GET("/GetAppliancesByHome", usageHandler.GetAppliancesByHome)
		usages.GET("/Details/:id", usageHandler.Details)
		usages.GET("/Create", usageHandler.CreatePage)
		usages.POST("/Create", usageHandler.Create)
		usages.GET("/Edit/:id", usageHandler.EditPage)
		usages.POST("/Edit/:id", usageHandler.Edit)
		usages.GET("/Delete/:id", usageHandler.DeletePage)
		usages.POST("/Delete/:id", usageHandler.Delete)

		suggestion := []gin.HandlerFunc{assistantHandler.GetDashboardSuggestion}
		if s.AssistantLimiter != nil {
			suggestion = append([]gin.HandlerFunc{s.AssistantLimiter.Middleware()}, suggestion...)
		}
		usages.POST("/GetDashboardSuggestion", suggestion...)
		usages.GET("/GetChatHistory", assistantHandler.GetChatHistory)
	}

	if s.Hub != nil {
		authed.GET("/live", NewLiveHandler(s.Hub).Handle)
	}

	admin := authed.Group("/Admin")
	admin.Use(middleware.AdminAuthMiddleware())
	{
		admin.POST("/FillDatabase", dashboard.FillDatabaseFor)
	}

	r.NoRoute(func(c *gin.Context) {
		abortWithError(c, service.ErrNotFound)
	})
	return r, nil
}
