package handler

import (
	"effisense-go/internal/middleware"
	"effisense-go/internal/service"
	"effisense-go/pkg/log"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// AccountHandler serves registration, login and logout.
type AccountHandler struct {
	userService   service.UserService
	sessionTTL    time.Duration
	secureCookies bool
}

// NewAccountHandler creates an AccountHandler. sessionTTL bounds the session cookie lifetime.
func NewAccountHandler(userService service.UserService, sessionTTL time.Duration, secureCookies bool) *AccountHandler {
	return &AccountHandler{userService: userService, sessionTTL: sessionTTL, secureCookies: secureCookies}
}

// RegisterRequest is the registration form.
type RegisterRequest struct {
	Username        string `form:"Username" json:"username" binding:"required,min=3,max=64"`
	Email           string `form:"Email" json:"email" binding:"required,email,max=255"`
	Password        string `form:"Password" json:"password" binding:"required,min=6,max=100"`
	ConfirmPassword string `form:"ConfirmPassword" json:"confirmPassword" binding:"omitempty,eqfield=Password"`
}

// LoginRequest is the login form.
type LoginRequest struct {
	Username  string `form:"Username" json:"username" binding:"required"`
	Password  string `form:"Password" json:"password" binding:"required"`
	ReturnURL string `form:"ReturnUrl" json:"returnUrl"`
}

func (h *AccountHandler) LoginPage(c *gin.Context) {
	page(c, http.StatusOK, "account/login", "Log in", gin.H{"Form": LoginRequest{ReturnURL: c.Query("ReturnUrl")}})
}

// Login verifies the credentials and starts a cookie session. API clients get the token in the body.
func (h *AccountHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindForm(c, &req); err != nil {
		h.loginFailed(c, req, err)
		return
	}

	tokenString, user, err := h.userService.Login(req.Username, req.Password)
	if err != nil {
		log.Warnw("login failed", "username", req.Username, "error", err)
		if errors.Is(err, service.ErrInvalidCredentials) {
			err = service.NewValidationError("form", "Invalid login attempt.")
		}
		h.loginFailed(c, req, err)
		return
	}

	log.Infow("user logged in", "userId", user.ID, "username", user.Username)
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"success": true, "token": tokenString})
		return
	}
	h.setSessionCookie(c, tokenString, int(h.sessionTTL.Seconds()))
	c.Redirect(http.StatusFound, localRedirect(req.ReturnURL))
}

func (h *AccountHandler) loginFailed(c *gin.Context, req LoginRequest, err error) {
	verr, ok := service.IsValidation(err)
	if !ok || middleware.WantsJSON(c) {
		abortWithError(c, err)
		return
	}
	req.Password = ""
	page(c, http.StatusUnprocessableEntity, "account/login", "Log in", gin.H{"Form": req, "Errors": verr.Fields})
}

func (h *AccountHandler) RegisterPage(c *gin.Context) {
	page(c, http.StatusOK, "account/register", "Register", gin.H{"Form": RegisterRequest{}})
}

// Register creates the account and logs the new user in.
func (h *AccountHandler) Register(c *gin.Context) {
	var req RegisterRequest
	err := bindForm(c, &req)
	if err == nil {
		_, err = h.userService.Register(req.Username, req.Email, req.Password)
	}
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		err = service.NewValidationError("Username", "Username is already taken.")
	case errors.Is(err, service.ErrEmailTaken):
		err = service.NewValidationError("Email", "Email is already registered.")
	}
	if err != nil {
		verr, ok := service.IsValidation(err)
		if !ok || middleware.WantsJSON(c) {
			abortWithError(c, err)
			return
		}
		req.Password, req.ConfirmPassword = "", ""
		page(c, http.StatusUnprocessableEntity, "account/register", "Register", gin.H{"Form": req, "Errors": verr.Fields})
		return
	}

	tokenString, _, err := h.userService.Login(req.Username, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{"success": true, "token": tokenString})
		return
	}
	h.setSessionCookie(c, tokenString, int(h.sessionTTL.Seconds()))
	c.Redirect(http.StatusFound, "/")
}

// Logout revokes the current token and clears the cookie.
func (h *AccountHandler) Logout(c *gin.Context) {
	if tokenString := middleware.TokenFromRequest(c); tokenString != "" {
		if err := h.userService.Logout(c.Request.Context(), tokenString); err != nil {
			log.Error("logout: failed to revoke token", err)
		}
	}
	h.setSessionCookie(c, "", -1)
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	c.Redirect(http.StatusFound, middleware.LoginPath)
}

func (h *AccountHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, value, maxAge, "/", "", h.secureCookies, true)
}

// localRedirect only follows same-site paths.
func localRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}
