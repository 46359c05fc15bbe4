package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Page shown after login or registration when no next path was requested.
const defaultLandingPath = "/add_book"

// EventRecorder receives authentication events. Implemented by audit.Service.
type EventRecorder interface {
	LogAuth(userID uint, action, ipAddr, userAgent string, success bool)
}

// isLocalPath validates that a redirect path is local to prevent open redirect attacks.
func isLocalPath(path string) bool {
	if path == "" || !strings.HasPrefix(path, "/") {
		return false
	}
	// Protocol-relative URLs (//evil.com)
	if strings.HasPrefix(path, "//") {
		return false
	}
	if strings.Contains(path, "://") || strings.Contains(path, "\\") {
		return false
	}
	return true
}

// landingPath returns next when it is a safe local path other than the
// home page, otherwise the default landing page.
func landingPath(next string) string {
	if isLocalPath(next) && next != "/" {
		return next
	}
	return defaultLandingPath
}

// TemplateData adds the values every page layout needs: the CSRF token,
// the logged-in username and pending flash messages.
func TemplateData(c *gin.Context, sm *SessionManager, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["CSRFToken"] = GetCSRFToken(c)
	data["CSRFFieldName"] = CSRFFieldName
	data["CurrentUser"] = GetUsername(c)
	if sm != nil {
		data["Flashes"] = sm.PopFlashes(c.Request.Context())
	}
	return data
}

// AuthController handles registration, login and logout.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	limiter        *LoginLimiter
	events         EventRecorder
}

// NewAuthController creates a new authentication controller. limiter and
// events may be nil.
func NewAuthController(service *Service, sessionManager *SessionManager, limiter *LoginLimiter, events EventRecorder) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		limiter:        limiter,
		events:         events,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/register", ac.RegisterPage)
	router.POST("/register", ac.Register)
	router.GET("/login", ac.LoginPage)
	router.POST("/login", ac.Login)
	router.GET("/logout", ac.Logout)
}

func (ac *AuthController) RegisterPage(c *gin.Context) {
	ac.render(c, http.StatusOK, "register", gin.H{"Title": "Register"})
}

func (ac *AuthController) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	confirmation := c.PostForm("confirmation")

	user, err := ac.service.Register(username, password, confirmation)
	if err != nil {
		message := registerErrorMessage(err)
		if message == "" {
			ac.internalError(c, err, "register")
			return
		}
		ac.render(c, http.StatusOK, "register", gin.H{
			"Title":    "Register",
			"Username": username,
			"Error":    message,
		})
		return
	}

	ac.logEvent(c, user.ID, "register", true)

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		ac.internalError(c, err, "create session")
		return
	}

	c.Redirect(http.StatusFound, defaultLandingPath)
}

// LoginPage renders the login form.
func (ac *AuthController) LoginPage(c *gin.Context) {
	next := c.Query("next")
	if !isLocalPath(next) {
		next = ""
	}
	ac.render(c, http.StatusOK, "login", gin.H{
		"Title": "Log In",
		"Next":  next,
	})
}

// Login handles the login form submission. A failed attempt never creates
// a session.
func (ac *AuthController) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	next := c.PostForm("next")
	clientIP := c.ClientIP()

	loginForm := func(status int, message string) {
		ac.render(c, status, "login", gin.H{
			"Title":    "Log In",
			"Next":     next,
			"Username": username,
			"Error":    message,
		})
	}

	if ac.limiter != nil && !ac.limiter.Allow(clientIP, username) {
		c.Header("Retry-After", "60")
		loginForm(http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
		return
	}

	user, err := ac.service.Authenticate(username, password)
	switch {
	case errors.Is(err, ErrUserNotFound):
		ac.logEvent(c, 0, "login", false)
		loginForm(http.StatusOK, "Username Does Not Exist")
		return
	case errors.Is(err, ErrIncorrectPassword):
		ac.logEvent(c, 0, "login", false)
		loginForm(http.StatusOK, "Incorrect Password")
		return
	case err != nil:
		ac.internalError(c, err, "authenticate")
		return
	}

	if ac.limiter != nil {
		ac.limiter.Reset(clientIP, username)
	}

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		ac.internalError(c, err, "create session")
		return
	}
	ac.logEvent(c, user.ID, "login", true)

	c.Redirect(http.StatusFound, landingPath(next))
}

// Logout destroys the session and redirects home.
func (ac *AuthController) Logout(c *gin.Context) {
	userID := GetUserID(c)
	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		ac.internalError(c, err, "destroy session")
		return
	}
	ac.logEvent(c, userID, "logout", true)
	c.Redirect(http.StatusFound, "/")
}

func (ac *AuthController) render(c *gin.Context, status int, name string, data gin.H) {
	c.HTML(status, name, TemplateData(c, ac.sessionManager, data))
}

func (ac *AuthController) internalError(c *gin.Context, err error, context string) {
	log.Error().Err(err).Str("context", context).Msg("Internal error")
	ac.render(c, http.StatusInternalServerError, "error", gin.H{
		"Title":   "Error",
		"Message": "Something went wrong. Please try again.",
	})
}

func (ac *AuthController) logEvent(c *gin.Context, userID uint, action string, success bool) {
	if ac.events == nil {
		return
	}
	ac.events.LogAuth(userID, action, c.ClientIP(), c.Request.UserAgent(), success)
}

func registerErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUsernameTooShort):
		return "Username must be at least 5 characters long"
	case errors.Is(err, ErrUsernameTooLong):
		return "Username must be at most 50 characters long"
	case errors.Is(err, ErrPasswordTooShort):
		return "Password must be at least 6 characters long"
	case errors.Is(err, ErrPasswordTooLong):
		return "Password must be at most 72 bytes long"
	case errors.Is(err, ErrUsernameTaken):
		return "Username Taken"
	case errors.Is(err, ErrPasswordMismatch):
		return "Passwords Do Not Match"
	}
	return ""
}
