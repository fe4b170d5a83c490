package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/firmdirectory/internal/db"
	"github.com/firmdirectory/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
	sessionMaxAge      = 7 * 24 * 60 * 60
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "admin_login.html", gin.H{
		"title": "Admin sign in",
	})
}

// Login 处理表单登录
func (a *API) Login(c *gin.Context) {
	user, err := a.auth.Authenticate(c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		status := http.StatusUnauthorized
		message := "Invalid username or password"
		if !errors.Is(err, service.ErrInvalidCredentials) {
			c.Error(err)
			status = http.StatusInternalServerError
			message = "Sign in failed, please try again"
		}
		a.renderHTML(c, status, "admin_login.html", gin.H{
			"title":    "Admin sign in",
			"error":    message,
			"username": strings.TrimSpace(c.PostForm("username")),
		})
		return
	}

	if err := startSession(c, user); err != nil {
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "admin_login.html", gin.H{
			"title": "Admin sign in",
			"error": "Could not save the session",
		})
		return
	}

	c.Redirect(http.StatusFound, "/admin/dashboard")
}

// Logout 处理用户登出
func (a *API) Logout(c *gin.Context) {
	clearSession(c)
	c.Redirect(http.StatusFound, "/admin/login")
}

// CreateSession is the JSON login used by scripts and the admin UI.
func (a *API) CreateSession(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req, "username and password are required") {
		return
	}

	user, err := a.auth.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "invalid username or password")
			return
		}
		respondInternal(c, err, "sign in failed")
		return
	}

	if err := startSession(c, user); err != nil {
		respondInternal(c, err, "could not save the session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "signed in",
		"user":    gin.H{"id": user.ID, "username": user.Username},
	})
}

// DestroySession clears the admin session.
func (a *API) DestroySession(c *gin.Context) {
	clearSession(c)
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

// AuthRequired 校验会话中的 user_id（cookie 已签名）；后台 API 返回 401，页面请求跳转到登录页。
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionUserIDKey) == nil {
			if strings.HasPrefix(c.Request.URL.Path, "/admin/api/") {
				respondError(c, http.StatusUnauthorized, "authentication required")
				c.Abort()
				return
			}
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Set(sessionUsernameKey, session.Get(sessionUsernameKey))
		c.Next()
	}
}

func startSession(c *gin.Context, user *db.User) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   c.Request.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	return session.Save()
}

func clearSession(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	if err := session.Save(); err != nil {
		c.Error(err)
	}
}
