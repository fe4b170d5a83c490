package handler

import (
	"errors"
	"net/http"

	"github.com/firmdirectory/internal/service"
	"github.com/gin-gonic/gin"
)

// HealthCheck 提供部署平台与监控系统使用的健康检查端点。
func (a *API) HealthCheck(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "database handle unavailable",
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
	})
}

// ShowSystemSettings 渲染系统设置页面。
func (a *API) ShowSystemSettings(c *gin.Context) {
	settings, err := a.system.GetSettings()
	if err != nil {
		c.Error(err)
	}
	a.renderHTML(c, http.StatusOK, "admin_settings.html", gin.H{
		"title":    "Settings",
		"active":   "settings",
		"settings": settings,
	})
}

type systemSettingsRequest struct {
	SiteName          string `json:"siteName"`
	Tagline           string `json:"tagline"`
	NotificationEmail string `json:"notificationEmail"`
}

// GetSystemSettings 返回当前系统设置。
func (a *API) GetSystemSettings(c *gin.Context) {
	settings, err := a.system.GetSettings()
	if err != nil {
		respondInternal(c, err, "failed to load settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateSystemSettings 保存系统设置。
func (a *API) UpdateSystemSettings(c *gin.Context) {
	var payload systemSettingsRequest
	if !bindJSON(c, &payload, "invalid settings payload") {
		return
	}

	settings, err := a.system.UpdateSettings(service.SystemSettingsInput{
		SiteName:          payload.SiteName,
		Tagline:           payload.Tagline,
		NotificationEmail: payload.NotificationEmail,
	})
	if err != nil {
		if errors.Is(err, service.ErrNotificationEmailInvalid) {
			respondError(c, http.StatusBadRequest, "notification email is invalid")
			return
		}
		respondInternal(c, err, "failed to save settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "settings saved",
		"settings": settings,
	})
}

// GetDashboardStats returns the dashboard counters as JSON.
func (a *API) GetDashboardStats(c *gin.Context) {
	stats, err := a.stats.Dashboard(c.Request.Context())
	if err != nil {
		respondInternal(c, err, "failed to load statistics")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
