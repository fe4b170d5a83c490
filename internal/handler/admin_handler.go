package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/firmdirectory/internal/db"
	"github.com/firmdirectory/internal/service"
	"github.com/gin-gonic/gin"
)

// ShowDashboard 渲染后台主面板
func (a *API) ShowDashboard(c *gin.Context) {
	stats, err := a.stats.Dashboard(c.Request.Context())
	if err != nil {
		c.Error(err)
	}

	var overview service.SiteOverview
	if a.analytics != nil {
		if overview, err = a.analytics.Overview(5); err != nil {
			c.Error(err)
		}
	}

	recentLeads, err := a.leads.List(service.LeadFilter{Status: db.LeadNew, PerPage: 5})
	if err != nil {
		c.Error(err)
		recentLeads = &service.LeadListResult{}
	}

	a.renderHTML(c, http.StatusOK, "admin_dashboard.html", gin.H{
		"title":       "Dashboard",
		"active":      "dashboard",
		"username":    c.GetString(sessionUsernameKey),
		"stats":       stats,
		"overview":    overview,
		"recentLeads": recentLeads.Leads,
	})
}

// ShowFirmList 渲染后台律所列表
func (a *API) ShowFirmList(c *gin.Context) {
	filter := service.FirmFilter{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Tier:   c.Query("tier"),
		Page:   parsePositiveInt(c.Query("page"), 1),
	}
	result, err := a.firms.List(filter)
	if err != nil {
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "admin_firms.html", gin.H{
			"title":  "Firms",
			"active": "firms",
			"error":  "Failed to load firms",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "admin_firms.html", gin.H{
		"title":  "Firms",
		"active": "firms",
		"filter": filter,
		"firms":  result.Firms,
		"stats":  a.firmStats(c, result.Firms),
		"pager":  newPager(result.Pagination, "/admin/firms", c.Request.URL.Query()),
		"tiers":  a.pricingTiers(c),
	})
}

// ShowFirmEdit 渲染律所新建或编辑页面
func (a *API) ShowFirmEdit(c *gin.Context) {
	var firm *db.Firm
	if raw := c.Param("id"); raw != "" {
		id, err := parseUintParam(c, "id")
		if err != nil {
			a.renderNotFound(c)
			return
		}
		firm, err = a.firms.Get(id)
		if err != nil {
			if errors.Is(err, service.ErrFirmNotFound) {
				a.renderNotFound(c)
				return
			}
			c.Error(err)
			a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error"})
			return
		}
	}

	areas, err := a.practiceAreas.List()
	if err != nil {
		c.Error(err)
	}
	states, err := a.locations.ListStates()
	if err != nil {
		c.Error(err)
	}

	selected := map[uint]bool{}
	title := "New firm"
	if firm != nil {
		title = "Edit " + firm.Name
		for _, area := range firm.PracticeAreas {
			selected[area.ID] = true
		}
	}

	a.renderHTML(c, http.StatusOK, "admin_firm_edit.html", gin.H{
		"title":         title,
		"active":        "firms",
		"firm":          firm,
		"selectedAreas": selected,
		"practiceAreas": areas,
		"states":        states,
		"tiers":         a.pricingTiers(c),
	})
}

// ShowLawyerList 渲染后台律师列表
func (a *API) ShowLawyerList(c *gin.Context) {
	result, err := a.lawyers.List(service.LawyerFilter{
		FirmID: parseUintQuery(c, "firmId"),
		Search: c.Query("search"),
		Page:   parsePositiveInt(c.Query("page"), 1),
	})
	if err != nil {
		c.Error(err)
		result = &service.LawyerListResult{}
	}

	firms, err := a.firms.List(service.FirmFilter{PerPage: 100})
	if err != nil {
		c.Error(err)
		firms = &service.FirmListResult{}
	}
	areas, err := a.practiceAreas.List()
	if err != nil {
		c.Error(err)
	}

	a.renderHTML(c, http.StatusOK, "admin_lawyers.html", gin.H{
		"title":         "Lawyers",
		"active":        "lawyers",
		"lawyers":       result.Lawyers,
		"pager":         newPager(result.Pagination, "/admin/lawyers", c.Request.URL.Query()),
		"firms":         firms.Firms,
		"practiceAreas": areas,
		"search":        c.Query("search"),
	})
}

// ShowPracticeAreaList 渲染业务领域与地区管理页面
func (a *API) ShowPracticeAreaList(c *gin.Context) {
	areas, err := a.practiceAreas.List()
	if err != nil {
		c.Error(err)
	}
	states, err := a.locations.ListStates()
	if err != nil {
		c.Error(err)
	}

	a.renderHTML(c, http.StatusOK, "admin_practice_areas.html", gin.H{
		"title":         "Practice areas & locations",
		"active":        "practice-areas",
		"practiceAreas": areas,
		"states":        states,
	})
}

// ShowPageList 渲染独立页面管理
func (a *API) ShowPageList(c *gin.Context) {
	pages, err := a.pages.List(false)
	if err != nil {
		c.Error(err)
	}

	a.renderHTML(c, http.StatusOK, "admin_pages.html", gin.H{
		"title":  "Pages",
		"active": "pages",
		"pages":  pages,
	})
}

// ShowBlogList 渲染文章管理
func (a *API) ShowBlogList(c *gin.Context) {
	result, err := a.blog.List(service.BlogFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   parsePositiveInt(c.Query("page"), 1),
	})
	if err != nil {
		c.Error(err)
		result = &service.BlogListResult{}
	}
	areas, err := a.practiceAreas.List()
	if err != nil {
		c.Error(err)
	}

	a.renderHTML(c, http.StatusOK, "admin_blog.html", gin.H{
		"title":         "Blog",
		"active":        "blog",
		"posts":         result.Posts,
		"pager":         newPager(result.Pagination, "/admin/blog", c.Request.URL.Query()),
		"practiceAreas": areas,
	})
}

// ShowNominationList 渲染提名审核页面
func (a *API) ShowNominationList(c *gin.Context) {
	status := c.DefaultQuery("status", db.NominationPending)
	result, err := a.nominations.List(status, parsePositiveInt(c.Query("page"), 1), 0)
	if err != nil {
		c.Error(err)
		result = &service.NominationListResult{}
	}

	a.renderHTML(c, http.StatusOK, "admin_nominations.html", gin.H{
		"title":       "Nominations",
		"active":      "nominations",
		"status":      status,
		"nominations": result.Nominations,
		"pager":       newPager(result.Pagination, "/admin/nominations", url.Values{"status": {status}}),
	})
}

// ShowLeadList 渲染线索页面
func (a *API) ShowLeadList(c *gin.Context) {
	status := c.Query("status")
	result, err := a.leads.List(service.LeadFilter{
		Status: status,
		Page:   parsePositiveInt(c.Query("page"), 1),
	})
	if err != nil {
		c.Error(err)
		result = &service.LeadListResult{}
	}

	a.renderHTML(c, http.StatusOK, "admin_leads.html", gin.H{
		"title":  "Leads",
		"active": "leads",
		"status": status,
		"leads":  result.Leads,
		"pager":  newPager(result.Pagination, "/admin/leads", c.Request.URL.Query()),
	})
}

// ShowPricingEditor 渲染定价配置页面
func (a *API) ShowPricingEditor(c *gin.Context) {
	cfg, err := a.pricing.Load()
	if err != nil {
		c.Error(err)
	}

	a.renderHTML(c, http.StatusOK, "admin_pricing.html", gin.H{
		"title":   "Pricing",
		"active":  "pricing",
		"pricing": cfg,
		"path":    a.pricing.Path(),
	})
}
