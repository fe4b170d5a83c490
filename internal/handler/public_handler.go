package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/firmdirectory/internal/db"
	"github.com/firmdirectory/internal/pricing"
	"github.com/firmdirectory/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	visitorCookieName   = "fd_visitor_id"
	visitorCookieMaxAge = 365 * 24 * 60 * 60
)

// pager carries ready-made links so templates stay free of URL logic.
type pager struct {
	service.Pagination
	PrevURL string
	NextURL string
}

func newPager(p service.Pagination, path string, values url.Values) pager {
	out := pager{Pagination: p}
	if p.HasPrev() {
		out.PrevURL = pageURL(path, values, p.Page-1)
	}
	if p.HasNext() {
		out.NextURL = pageURL(path, values, p.Page+1)
	}
	return out
}

func pageURL(path string, values url.Values, page int) string {
	q := url.Values{}
	for key, vals := range values {
		if key == "page" {
			continue
		}
		for _, v := range vals {
			if strings.TrimSpace(v) != "" {
				q.Add(key, v)
			}
		}
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if encoded := q.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}

func searchQueryFromRequest(c *gin.Context) service.SearchQuery {
	return service.SearchQuery{
		Text:         strings.TrimSpace(c.Query("q")),
		PracticeArea: strings.TrimSpace(c.Query("practiceArea")),
		State:        strings.TrimSpace(c.Query("state")),
		Metro:        strings.TrimSpace(c.Query("metro")),
		Tier:         strings.TrimSpace(c.Query("tier")),
		Page:         parsePositiveInt(c.Query("page"), 1),
		PerPage:      parsePositiveInt(c.Query("perPage"), 0),
	}
}

// ShowHome renders the landing page with featured firms, practice areas and recent posts.
func (a *API) ShowHome(c *gin.Context) {
	featured, err := a.firms.Featured(6)
	if err != nil {
		c.Error(err)
	}
	areas, err := a.practiceAreas.List()
	if err != nil {
		c.Error(err)
	}
	posts, err := a.blog.Latest(3)
	if err != nil {
		c.Error(err)
	}
	states, err := a.locations.ListStates()
	if err != nil {
		c.Error(err)
	}

	a.renderHTML(c, http.StatusOK, "home.html", gin.H{
		"featured":      featured,
		"practiceAreas": areas,
		"posts":         posts,
		"states":        states,
	})
}

// ShowFirmSearch renders the search page; it accepts the same parameters as /api/search.
func (a *API) ShowFirmSearch(c *gin.Context) {
	query := searchQueryFromRequest(c)
	result, err := a.search.Search(query)
	if err != nil {
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "firms.html", gin.H{
			"title": "Find a law firm",
			"error": "Search is temporarily unavailable",
			"query": query,
		})
		return
	}

	areas, err := a.practiceAreas.List()
	if err != nil {
		c.Error(err)
	}
	states, err := a.locations.ListStates()
	if err != nil {
		c.Error(err)
	}

	a.renderHTML(c, http.StatusOK, "firms.html", gin.H{
		"title":         "Find a law firm",
		"query":         query,
		"firms":         result.Items,
		"pager":         newPager(result.Pagination, "/firms", c.Request.URL.Query()),
		"practiceAreas": areas,
		"states":        states,
		"tiers":         a.pricingTiers(c),
	})
}

// ShowFirmProfile renders a published firm and records the visit.
func (a *API) ShowFirmProfile(c *gin.Context) {
	a.showFirmProfile(c, http.StatusOK, service.LeadInput{}, nil)
}

func (a *API) showFirmProfile(c *gin.Context, status int, form service.LeadInput, errs map[string]string) {
	firm, err := a.firms.GetBySlug(c.Param("slug"), true)
	if err != nil {
		if errors.Is(err, service.ErrFirmNotFound) {
			a.renderNotFound(c)
			return
		}
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error"})
		return
	}

	var pageViews uint64
	if a.analytics != nil && c.Request.Method == http.MethodGet {
		visitorID := a.ensureVisitorID(c)
		if stats, recordErr := a.analytics.RecordFirmView(firm.ID, visitorID, time.Now().UTC()); recordErr == nil {
			pageViews = stats.PageViews
		} else {
			c.Error(recordErr) // 不中断渲染，但记录错误
		}
	}

	var tier pricing.Tier
	if cfg, err := a.pricing.Load(); err == nil {
		tier, _ = cfg.Tier(firm.Tier)
	} else {
		c.Error(err)
	}

	a.renderHTML(c, status, "firm_detail.html", gin.H{
		"title":        firm.Name,
		"firm":         firm,
		"description":  markdownOrEmpty(firm.Description, func(err error) { c.Error(err) }),
		"headquarters": firm.Headquarters(),
		"tier":         tier,
		"pageViews":    pageViews,
		"form":         form,
		"errors":       errs,
		"contacted":    c.Query("contacted") == "1",
	})
}

// ShowLawyerProfile renders a lawyer of a published firm.
func (a *API) ShowLawyerProfile(c *gin.Context) {
	lawyer, err := a.lawyers.GetBySlug(c.Param("slug"), true)
	if err != nil {
		if errors.Is(err, service.ErrLawyerNotFound) {
			a.renderNotFound(c)
			return
		}
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error"})
		return
	}

	a.renderHTML(c, http.StatusOK, "lawyer_detail.html", gin.H{
		"title":  lawyer.FullName(),
		"lawyer": lawyer,
		"bio":    markdownOrEmpty(lawyer.Bio, func(err error) { c.Error(err) }),
	})
}

// ShowPracticeAreas lists every practice area.
func (a *API) ShowPracticeAreas(c *gin.Context) {
	areas, err := a.practiceAreas.List()
	if err != nil {
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error"})
		return
	}

	a.renderHTML(c, http.StatusOK, "practice_areas.html", gin.H{
		"title":         "Practice areas",
		"practiceAreas": areas,
	})
}

// ShowPracticeArea lists the firms and posts of one practice area.
func (a *API) ShowPracticeArea(c *gin.Context) {
	area, err := a.practiceAreas.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPracticeAreaNotFound) {
			a.renderNotFound(c)
			return
		}
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error"})
		return
	}

	query := service.SearchQuery{
		PracticeArea: area.Slug,
		State:        strings.TrimSpace(c.Query("state")),
		Page:         parsePositiveInt(c.Query("page"), 1),
	}
	result, err := a.search.Search(query)
	if err != nil {
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error"})
		return
	}

	posts, err := a.blog.List(service.BlogFilter{Status: db.StatusPublished, PracticeArea: area.Slug, PerPage: 3})
	if err != nil {
		c.Error(err)
		posts = &service.BlogListResult{}
	}

	a.renderHTML(c, http.StatusOK, "practice_area_detail.html", gin.H{
		"title":        area.Name + " lawyers",
		"practiceArea": area,
		"firms":        result.Items,
		"pager":        newPager(result.Pagination, "/practice-areas/"+area.Slug, c.Request.URL.Query()),
		"posts":        posts.Posts,
	})
}

// ShowLocations lists states and their metros.
func (a *API) ShowLocations(c *gin.Context) {
	states, err := a.locations.ListStates()
	if err != nil {
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error"})
		return
	}

	a.renderHTML(c, http.StatusOK, "locations.html", gin.H{
		"title":  "Browse by location",
		"states": states,
	})
}

// ShowStateLocation lists published firms with an office in the state.
func (a *API) ShowStateLocation(c *gin.Context) {
	state, err := a.locations.GetStateBySlug(c.Param("state"))
	if err != nil {
		a.locationLookupFailed(c, err)
		return
	}
	a.renderLocation(c, state, nil)
}

// ShowMetroLocation lists published firms with an office in the metro.
func (a *API) ShowMetroLocation(c *gin.Context) {
	state, err := a.locations.GetStateBySlug(c.Param("state"))
	if err != nil {
		a.locationLookupFailed(c, err)
		return
	}
	metro, err := a.locations.GetMetroBySlug(state.ID, c.Param("metro"))
	if err != nil {
		a.locationLookupFailed(c, err)
		return
	}
	a.renderLocation(c, state, metro)
}

func (a *API) locationLookupFailed(c *gin.Context, err error) {
	if errors.Is(err, service.ErrStateNotFound) || errors.Is(err, service.ErrMetroNotFound) {
		a.renderNotFound(c)
		return
	}
	c.Error(err)
	a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error"})
}

func (a *API) renderLocation(c *gin.Context, state *db.State, metro *db.Metro) {
	query := service.SearchQuery{
		State:        state.Code,
		PracticeArea: strings.TrimSpace(c.Query("practiceArea")),
		Page:         parsePositiveInt(c.Query("page"), 1),
	}
	title := "Law firms in " + state.Name
	path := "/locations/" + state.Slug
	if metro != nil {
		query.Metro = metro.Slug
		title = "Law firms in " + metro.Name + ", " + state.Code
		path += "/" + metro.Slug
	}

	result, err := a.search.Search(query)
	if err != nil {
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error"})
		return
	}

	a.renderHTML(c, http.StatusOK, "location_detail.html", gin.H{
		"title": title,
		"state": state,
		"metro": metro,
		"firms": result.Items,
		"pager": newPager(result.Pagination, path, c.Request.URL.Query()),
	})
}

// ShowBlog lists published posts.
func (a *API) ShowBlog(c *gin.Context) {
	result, err := a.blog.List(service.BlogFilter{
		Status:       db.StatusPublished,
		Search:       c.Query("q"),
		PracticeArea: c.Query("practiceArea"),
		Page:         parsePositiveInt(c.Query("page"), 1),
	})
	if err != nil {
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error"})
		return
	}

	a.renderHTML(c, http.StatusOK, "blog.html", gin.H{
		"title": "Legal insights",
		"posts": result.Posts,
		"pager": newPager(result.Pagination, "/blog", c.Request.URL.Query()),
	})
}

// ShowBlogPost renders one published post.
func (a *API) ShowBlogPost(c *gin.Context) {
	post, err := a.blog.GetBySlug(c.Param("slug"), true)
	if err != nil {
		if errors.Is(err, service.ErrBlogPostNotFound) {
			a.renderNotFound(c)
			return
		}
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error"})
		return
	}

	a.renderHTML(c, http.StatusOK, "blog_post.html", gin.H{
		"title":   post.Title,
		"post":    post,
		"content": markdownOrEmpty(post.Content, func(err error) { c.Error(err) }),
	})
}

// ShowPage renders a published standalone page.
func (a *API) ShowPage(c *gin.Context) {
	page, err := a.pages.GetBySlug(c.Param("slug"), true)
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			a.renderNotFound(c)
			return
		}
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error"})
		return
	}

	a.renderHTML(c, http.StatusOK, "page.html", gin.H{
		"title":   page.Title,
		"page":    page,
		"content": markdownOrEmpty(page.Content, func(err error) { c.Error(err) }),
	})
}

// ShowPricing renders the listing tiers.
func (a *API) ShowPricing(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "pricing.html", gin.H{
		"title": "Listing plans",
		"tiers": a.pricingTiers(c),
	})
}

// NotFound answers unmatched routes with JSON for API paths and HTML otherwise.
func (a *API) NotFound(c *gin.Context) {
	path := c.Request.URL.Path
	if strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/admin/api/") {
		respondError(c, http.StatusNotFound, "not found")
		return
	}
	a.renderNotFound(c)
}

func (a *API) renderNotFound(c *gin.Context) {
	a.renderHTML(c, http.StatusNotFound, "not_found.html", gin.H{
		"title": "Page not found",
	})
}

func (a *API) pricingTiers(c *gin.Context) []pricing.Tier {
	cfg, err := a.pricing.Load()
	if err != nil {
		c.Error(err)
		return pricing.Defaults().Tiers
	}
	return cfg.Tiers
}

func (a *API) ensureVisitorID(c *gin.Context) string {
	if id, err := c.Cookie(visitorCookieName); err == nil && strings.TrimSpace(id) != "" {
		return id
	}

	visitorID := uuid.NewString()
	secure := c.Request.TLS != nil

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     visitorCookieName,
		Value:    visitorID,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		MaxAge:   visitorCookieMaxAge,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		SameSite: http.SameSiteLaxMode,
	})

	return visitorID
}
