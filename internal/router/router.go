package router

import (
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/firmdirectory/internal/handler"
	"github.com/firmdirectory/internal/logger"
	"github.com/firmdirectory/internal/metrics"
	"github.com/firmdirectory/web"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const sessionName = "firmdirectory_session"

// Options 配置路由层依赖
type Options struct {
	SessionSecret string
	UploadDir     string
	UploadURLPath string
	Metrics       *metrics.Metrics
	Logger        zerolog.Logger
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(logger.RequestID(), logger.Middleware(opts.Logger), gin.Recovery())
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}

	// 配置会话中间件
	secret := opts.SessionSecret
	if secret == "" {
		secret = "firmdirectory-dev-secret"
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions(sessionName, store))

	tmpl := template.Must(template.New("").Funcs(templateFuncs()).ParseFS(web.FS, web.TemplatePatterns...))
	r.SetHTMLTemplate(tmpl)

	// 静态文件服务
	assets, err := fs.Sub(web.FS, "static")
	if err != nil {
		panic(err)
	}
	r.StaticFS("/assets", http.FS(assets))

	uploadDir := opts.UploadDir
	if uploadDir == "" {
		uploadDir = "web/static/uploads"
	}
	uploadURL := normalizeURLPath(opts.UploadURLPath, "/static/uploads")
	r.Static(uploadURL, uploadDir)
	if uploadURL != "/uploads" {
		r.Static("/uploads", uploadDir)
	}

	r.GET("/healthz", api.HealthCheck)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	// 公开页面
	r.GET("/", api.ShowHome)
	r.GET("/firms", api.ShowFirmSearch)
	r.GET("/firms/:slug", api.ShowFirmProfile)
	r.POST("/firms/:slug/contact", api.SubmitFirmContactForm)
	r.GET("/lawyers/:slug", api.ShowLawyerProfile)
	r.GET("/practice-areas", api.ShowPracticeAreas)
	r.GET("/practice-areas/:slug", api.ShowPracticeArea)
	r.GET("/locations", api.ShowLocations)
	r.GET("/locations/:state", api.ShowStateLocation)
	r.GET("/locations/:state/:metro", api.ShowMetroLocation)
	r.GET("/blog", api.ShowBlog)
	r.GET("/blog/:slug", api.ShowBlogPost)
	r.GET("/pages/:slug", api.ShowPage)
	r.GET("/nominate", api.ShowNominationForm)
	r.POST("/nominate", api.SubmitNominationForm)
	r.GET("/pricing", api.ShowPricing)

	// 公开 JSON API
	public := r.Group("/api")
	{
		public.GET("/search", api.SearchFirms)
		public.GET("/firms/:slug", api.GetPublicFirm)
		public.GET("/practice-areas", api.GetPracticeAreas)
		public.GET("/locations", api.GetLocations)
		public.GET("/pricing", api.GetPricing)
		public.POST("/nominations", api.SubmitNomination)
		public.POST("/leads", api.SubmitLead)
		public.POST("/admin/auth", api.CreateSession)
		public.DELETE("/admin/auth", api.DestroySession)
	}

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.GET("", func(c *gin.Context) { c.Redirect(http.StatusFound, "/admin/dashboard") })
		admin.GET("/login", api.ShowLoginPage)
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)

		// 需要认证的后台路由
		auth := admin.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/dashboard", api.ShowDashboard)
			auth.GET("/firms", api.ShowFirmList)
			auth.GET("/firms/new", api.ShowFirmEdit)
			auth.GET("/firms/:id/edit", api.ShowFirmEdit)
			auth.GET("/lawyers", api.ShowLawyerList)
			auth.GET("/practice-areas", api.ShowPracticeAreaList)
			auth.GET("/pages", api.ShowPageList)
			auth.GET("/blog", api.ShowBlogList)
			auth.GET("/nominations", api.ShowNominationList)
			auth.GET("/leads", api.ShowLeadList)
			auth.GET("/pricing", api.ShowPricingEditor)
			auth.GET("/settings", api.ShowSystemSettings)

			// API路由
			adminAPI := auth.Group("/api")
			{
				adminAPI.GET("/stats", api.GetDashboardStats)

				adminAPI.GET("/firms", api.ListFirms)
				adminAPI.POST("/firms", api.CreateFirm)
				adminAPI.GET("/firms/:id", api.GetFirm)
				adminAPI.PUT("/firms/:id", api.UpdateFirm)
				adminAPI.DELETE("/firms/:id", api.DeleteFirm)
				adminAPI.POST("/firms/:id/logo", api.UploadFirmLogo)
				adminAPI.GET("/firms/:id/offices", api.ListFirmOffices)
				adminAPI.POST("/firms/:id/offices", api.CreateOffice)
				adminAPI.PUT("/offices/:id", api.UpdateOffice)
				adminAPI.DELETE("/offices/:id", api.DeleteOffice)

				adminAPI.GET("/lawyers", api.ListLawyers)
				adminAPI.POST("/lawyers", api.CreateLawyer)
				adminAPI.GET("/lawyers/:id", api.GetLawyer)
				adminAPI.PUT("/lawyers/:id", api.UpdateLawyer)
				adminAPI.DELETE("/lawyers/:id", api.DeleteLawyer)

				adminAPI.GET("/practice-areas", api.GetPracticeAreas)
				adminAPI.POST("/practice-areas", api.CreatePracticeArea)
				adminAPI.PUT("/practice-areas/order", api.ReorderPracticeAreas)
				adminAPI.PUT("/practice-areas/:id", api.UpdatePracticeArea)
				adminAPI.DELETE("/practice-areas/:id", api.DeletePracticeArea)

				adminAPI.GET("/locations", api.GetLocations)
				adminAPI.POST("/states", api.CreateState)
				adminAPI.POST("/states/:id/metros", api.CreateMetro)
				adminAPI.DELETE("/metros/:id", api.DeleteMetro)

				adminAPI.GET("/pages", api.ListPages)
				adminAPI.POST("/pages", api.CreatePage)
				adminAPI.GET("/pages/:id", api.GetPage)
				adminAPI.PUT("/pages/:id", api.UpdatePage)
				adminAPI.DELETE("/pages/:id", api.DeletePage)

				adminAPI.GET("/blog", api.ListBlogPosts)
				adminAPI.POST("/blog", api.CreateBlogPost)
				adminAPI.GET("/blog/:id", api.GetBlogPost)
				adminAPI.PUT("/blog/:id", api.UpdateBlogPost)
				adminAPI.DELETE("/blog/:id", api.DeleteBlogPost)
				adminAPI.POST("/blog/:id/publish", api.PublishBlogPost)
				adminAPI.POST("/blog/:id/unpublish", api.UnpublishBlogPost)
				adminAPI.POST("/blog/:id/cover", api.UploadBlogCover)

				adminAPI.GET("/nominations", api.ListNominations)
				adminAPI.GET("/nominations/:id", api.GetNomination)
				adminAPI.PUT("/nominations/:id/review", api.ReviewNomination)
				adminAPI.POST("/nominations/:id/convert", api.ConvertNomination)
				adminAPI.DELETE("/nominations/:id", api.DeleteNomination)

				adminAPI.GET("/leads", api.ListLeads)
				adminAPI.PUT("/leads/:id/status", api.UpdateLeadStatus)
				adminAPI.DELETE("/leads/:id", api.DeleteLead)

				adminAPI.GET("/pricing", api.GetPricing)
				adminAPI.PUT("/pricing", api.UpdatePricing)

				adminAPI.GET("/settings", api.GetSystemSettings)
				adminAPI.PUT("/settings", api.UpdateSystemSettings)
			}
		}
	}

	r.NoRoute(api.NotFound)

	return r
}

func normalizeURLPath(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	if !strings.HasPrefix(value, "/") {
		value = "/" + value
	}
	if len(value) > 1 {
		value = strings.TrimRight(value, "/")
	}
	return value
}
