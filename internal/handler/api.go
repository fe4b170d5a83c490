package handler

import (
	"context"
	"strings"
	"time"

	"github.com/firmdirectory/internal/db"
	"github.com/firmdirectory/internal/mailer"
	"github.com/firmdirectory/internal/metrics"
	"github.com/firmdirectory/internal/pricing"
	"github.com/firmdirectory/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// notifier sends the emails that follow a public form submission.
type notifier interface {
	NominationReceived(ctx context.Context, nomination *db.Nomination) error
	LeadReceived(ctx context.Context, lead *db.Lead) error
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db            *gorm.DB
	firms         *service.FirmService
	offices       *service.OfficeService
	lawyers       *service.LawyerService
	practiceAreas *service.PracticeAreaService
	locations     *service.LocationService
	pages         *service.PageService
	blog          *service.BlogService
	nominations   *service.NominationService
	leads         *service.LeadService
	search        *service.SearchService
	auth          *service.AuthService
	stats         *service.StatsService
	analytics     analyticsProvider
	system        *service.SystemSettingService
	pricing       *pricing.Store
	media         *service.MediaStore
	notify        notifier
	metrics       *metrics.Metrics
	logger        zerolog.Logger
}

// Options configures NewAPI.
type Options struct {
	UploadDir   string
	UploadURL   string
	PricingPath string
	SiteName    string
	AdminEmail  string
	BaseURL     string
	// Sender delivers notification emails; nil logs them instead.
	Sender  mailer.Sender
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

type siteViewModel struct {
	Name              string
	Tagline           string
	NotificationEmail string
}

const siteSettingsContextKey = "__site_settings"

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	pricingStore := pricing.NewStore(opts.PricingPath)
	firmService := service.NewFirmService(gdb, pricingStore)
	systemService := service.NewSystemSettingService(gdb, service.SystemSettings{
		SiteName:          opts.SiteName,
		NotificationEmail: opts.AdminEmail,
	})

	sender := opts.Sender
	if sender == nil {
		sender = mailer.NewLogSender(opts.Logger)
	}

	return &API{
		db:            gdb,
		firms:         firmService,
		offices:       service.NewOfficeService(gdb),
		lawyers:       service.NewLawyerService(gdb),
		practiceAreas: service.NewPracticeAreaService(gdb),
		locations:     service.NewLocationService(gdb),
		pages:         service.NewPageService(gdb),
		blog:          service.NewBlogService(gdb),
		nominations:   service.NewNominationService(gdb, firmService),
		leads:         service.NewLeadService(gdb),
		search:        service.NewSearchService(gdb, pricingStore),
		auth:          service.NewAuthService(gdb),
		stats:         service.NewStatsService(gdb),
		analytics:     service.NewAnalyticsService(gdb),
		system:        systemService,
		pricing:       pricingStore,
		media:         service.NewMediaStore(opts.UploadDir, opts.UploadURL),
		notify:        mailer.NewNotifier(sender, systemService, opts.BaseURL, opts.Metrics),
		metrics:       opts.Metrics,
		logger:        opts.Logger,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

func (a *API) siteSettings(c *gin.Context) siteViewModel {
	if cached, exists := c.Get(siteSettingsContextKey); exists {
		if view, ok := cached.(siteViewModel); ok {
			return view
		}
	}

	settings, err := a.system.GetSettings()
	if err != nil {
		c.Error(err)
	}

	view := siteViewModel{
		Name:              strings.TrimSpace(settings.SiteName),
		Tagline:           strings.TrimSpace(settings.Tagline),
		NotificationEmail: strings.TrimSpace(settings.NotificationEmail),
	}
	if view.Name == "" {
		view.Name = "Law Firm Directory"
	}

	c.Set(siteSettingsContextKey, view)
	return view
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	view := a.siteSettings(c)

	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["site"]; !exists {
		payload["site"] = gin.H{
			"name":    view.Name,
			"tagline": view.Tagline,
		}
	}
	if _, exists := payload["siteName"]; !exists {
		payload["siteName"] = view.Name
	}
	if _, exists := payload["title"]; !exists {
		payload["title"] = view.Name
	}
	if _, exists := payload["year"]; !exists {
		payload["year"] = time.Now().Year()
	}

	c.HTML(status, template, payload)
}

// RenderHTML 在向模板渲染时自动附加系统设置中的站点名称与标语。
func (a *API) RenderHTML(c *gin.Context, status int, template string, data gin.H) {
	a.renderHTML(c, status, template, data)
}
