package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/firmdirectory/internal/db"
	"github.com/firmdirectory/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/rs/zerolog"
	"gorm.io/gorm/logger"
)

// stubHTMLRender records the last template rendered instead of executing it.
type stubHTMLRender struct {
	last *stubHTMLInstance
}

type stubHTMLInstance struct {
	name string
	data interface{}
}

func (r *stubHTMLRender) Instance(name string, data interface{}) render.Render {
	r.last = &stubHTMLInstance{name: name, data: data}
	return r.last
}

func (r *stubHTMLInstance) Render(http.ResponseWriter) error {
	return nil
}

func (r *stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

func (r *stubHTMLRender) value(t *testing.T, key string) interface{} {
	t.Helper()
	if r.last == nil {
		t.Fatal("no template was rendered")
	}
	data, ok := r.last.data.(gin.H)
	if !ok {
		t.Fatalf("unexpected template data type %T", r.last.data)
	}
	return data[key]
}

type analyticsStub struct {
	overviewLimit int
	views         []uint
}

func (a *analyticsStub) Overview(limit int) (service.SiteOverview, error) {
	a.overviewLimit = limit
	return service.SiteOverview{TotalPageViews: 42}, nil
}

func (a *analyticsStub) FirmStatsMap(ids []uint) (map[uint]*db.FirmStatistic, error) {
	out := make(map[uint]*db.FirmStatistic, len(ids))
	for _, id := range ids {
		out[id] = &db.FirmStatistic{FirmID: id, PageViews: 3}
	}
	return out, nil
}

func (a *analyticsStub) RecordFirmView(firmID uint, _ string, _ time.Time) (*db.FirmStatistic, error) {
	a.views = append(a.views, firmID)
	return &db.FirmStatistic{FirmID: firmID, PageViews: uint64(len(a.views))}, nil
}

type notifierStub struct {
	err         error
	nominations int
	leads       int
}

func (n *notifierStub) NominationReceived(context.Context, *db.Nomination) error {
	n.nominations++
	return n.err
}

func (n *notifierStub) LeadReceived(context.Context, *db.Lead) error {
	n.leads++
	return n.err
}

var handlerDBCounter atomic.Int64

type testEnv struct {
	api      *API
	router   *gin.Engine
	html     *stubHTMLRender
	notify   *notifierStub
	stats    *analyticsStub
	upload   string
	password string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", handlerDBCounter.Add(1))
	gdb, err := db.Open("sqlite", dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if err := db.EnsureUser(gdb, "admin", "s3cret-pass"); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	uploadDir := t.TempDir()
	api := NewAPI(gdb, Options{
		UploadDir:   uploadDir,
		UploadURL:   "/static/uploads",
		PricingPath: filepath.Join(t.TempDir(), "pricing.json"),
		SiteName:    "Test Directory",
		AdminEmail:  "admin@example.com",
		Logger:      zerolog.Nop(),
	})
	notify := &notifierStub{}
	stats := &analyticsStub{}
	api.notify = notify
	api.analytics = stats

	html := &stubHTMLRender{}
	r := gin.New()
	r.HTMLRender = html
	r.Use(sessions.Sessions("firmdirectory_session", cookie.NewStore([]byte("test-secret"))))

	r.GET("/nominate", api.ShowNominationForm)
	r.POST("/nominate", api.SubmitNominationForm)
	r.GET("/firms", api.ShowFirmSearch)
	r.GET("/firms/:slug", api.ShowFirmProfile)
	r.POST("/firms/:slug/contact", api.SubmitFirmContactForm)
	r.GET("/locations/:state/:metro", api.ShowMetroLocation)
	r.GET("/pages/:slug", api.ShowPage)
	r.GET("/api/search", api.SearchFirms)
	r.GET("/api/firms/:slug", api.GetPublicFirm)
	r.POST("/api/nominations", api.SubmitNomination)
	r.POST("/api/leads", api.SubmitLead)
	r.POST("/api/admin/auth", api.CreateSession)
	r.DELETE("/api/admin/auth", api.DestroySession)
	r.POST("/admin/login", api.Login)

	admin := r.Group("/admin", AuthRequired())
	admin.GET("/dashboard", api.ShowDashboard)
	admin.GET("/firms", api.ShowFirmList)
	admin.GET("/firms/:id/edit", api.ShowFirmEdit)
	adminAPI := admin.Group("/api")
	adminAPI.POST("/firms", api.CreateFirm)
	adminAPI.GET("/firms/:id", api.GetFirm)
	adminAPI.PUT("/firms/:id", api.UpdateFirm)
	adminAPI.DELETE("/firms/:id", api.DeleteFirm)
	adminAPI.POST("/firms/:id/logo", api.UploadFirmLogo)
	adminAPI.POST("/firms/:id/offices", api.CreateOffice)
	adminAPI.POST("/lawyers", api.CreateLawyer)
	adminAPI.POST("/practice-areas", api.CreatePracticeArea)
	adminAPI.DELETE("/practice-areas/:id", api.DeletePracticeArea)
	adminAPI.POST("/states", api.CreateState)
	adminAPI.POST("/states/:id/metros", api.CreateMetro)
	adminAPI.POST("/pages", api.CreatePage)
	adminAPI.POST("/blog", api.CreateBlogPost)
	adminAPI.POST("/blog/:id/publish", api.PublishBlogPost)
	adminAPI.PUT("/nominations/:id/review", api.ReviewNomination)
	adminAPI.POST("/nominations/:id/convert", api.ConvertNomination)
	adminAPI.PUT("/leads/:id/status", api.UpdateLeadStatus)
	adminAPI.GET("/pricing", api.GetPricing)
	adminAPI.PUT("/pricing", api.UpdatePricing)
	adminAPI.PUT("/settings", api.UpdateSystemSettings)

	return &testEnv{
		api:      api,
		router:   r,
		html:     html,
		notify:   notify,
		stats:    stats,
		upload:   uploadDir,
		password: "s3cret-pass",
	}
}

// login returns the session cookie of an authenticated admin.
func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/admin/auth", gin.H{"username": "admin", "password": e.password}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", rr.Code, rr.Body.String())
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == "firmdirectory_session" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, session *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != nil {
		req.AddCookie(session)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}

// seedFirm creates a firm through the service layer.
func (e *testEnv) seedFirm(t *testing.T, input service.FirmInput) *db.Firm {
	t.Helper()
	firm, err := e.api.firms.Create(input)
	if err != nil {
		t.Fatalf("failed to seed firm: %v", err)
	}
	return firm
}

var errNotifyDown = errors.New("mail provider unavailable")
