package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/firmdirectory/internal/config"
	"github.com/firmdirectory/internal/db"
	"github.com/firmdirectory/internal/handler"
	"github.com/firmdirectory/internal/job"
	"github.com/firmdirectory/internal/logger"
	"github.com/firmdirectory/internal/mailer"
	"github.com/firmdirectory/internal/metrics"
	"github.com/firmdirectory/internal/router"
	"github.com/firmdirectory/internal/seed"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 10 * time.Second

// app 是各子命令共享的运行时依赖，由 PersistentPreRunE 填充。
type app struct {
	cfg config.AppConfig
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "firmdirectory",
		Short:         "Law firm directory web server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}
			a.cfg = cfg
			a.log = logger.New(cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}

	root.AddCommand(a.serveCmd(), a.migrateCmd(), a.seedCmd(), a.adminCmd())
	return root
}

// openDB 打开数据库并执行迁移
func (a *app) openDB() (*gorm.DB, error) {
	gdb, err := db.Open(a.cfg.DatabaseDriver, a.cfg.DSN(), gormlogger.Warn)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

func (a *app) fail(err error, msg string) error {
	a.log.Error().Err(err).Msg(msg)
	return err
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the email worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	gin.SetMode(a.cfg.GinMode)

	gdb, err := a.openDB()
	if err != nil {
		return a.fail(err, "failed to initialize database")
	}
	if err := db.EnsureUser(gdb, a.cfg.AdminUsername, a.cfg.AdminPassword); err != nil {
		return a.fail(err, "failed to ensure admin user")
	}

	// 有 API key 时走 Resend，否则只记录日志
	var delivery mailer.Sender = mailer.NewLogSender(a.log)
	if a.cfg.ResendAPIKey != "" {
		delivery = mailer.NewResendSender(a.cfg.ResendAPIKey, a.cfg.EmailFrom, a.log)
	}

	var m *metrics.Metrics
	if a.cfg.MetricsEnabled {
		m = metrics.New()
	}

	sender := delivery
	var worker backgroundWorker
	if a.cfg.QueueEnabled() {
		client := asynq.NewClient(asynq.RedisClientOpt{Addr: a.cfg.RedisAddr})
		defer client.Close()
		sender = job.NewQueue(client, a.log)
		worker = job.NewWorker(a.cfg.RedisAddr, delivery, m, a.log)
	}

	api := handler.NewAPI(gdb, handler.Options{
		UploadDir:   a.cfg.UploadDir,
		UploadURL:   a.cfg.UploadURLPath,
		PricingPath: a.cfg.PricingPath,
		SiteName:    a.cfg.SiteName,
		AdminEmail:  a.cfg.AdminEmail,
		BaseURL:     a.cfg.SiteBaseURL,
		Sender:      sender,
		Metrics:     m,
		Logger:      a.log,
	})
	engine := router.SetupRouter(api, router.Options{
		SessionSecret: a.cfg.SessionSecret,
		UploadDir:     a.cfg.UploadDir,
		UploadURLPath: a.cfg.UploadURLPath,
		Metrics:       m,
		Logger:        a.log,
	})

	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return a.fail(err, "failed to listen")
	}
	if err := runServer(ctx, a.log, srv, ln, worker); err != nil {
		return a.fail(err, "server stopped with error")
	}
	return nil
}

// backgroundWorker 是 serve 用到的 job.Worker 方法。
type backgroundWorker interface {
	Start() error
	Shutdown()
}

// runServer 先启动 worker 再开始接受请求；ctx 结束时依次关闭 worker 与 HTTP 服务。
// worker 启动失败时关闭 ln 并直接返回。
func runServer(ctx context.Context, log zerolog.Logger, srv *http.Server, ln net.Listener, worker backgroundWorker) error {
	if worker != nil {
		if err := worker.Start(); err != nil {
			ln.Close()
			return fmt.Errorf("start email worker: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if worker != nil {
			worker.Shutdown()
		}
		log.Info().Msg("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.openDB(); err != nil {
				return a.fail(err, "migration failed")
			}
			a.log.Info().Str("driver", a.cfg.DatabaseDriver).Msg("database migrated")
			return nil
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load states, practice areas and demo firms from a YAML fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := seed.Default()
			if file != "" {
				fx, err = seed.LoadFile(file)
			}
			if err != nil {
				return a.fail(err, "failed to load seed fixture")
			}

			gdb, err := a.openDB()
			if err != nil {
				return a.fail(err, "failed to initialize database")
			}
			sum, err := seed.Apply(gdb, fx)
			if err != nil {
				return a.fail(err, "seed failed")
			}
			a.log.Info().
				Int("states", sum.States).
				Int("metros", sum.Metros).
				Int("practice_areas", sum.PracticeAreas).
				Int("firms", sum.Firms).
				Int("lawyers", sum.Lawyers).
				Int("pages", sum.Pages).
				Msg("seed applied")
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML fixture to load (defaults to the embedded demo data)")
	return cmd
}

func (a *app) adminCmd() *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Manage back-office accounts",
	}

	var username, password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account or reset its password",
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := a.openDB()
			if err != nil {
				return a.fail(err, "failed to initialize database")
			}
			user, err := db.SetPassword(gdb, username, password)
			if err != nil {
				return a.fail(err, "failed to save admin account")
			}
			a.log.Info().Uint("id", user.ID).Str("username", user.Username).Msg("admin account saved")
			return nil
		},
	}
	create.Flags().StringVar(&username, "username", "admin", "account name")
	create.Flags().StringVar(&password, "password", "", "new password")
	_ = create.MarkFlagRequired("password")

	admin.AddCommand(create)
	return admin
}
