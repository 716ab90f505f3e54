package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/leighmacdonald/mcbans/internal/config"
	"github.com/leighmacdonald/mcbans/internal/database"
	"github.com/leighmacdonald/mcbans/internal/httphelper"
	"github.com/leighmacdonald/mcbans/internal/punishment"
	"github.com/leighmacdonald/mcbans/internal/report"
	"github.com/leighmacdonald/mcbans/pkg/log"
)

var (
	BuildVersion = "master" //nolint:gochecknoglobals
	BuildCommit  = ""       //nolint:gochecknoglobals
	BuildDate    = ""       //nolint:gochecknoglobals
	SentryDSN    = ""       //nolint:gochecknoglobals
)

type BuildInfo struct {
	BuildVersion string
	Commit       string
	Date         string
}

func Version() BuildInfo {
	return BuildInfo{
		BuildVersion: BuildVersion,
		Commit:       BuildCommit,
		Date:         BuildDate,
	}
}

type MCBans struct {
	config      config.Config
	database    database.Database
	punishments *punishment.Usecase
	enforcer    *punishment.Enforcer
	reports     *report.Workflow
	sentry      *sentry.Client

	logCloser func()
}

func NewMCBans() (*MCBans, error) {
	conf, errConfig := config.Read(cfgFile)
	if errConfig != nil {
		slog.Error("Failed to read config", log.ErrAttr(errConfig))

		return nil, errConfig
	}

	return &MCBans{config: conf}, nil
}

func (m *MCBans) Init(ctx context.Context) error {
	// This is normally set by build time flags, but can be overwritten by the env var.
	if SentryDSN == "" {
		if value, found := os.LookupEnv("SENTRY_DSN"); found && value != "" {
			SentryDSN = value
		}
	}

	m.setupSentry()

	m.logCloser = log.MustCreateLogger(ctx, m.config.Log.File, log.Level(m.config.Log.Level), SentryDSN != "", BuildVersion)

	slog.Info("Starting mcbans...",
		slog.String("version", BuildVersion),
		slog.String("commit", BuildCommit),
		slog.String("date", BuildDate))

	dbConn := database.New(m.config.DB.DSN, m.config.DB.AutoMigrate, m.config.DB.LogQueries)
	if errConnect := dbConn.Connect(ctx); errConnect != nil {
		slog.Error("Cannot initialize database", log.ErrAttr(errConnect))

		return errConnect
	}

	m.database = dbConn

	m.punishments = punishment.NewUsecase(punishment.NewRepository(m.database))
	m.enforcer = punishment.NewEnforcer(m.punishments,
		m.config.General.SiteName,
		m.config.Enforce.AppealURL,
		m.config.Enforce.AnnounceWindow)
	m.reports = report.NewWorkflow(report.NewRepository(m.database))

	return nil
}

func (m *MCBans) setupSentry() {
	if SentryDSN != "" {
		sentryClient, err := log.NewSentryClient(SentryDSN, m.config.Sentry.Tracing,
			m.config.Sentry.TracesSampleRate, BuildVersion, m.config.General.Mode)
		if err != nil {
			slog.Error("Failed to setup sentry client")
		} else {
			slog.Info("Sentry.io support is enabled.")
			m.sentry = sentryClient
		}
	} else {
		slog.Info("Sentry.io support is disabled. To enable at runtime, set SENTRY_DSN.")
	}
}

// StartBackground launches the periodic announcement task. The broadcast text
// is rebuilt from the store on every tick; consumers poll it via the stats
// endpoint or the log stream.
func (m *MCBans) StartBackground(ctx context.Context) {
	go m.announcer(ctx, m.config.Enforce.AnnounceInterval)
}

func (m *MCBans) announcer(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			announcement, errAnnounce := m.enforcer.OnPeriodicTick(ctx)
			if errAnnounce != nil {
				slog.Error("Failed to build announcement", log.ErrAttr(errAnnounce))

				continue
			}

			slog.Info("Broadcast announcement", slog.String("text", announcement))
		}
	}
}

func (m *MCBans) Serve(rootCtx context.Context) error {
	ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := createRouter(m.config)

	// Register all our handlers with router
	punishment.NewHandler(router, m.punishments, m.enforcer)
	report.NewHandler(router, m.reports)

	httpServer := httphelper.NewServer(m.config.HTTP.Addr(), router)

	go func() {
		<-ctx.Done()

		slog.Info("Shutting down HTTP service")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		if errShutdown := httpServer.Shutdown(shutdownCtx); errShutdown != nil { //nolint:contextcheck
			slog.Error("Error shutting down http service", log.ErrAttr(errShutdown))
		}
	}()

	slog.Info("Starting HTTP server", slog.String("address", m.config.HTTP.Addr()))

	errServe := httpServer.ListenAndServe()
	if errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
		slog.Error("HTTP server returned error", log.ErrAttr(errServe))
	}

	<-ctx.Done()

	slog.Info("Exiting...")

	return nil
}

func (m *MCBans) Close(_ context.Context) error {
	if m.database != nil {
		if errClose := m.database.Close(); errClose != nil {
			slog.Error("Failed to close database cleanly", log.ErrAttr(errClose))
		}
	}

	if m.sentry != nil {
		m.sentry.Flush(2 * time.Second)
	}

	if m.logCloser != nil {
		m.logCloser()
	}

	return nil
}
