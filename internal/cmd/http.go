package cmd

import (
	"log/slog"

	"github.com/Depado/ginprom"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/leighmacdonald/mcbans/internal/config"
	"github.com/leighmacdonald/mcbans/internal/httphelper"
	sloggin "github.com/samber/slog-gin"
)

func useCors(engine *gin.Engine, conf config.Config) {
	if len(conf.HTTP.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = conf.HTTP.CORSOrigins
		corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
		corsConfig.AllowWildcard = true
		corsConfig.AllowCredentials = true

		engine.Use(cors.New(corsConfig))
	} else {
		slog.Warn("No cors origins defined, disabling")
	}
}

func usePrometheus(engine *gin.Engine) {
	prom := ginprom.New(func(prom *ginprom.Prometheus) {
		prom.Namespace = "mcbans"
		prom.Subsystem = "http"
	})
	engine.Use(prom.Instrument())
}

func useSloggin(engine *gin.Engine, level string) {
	logLevel := slog.LevelError

	switch level {
	case "error":
		logLevel = slog.LevelError
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "info":
		logLevel = slog.LevelInfo
	}

	engine.Use(sloggin.NewWithConfig(slog.Default(), sloggin.Config{
		DefaultLevel: logLevel,
	}))
}

func createRouter(conf config.Config) *gin.Engine {
	if conf.General.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.MaxMultipartMemory = 8 << 24

	useSloggin(engine, conf.Log.Level)
	engine.Use(httphelper.RecoveryHandler())
	useCors(engine, conf)
	usePrometheus(engine)
	engine.Use(httphelper.ErrorHandler())

	return engine
}
