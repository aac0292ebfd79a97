// Package web gin server
package web

import (
	"net/http"

	ginMw "github.com/Laisky/gin-middlewares/v7"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	fileCtl "github.com/ssfz/history-vault/internal/web/file/controller"
	historyCtl "github.com/ssfz/history-vault/internal/web/history/controller"
	"github.com/ssfz/history-vault/library/log"
)

// NewServer assembles the API engine: logging, permissive CORS, the
// history and file routes, and a JSON 404 for everything else.
func NewServer(hist *historyCtl.Type, files *fileCtl.Type) *gin.Engine {
	if !gconfig.Shared.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	server := gin.New()
	server.Use(
		gin.Recovery(),
		ginMw.NewLoggerMiddleware(
			ginMw.WithLoggerMwColored(),
			ginMw.WithLevel(log.Logger.Level().String()),
			ginMw.WithLogger(log.Logger.Named("gin")),
		),
		allowCORS,
	)

	server.Any("/health", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "hello, world")
	})

	api := server.Group("/api")
	hist.MountAPI(api)
	files.MountAPI(api)

	server.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})

	return server
}

// RunServer runs the API server until it exits.
func RunServer(addr string, hist *historyCtl.Type, files *fileCtl.Type) {
	server := NewServer(hist, files)
	if err := ginMw.EnableMetric(server); err != nil {
		log.Logger.Panic("enable metric server", zap.Error(err))
	}

	log.Logger.Info("listening on http", zap.String("addr", addr))
	log.Logger.Panic("httpServer exit", zap.Error(server.Run(addr)))
}

// allowCORS emits permissive cross-origin headers on every response
// and short-circuits pre-flight requests with an empty success.
func allowCORS(ctx *gin.Context) {
	ctx.Header("Access-Control-Allow-Origin", "*")
	ctx.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	ctx.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Upload-Key, X-Delete-Key")

	if ctx.Request.Method == http.MethodOptions {
		ctx.AbortWithStatus(http.StatusNoContent)
		return
	}

	ctx.Next()
}
