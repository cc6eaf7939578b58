package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MarkCarsonDev/PhotoBomb/internal/api/handlers"
	"github.com/MarkCarsonDev/PhotoBomb/internal/api/ws"
	"github.com/MarkCarsonDev/PhotoBomb/internal/auth"
	"github.com/MarkCarsonDev/PhotoBomb/internal/queue"
	"github.com/MarkCarsonDev/PhotoBomb/internal/storage"
)

type RouterConfig struct {
	APIKey   string
	Pool     *pgxpool.Pool
	Photos   storage.PhotoStore
	Accounts storage.AccountStore
	MinIO    *storage.MinIOStore
	Producer *queue.Producer
	Hub      *ws.Hub
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.Pool, cfg.MinIO, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 (with auth)
	v1 := r.Group("/v1")
	v1.Use(auth.APIKeyMiddleware(cfg.APIKey))

	// WebSocket
	v1.GET("/ws", cfg.Hub.HandleWS)

	// Photos
	photoH := handlers.NewPhotoHandler(cfg.Photos, cfg.Accounts, cfg.MinIO, cfg.Producer)
	v1.POST("/photos", photoH.Upload)
	v1.GET("/photos", photoH.List)
	v1.GET("/photos/:id", photoH.Get)
	v1.GET("/photos/:id/content", photoH.Download)

	// Accounts & suggestions
	accountH := handlers.NewAccountHandler(cfg.Accounts)
	v1.GET("/accounts/:uid", accountH.Get)
	v1.POST("/accounts/:uid/verification", photoH.UploadVerification)
	v1.GET("/accounts/:uid/predictions", accountH.ListPredictions)
	v1.POST("/accounts/:uid/predictions/confirm", accountH.Confirm)
	v1.POST("/accounts/:uid/predictions/reject", accountH.Reject)

	return r
}
