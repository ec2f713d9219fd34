package app

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/alwiirfani/chemicals-sub000/config"
	"github.com/alwiirfani/chemicals-sub000/db"
	"github.com/alwiirfani/chemicals-sub000/logger"
	"github.com/alwiirfani/chemicals-sub000/session"
	"github.com/alwiirfani/chemicals-sub000/storage"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router  *gin.Engine
	DB      *gorm.DB
	RDB     *redis.Client
	Log     *slog.Logger
	Storage *storage.Uploader
	Config  config.Config

	appSess *session.AppSessionStore
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }

func MustNew(cfg config.Config) *App {
	logg := logger.New(cfg.Server.Env)

	// --- DB: Postgres ---
	dbConn := db.ConnectDB(cfg.Database)

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	// --- S3 ---
	store, err := storage.NewUploader(cfg.S3)
	if err != nil {
		log.Fatalf("s3: %v", err)
	}

	// --- Gin ---
	if cfg.Server.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)
	RegisterMetrics(r)

	a := &App{
		Router: r, DB: dbConn, RDB: rdb, Log: logg, Storage: store, Config: cfg,
		appSess: session.NewAppSessionStore(rdb, cfg.Session.TTL()),
	}
	return a
}

func (a *App) Close() { _ = a.RDB.Close() }
