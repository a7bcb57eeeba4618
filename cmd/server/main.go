package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"course_api/internal/app/di"
	"course_api/internal/app/router"
	"course_api/internal/app/seed"
	authadapters "course_api/internal/feature/auth/adapters"
	authhandler "course_api/internal/feature/auth/transport/handler"
	authusecase "course_api/internal/feature/auth/usecase"
	coursehandler "course_api/internal/feature/courses/transport/handler"
	courseusecase "course_api/internal/feature/courses/usecase"
	"course_api/internal/platform/config"
	"course_api/internal/platform/db"
	platformhandler "course_api/internal/platform/http/handler"
	"course_api/internal/platform/logger"
	"course_api/internal/platform/password"
	"course_api/internal/platform/redis"
	"course_api/internal/platform/storage"
)

// shutdownTimeout bounds the drain of in-flight requests.
const shutdownTimeout = 10 * time.Second

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Init(os.Stdout, cfg.IsDevelopment(), cfg.DBEnableLogging)
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	gdb, err := db.Open(db.ConfigFrom(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	if err := db.ResetSchema(ctx, gdb); err != nil {
		return err
	}
	sqlxDB, err := db.SQLX(gdb, cfg.DBDriver)
	if err != nil {
		return err
	}
	store := storage.NewContext(sqlxDB)

	// Redis
	var rdb *redisv9.Client
	checks := []platformhandler.Check{sqlxDB.PingContext}
	if cfg.RedisEnabled() {
		client, err := redis.NewRedisClient(ctx, redis.Options{Addr: cfg.RedisAddr(), Password: cfg.RedisPassword})
		if err != nil {
			slog.Warn("Redis unavailable. Running without cache.")
		} else {
			rdb = client
			checks = append(checks, func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	// Repository
	userRepo := authadapters.NewUserRepository(store)
	courseRepo := di.NewCourseRepository(rdb, store, cfg.CacheTTL)

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, password.NewBcryptHasher(bcrypt.DefaultCost))
	courseUC := courseusecase.NewCourseUsecase(courseRepo)

	// Seed
	data, err := seed.Default()
	if err != nil {
		return err
	}
	if err := seed.Load(ctx, data, authUC, courseRepo); err != nil {
		return err
	}

	// ルータ生成
	r := router.NewRouter(router.Deps{
		Users:         authhandler.NewUserHandler(authUC),
		Courses:       coursehandler.NewCourseHandler(courseUC),
		Authenticator: authUC,
		EmailInUse:    authUC.EmailInUse,
		HealthChecks:  checks,
		CORSOrigins:   cfg.CORSOrigins(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "port", cfg.Port, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
