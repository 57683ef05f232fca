package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/conduit-app/article-service/config"
	"github.com/conduit-app/article-service/internal/auth"
	"github.com/conduit-app/article-service/internal/cache"
	"github.com/conduit-app/article-service/internal/events"
	"github.com/conduit-app/article-service/internal/handlers"
	"github.com/conduit-app/article-service/internal/logger"
	"github.com/conduit-app/article-service/internal/middleware"
	"github.com/conduit-app/article-service/internal/repository"
	"github.com/conduit-app/article-service/internal/routes"
	"github.com/conduit-app/article-service/internal/services"
	"github.com/conduit-app/article-service/internal/store"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zl, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	var st store.Store
	if cfg.Mongo.URI != "" {
		ms, err := store.NewMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection, zl)
		if err != nil {
			zl.Fatalw("mongo init", "err", err)
		}
		defer func() { _ = ms.Disconnect(context.Background()) }()
		st = ms
	} else {
		zl.Warnw("no mongodb uri configured, using in-memory store")
		st = store.NewMemory()
	}

	var cacheCli *cache.Client
	if cfg.Redis.Addr != "" {
		cacheCli, err = cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.TagTTL())
		if err != nil {
			zl.Warnw("redis unavailable, continuing without cache", "err", err)
			cacheCli = nil
		} else {
			defer cacheCli.Close()
		}
	}

	pub := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if pub != nil {
		defer pub.Close()
	}

	users := repository.NewUserRepository(st)
	articles := repository.NewArticleRepository(st)
	comments := repository.NewCommentRepository(st)
	tags := repository.NewTagRepository(st)

	userSvc := services.NewUserService(users, zl)
	articleSvc := services.NewArticleService(articles, users, tags, cacheCli, pub, zl)
	commentSvc := services.NewCommentService(comments, users, zl)
	tagSvc := services.NewTagService(tags, cacheCli, zl)
	relSvc := services.NewRelationshipService(st, pub, zl)

	tokens, err := auth.NewManager(cfg.App.JWTSecret, cfg.TokenTTL())
	if err != nil {
		zl.Fatalw("jwt init", "err", err)
	}
	h := handlers.New(userSvc, articleSvc, commentSvc, tagSvc, relSvc, tokens, zl)

	app := fiber.New(fiber.Config{
		AppName:      "article-service",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	var limiterRedis *middleware.RateLimiter
	if cacheCli != nil {
		limiterRedis = middleware.NewRateLimiter(cacheCli.Cli, "ratelimit", cfg.RateLimit.Limit, cfg.RateWindow())
	} else {
		limiterRedis = middleware.NewRateLimiter(nil, "ratelimit", cfg.RateLimit.Limit, cfg.RateWindow())
	}

	routes.Register(app, h, middleware.RequireAuth(tokens), middleware.OptionalAuth(tokens), limiterRedis)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		if err := app.Listen(addr); err != nil {
			zl.Fatalw("server listen", "err", err)
		}
	}()
	zl.Infow("article-service started", "port", cfg.App.Port, "env", cfg.App.Env)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	zl.Infow("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zl.Errorw("shutdown", "err", err)
	}
}
