package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pkazlouski/devfolio/backend/internal/config"
	"github.com/pkazlouski/devfolio/backend/internal/infra/httpclient"
	s3infra "github.com/pkazlouski/devfolio/backend/internal/infra/s3"
	"github.com/pkazlouski/devfolio/backend/internal/jobs/cleanup"
	pgrepo "github.com/pkazlouski/devfolio/backend/internal/repo/postgres"
	redrepo "github.com/pkazlouski/devfolio/backend/internal/repo/redis"
	authsvc "github.com/pkazlouski/devfolio/backend/internal/services/auth"
	ghstatssvc "github.com/pkazlouski/devfolio/backend/internal/services/ghstats"
	languagessvc "github.com/pkazlouski/devfolio/backend/internal/services/languages"
	mediasvc "github.com/pkazlouski/devfolio/backend/internal/services/media"
	"github.com/pkazlouski/devfolio/backend/internal/services/playback"
	skillssvc "github.com/pkazlouski/devfolio/backend/internal/services/skills"
	threadssvc "github.com/pkazlouski/devfolio/backend/internal/services/threads"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	cleanupJob *cleanup.Job
	playback   *playback.Registry
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
		if err := pgrepo.Migrate(cfg.Postgres.DSN); err != nil {
			log.Warn("migrations failed, continuing with current schema", zap.Error(err))
		}
	}

	var redisClient *goredis.Client
	if c, err := redrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Warn("redis init failed, continuing in degraded mode", zap.Error(err))
	} else {
		redisClient = c
	}

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	threadRepo := pgrepo.NewThreadRepo(pool)
	commentRepo := pgrepo.NewCommentRepo(pool)
	languageRepo := pgrepo.NewLanguageRepo(pool)
	skillRepo := pgrepo.NewSkillRepo(pool)
	mediaRepo := pgrepo.NewMediaRepo(pool)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	cacheRepo := redrepo.NewCacheRepo(redisClient, cfg.Cache.TTL)

	jwtManager := authsvc.NewJWTManager(cfg.Admin.JWTSecret, cfg.Admin.AccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.SessionTTL)

	mediaStorage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	mediaService := mediasvc.NewService(mediaRepo, mediaStorage)
	mediaService.AttachInvalidator(cacheRepo)
	mediaResolver := mediasvc.NewResolver(mediaStorage, cfg.S3.PublicBaseURL, cfg.S3.Bucket, cfg.Media.PresignTTL)

	threadService := threadssvc.NewService(threadRepo, commentRepo, mediaService)
	threadService.AttachCache(cacheRepo)
	languageService := languagessvc.NewService(languageRepo)
	skillService := skillssvc.NewService(skillRepo)

	githubService := ghstatssvc.NewService(
		httpclient.New(cfg.GitHub.RequestTimeout),
		cfg.GitHub.Token,
		languageService,
		cfg.GitHub.CacheTTL,
		log,
	)

	RegisterRoutes(r, Dependencies{
		AuthService:     authService,
		ThreadService:   threadService,
		LanguageService: languageService,
		SkillService:    skillService,
		MediaService:    mediaService,
		MediaResolver:   mediaResolver,
		GitHubService:   githubService,
		Logger:          log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		cleanupJob: cleanup.NewOrphanThumbnailJob(mediaRepo, mediaStorage, cfg.Cleanup.OrphanAge, log),
		playback:   playback.NewRegistry(),
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// StartCleanup sweeps orphaned thumbnails on an interval until ctx is done.
func (a *App) StartCleanup(ctx context.Context) {
	interval := a.cfg.Cleanup.Interval
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := a.cleanupJob.Run(ctx); err != nil {
					a.logger.Error("orphan thumbnail cleanup failed", zap.Error(err))
				}
			}
		}
	}()
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

// Playback exposes the single active slot registry for embedding frontends.
func (a *App) Playback() *playback.Registry {
	return a.playback
}
