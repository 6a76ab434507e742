package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/config"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/handler"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/repository"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/usecase"
	"github.com/vasapolrittideah/elearning-api/shared/auth"
	"github.com/vasapolrittideah/elearning-api/shared/cache"
	"github.com/vasapolrittideah/elearning-api/shared/mailer"
	"github.com/vasapolrittideah/elearning-api/shared/media"
	"github.com/vasapolrittideah/elearning-api/shared/provider"
	"github.com/vasapolrittideah/elearning-api/shared/utilities"
	"github.com/vasapolrittideah/elearning-api/shared/validation"
)

const (
	jwtAudience         = "elearning"
	healthCheckInterval = 10 * time.Second
)

type App struct {
	httpServer   *http.Server
	healthServer *utilities.HealthServer
	registry     *utilities.ServiceRegistry
	infra        *Infra
	cache        *cache.Cache
	logger       *zerolog.Logger
}

func New(ctx context.Context, cfg *config.LearningServiceConfig, logger *zerolog.Logger) (*App, error) {
	infra, err := setupInfra(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	redisCache := cache.New(infra.Redis, "")

	router, err := setupHTTP(ctx, cfg, infra, redisCache, logger)
	if err != nil {
		_ = infra.Close(ctx)
		return nil, err
	}

	healthServer, err := utilities.NewHealthServer(cfg.GRPCHealthAddr, redisCache.Ping)
	if err != nil {
		_ = infra.Close(ctx)
		return nil, err
	}

	var registry *utilities.ServiceRegistry
	if cfg.Consul.Enabled() {
		registry, err = utilities.NewServiceRegistry(cfg.Consul)
		if err != nil {
			healthServer.Stop()
			_ = infra.Close(ctx)
			return nil, err
		}
	}

	return &App{
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		healthServer: healthServer,
		registry:     registry,
		infra:        infra,
		cache:        redisCache,
		logger:       logger,
	}, nil
}

func setupHTTP(
	ctx context.Context,
	cfg *config.LearningServiceConfig,
	infra *Infra,
	redisCache *cache.Cache,
	logger *zerolog.Logger,
) (http.Handler, error) {
	sender, err := mailer.NewMailer(cfg.SMTP, logger)
	if err != nil {
		return nil, fmt.Errorf("init mailer: %w", err)
	}

	uploader, err := media.NewCloudinaryUploader(cfg.Cloudinary, logger)
	if err != nil {
		return nil, fmt.Errorf("init uploader: %w", err)
	}

	validator, err := validation.New()
	if err != nil {
		return nil, fmt.Errorf("init validator: %w", err)
	}

	jwtAuth := auth.NewJWTAuthenticator(jwtAudience, cfg.Token.Issuer)

	userRepo := repository.NewUserMongoRepository(ctx, logger, infra.DB)
	identityRepo := repository.NewIdentityMongoRepository(ctx, logger, infra.DB)
	courseRepo := repository.NewCourseMongoRepository(ctx, logger, infra.DB)
	questionRepo := repository.NewQuestionMongoRepository(ctx, logger, infra.DB)
	sessionRepo := repository.NewSessionRedisRepository(redisCache)
	activationRepo := repository.NewActivationRedisRepository(redisCache)

	authUsecase := usecase.NewAuthUsecase(
		identityRepo,
		sessionRepo,
		userRepo,
		jwtAuth,
		provider.NewGoogleOAuthProvider(cfg.GoogleClientID),
		cfg.Token,
	)
	activationUsecase := usecase.NewActivationUsecase(
		userRepo,
		identityRepo,
		activationRepo,
		sender,
		jwtAuth,
		cfg.Token,
		logger,
	)
	userUsecase := usecase.NewUserUsecase(userRepo, identityRepo, sessionRepo, uploader, logger)
	courseUsecase := usecase.NewCourseUsecase(
		courseRepo,
		questionRepo,
		redisCache,
		cfg.CourseCacheTTL,
		uploader,
		sender,
		logger,
	)

	return handler.NewRouter(handler.RouterDeps{
		AuthUsecase:       authUsecase,
		ActivationUsecase: activationUsecase,
		UserUsecase:       userUsecase,
		CourseUsecase:     courseUsecase,
		Validator:         validator,
		Cookies:           handler.NewCookieOptions(cfg),
		AllowedOrigins:    cfg.AllowedOrigins,
		Logger:            logger,
	}), nil
}

// Run serves HTTP and gRPC health checks until Shutdown is called.
func (a *App) Run() error {
	go func() {
		if err := a.healthServer.Serve(); err != nil {
			a.logger.Error().Err(err).Msg("grpc health server stopped")
		}
	}()
	go a.healthServer.Watch(healthCheckInterval, func(err error) {
		a.logger.Warn().Err(err).Msg("health check failed")
	})

	if a.registry != nil {
		if err := a.registry.Register(a.httpServer.Addr, a.healthServer.Addr()); err != nil {
			return fmt.Errorf("register with consul: %w", err)
		}
		a.logger.Info().Msg("registered with consul")
	}

	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	if a.registry != nil {
		if err := a.registry.Deregister(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to deregister from consul")
		}
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	a.healthServer.Stop()

	a.logger.Info().Interface("cache", a.cache.GetStats()).Msg("cache stats at shutdown")

	return a.infra.Close(ctx)
}
