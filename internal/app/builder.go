package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ibrahim99035/portfolio-server/internal/auth/admin"
	"github.com/ibrahim99035/portfolio-server/internal/auth/token"
	"github.com/ibrahim99035/portfolio-server/internal/config"
	"github.com/ibrahim99035/portfolio-server/internal/domain"
	redisx "github.com/ibrahim99035/portfolio-server/internal/infra/cache/redis"
	"github.com/ibrahim99035/portfolio-server/internal/infra/database/postgres"
	s3storage "github.com/ibrahim99035/portfolio-server/internal/infra/storage/s3"
	"github.com/ibrahim99035/portfolio-server/internal/resource"
	"github.com/ibrahim99035/portfolio-server/internal/transport/web"
)

type App struct {
	config  *config.Config
	server  *web.Server
	log     *log.Logger
	storage domain.MediaStorage
	cache   domain.Cache
	repo    domain.EntityRepo
}

func Build(ctx context.Context) (*App, error) {
	base := log.New(os.Stdout, "[app] ", log.LstdFlags)

	serverLog := log.New(base.Writer(), base.Prefix()+"[server] ", base.Flags())
	pgLog := log.New(base.Writer(), base.Prefix()+"[postgres] ", base.Flags())
	s3Log := log.New(base.Writer(), base.Prefix()+"[s3] ", base.Flags())
	redisLog := log.New(base.Writer(), base.Prefix()+"[redis] ", base.Flags())
	svcLog := log.New(base.Writer(), base.Prefix()+"[resource] ", base.Flags())

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed load config: %w", err)
	}
	base.Printf("\n  configuration: %s-------------------", cfg)

	base.Println("init PostgreSQL")
	pgRepo, err := postgres.NewPGRepo(ctx, pgLog, cfg.GetDSN(), cfg.DBScheme)
	if err != nil {
		return nil, fmt.Errorf("failed init postgres: %w", err)
	}
	base.Println("PostgreSQL is initialized")

	base.Println("init S3 storage")
	s3cfg := s3storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		UseSSL:    cfg.S3UseSSL,
		PathStyle: cfg.S3PathStyle,
		PublicURL: cfg.S3PublicURL,
	}
	s3, err := s3storage.New(ctx, s3cfg, s3Log)
	if err != nil {
		return nil, fmt.Errorf("failed init s3: %w", err)
	}

	base.Println("init Redis")
	rc := redisx.New(redisx.Config{
		Addr:     cfg.RedisAddr,
		DB:       cfg.RedisDB,
		Password: cfg.RedisPassword,
	}, redisLog)
	if err := rc.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed init redis: %w", err)
	}
	base.Println("Redis is initialized")

	// Auth primitives
	verifier := admin.New(cfg.AdminUsername, cfg.AdminPasswordHash)
	tm := token.New(cfg.JWTSecret, cfg.AuthIssuer, cfg.AdminUsername, cfg.AuthTokenTTL)

	base.Println("init Server")
	svc := func(d domain.Descriptor) *resource.Service {
		return resource.New(svcLog, d, pgRepo, rc, s3, cfg.CacheTTL)
	}
	svcs := web.Services{
		Certificates: svc(domain.Certificates),
		Images:       svc(domain.Images),
		Journey:      svc(domain.Journey),
		LandingPages: svc(domain.LandingPages),
		Linkedin:     svc(domain.Linkedin),
		OdooModules:  svc(domain.OdooModules),
		Projects:     svc(domain.PersonalProjects),
	}
	auth := web.Auth{Admin: verifier, Tokens: tm}
	server := web.New(serverLog, cfg, svcs, auth, pgRepo, rc, s3)
	base.Println("Server is initialized")

	base.Println("build ended")
	return &App{
		config:  cfg,
		server:  server,
		log:     base,
		storage: s3,
		repo:    pgRepo,
		cache:   rc}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Println("start application...")
	go a.server.Run()
	<-ctx.Done()
	a.log.Println("stop application...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.server.Close(stopCtx)
	a.repo.Close()
	a.cache.Close()

	return nil
}
