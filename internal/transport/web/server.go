package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/ibrahim99035/portfolio-server/internal/config"
	"github.com/ibrahim99035/portfolio-server/internal/domain"
	"github.com/ibrahim99035/portfolio-server/internal/resource"
	authv1 "github.com/ibrahim99035/portfolio-server/internal/transport/web/v1/auth"
	"github.com/ibrahim99035/portfolio-server/internal/transport/web/v1/health"
	"github.com/ibrahim99035/portfolio-server/internal/transport/web/v1/linkedin"
	resv1 "github.com/ibrahim99035/portfolio-server/internal/transport/web/v1/resource"
)

// Services — по сервису на коллекцию
type Services struct {
	Certificates *resource.Service
	Images       *resource.Service
	Journey      *resource.Service
	LandingPages *resource.Service
	Linkedin     *resource.Service
	OdooModules  *resource.Service
	Projects     *resource.Service
}

// Auth — зависимости аутентификации HTTP-слоя
type Auth struct {
	Admin  domain.CredentialVerifier
	Tokens domain.TokenManager
}

type Server struct {
	log    *log.Logger
	server *http.Server
	cfg    *config.Config
}

func New(logger *log.Logger, cfg *config.Config, svcs Services, auth Auth, db, cache, storage health.Pinger) *Server {
	sub := func(name string) *log.Logger {
		return log.New(logger.Writer(), logger.Prefix()+"["+name+"] ", logger.Flags())
	}

	healthHandler := &health.Handler{Log: sub("health"), DB: db, Cache: cache, Storage: storage}
	authHandler := &authv1.Handler{Log: sub("auth"), Admin: auth.Admin, Tokens: auth.Tokens}
	linkedinHandler := &linkedin.Handler{Log: sub("linkedin"), Svc: svcs.Linkedin}

	res := func(name string, svc *resource.Service) *resv1.Handler {
		return &resv1.Handler{Log: sub(name), Svc: svc}
	}

	srv := &http.Server{
		Addr: cfg.AppPort,
		Handler: newRouter(routerDeps{
			logger:   logger,
			tokens:   auth.Tokens,
			health:   healthHandler,
			auth:     authHandler,
			linkedin: linkedinHandler,
			certs:    res("certificates", svcs.Certificates),
			images:   res("images", svcs.Images),
			journey:  res("journey", svcs.Journey),
			landing:  res("landing", svcs.LandingPages),
			odoo:     res("odoo", svcs.OdooModules),
			projects: res("projects", svcs.Projects),
		}),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{server: srv, cfg: cfg, log: logger}
}

func (ws *Server) Run() {
	ws.log.Printf("started on %s", ws.server.Addr)
	if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		ws.log.Fatalf("error: %v", err)
	}
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Printf("forced to shutdown: %v", err)
	}
	ws.log.Println("exited gracefully")
}
