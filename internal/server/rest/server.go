// Package rest is the thin transport shell over the account services. It
// parses and size-limits requests, spools multipart files to a temp dir,
// hands fully parsed inputs to the core, and maps taxonomy errors to HTTP
// status codes. No business rule lives here.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/streamvault/accountd/internal/logging"
	"github.com/streamvault/accountd/internal/server/auth"
	"github.com/streamvault/accountd/internal/server/config"
	"github.com/streamvault/accountd/internal/server/services"
)

const maxMultipartMemory = 16 << 20 // 16 MiB

type Server struct {
	addr     string
	engine   *gin.Engine
	logger   logging.Logger
	accounts *services.AccountService
	sessions *services.SessionService
	issuer   *auth.Issuer
	tempDir  string
}

func NewServer(cfg *config.Config, logger logging.Logger, accounts *services.AccountService, sessions *services.SessionService, issuer *auth.Issuer) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.MaxMultipartMemory = maxMultipartMemory

	s := &Server{
		addr:     cfg.EndpointAddrHTTP,
		engine:   engine,
		logger:   logger.With("module", "rest"),
		accounts: accounts,
		sessions: sessions,
		issuer:   issuer,
		tempDir:  cfg.TempUploadDir,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.engine.Group("/api/v1/accounts")

	api.POST("/register", s.register)
	api.POST("/login", s.login)
	api.POST("/refresh", s.refresh)

	authed := api.Group("", s.requireAccess)
	authed.POST("/logout", s.logout)
	authed.POST("/change-password", s.changePassword)
	authed.PATCH("/profile", s.updateProfile)
	authed.PATCH("/avatar", s.replaceAvatar)
	authed.PATCH("/cover", s.replaceCover)
	authed.GET("/me", s.me)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.engine}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
