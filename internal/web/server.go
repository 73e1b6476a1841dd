// Package web exposes the HTTP surface: project info, the Slack OAuth
// subscription flow, and the health, readiness, and metrics endpoints.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/french-toast-alert-service/internal/adapter/slack"
	"github.com/couchcryptid/french-toast-alert-service/internal/config"
	"github.com/couchcryptid/french-toast-alert-service/internal/domain"
	"github.com/couchcryptid/french-toast-alert-service/internal/observability"
)

const serviceName = "French Toast Alert Service"

// OAuthExchanger trades an authorization code for webhook credentials.
type OAuthExchanger interface {
	Access(ctx context.Context, code string) (domain.Registration, error)
}

// SubscriberRegistrar persists a completed OAuth registration.
type SubscriberRegistrar interface {
	Upsert(ctx context.Context, reg domain.Registration) (domain.Subscriber, error)
}

// RegistrationListener receives new registrations and reports readiness.
type RegistrationListener interface {
	OnSubscriberRegistered(ctx context.Context, sub domain.Subscriber) error
	CheckReadiness(ctx context.Context) error
}

// Server handles the subscription flow and operational endpoints.
type Server struct {
	cfg         *config.Config
	states      *slack.StateTokens
	oauth       OAuthExchanger
	subscribers SubscriberRegistrar
	listener    RegistrationListener
	reporter    *observability.Reporter
	logger      *slog.Logger
	httpServer  *http.Server
}

// NewServer creates the HTTP server with all routes registered.
func NewServer(cfg *config.Config, states *slack.StateTokens, oauth OAuthExchanger,
	subscribers SubscriberRegistrar, listener RegistrationListener,
	reporter *observability.Reporter, logger *slog.Logger) *Server {
	s := &Server{
		cfg:         cfg,
		states:      states,
		oauth:       oauth,
		subscribers: subscribers,
		listener:    listener,
		reporter:    reporter,
		logger:      logger,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.handleHome)
	router.GET("/authenticate", s.handleAuthenticate)
	router.GET("/validate", s.handleValidate)
	router.GET("/healthz", s.handleHealth)
	router.GET("/readyz", s.handleReady)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.httpServer = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":           serviceName,
		"base_url":       s.cfg.BaseURL,
		"github_url":     s.cfg.GithubURL,
		"auth_url":       s.cfg.BaseURL + "/authenticate",
		"toast_link_url": s.cfg.ToastLinkURL,
		"team_scope":     []string{"incoming-webhook"},
	})
}

// handleAuthenticate begins the subscription flow by redirecting the
// browser to Slack's OAuth consent page with a signed state token.
func (s *Server) handleAuthenticate(c *gin.Context) {
	state, err := s.states.Generate()
	if err != nil {
		s.logger.Error("state token generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication unavailable"})
		return
	}

	location := slack.AuthorizeURL(s.cfg.OAuthURL, s.cfg.SlackClientID, s.validateURL(), state)
	c.Redirect(http.StatusFound, location)
}

// handleValidate completes the subscription flow: it verifies the state
// token, exchanges the temporary code for webhook credentials, upserts
// the subscriber, and hands it to the listener for its catch-up alert.
func (s *Server) handleValidate(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		s.reporter.Event("missing_args", map[string]any{"state": state})
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing state or code"})
		return
	}

	if err := s.states.Validate(state); err != nil {
		if errors.Is(err, slack.ErrStateExpired) {
			s.reporter.Event("token_expired", map[string]any{"state": state})
			c.JSON(http.StatusBadRequest, gin.H{"error": "state token expired"})
			return
		}
		s.reporter.Event("token_not_authorized", map[string]any{"state": state})
		c.JSON(http.StatusUnauthorized, gin.H{"error": "state token not authorized"})
		return
	}

	reg, err := s.oauth.Access(c.Request.Context(), code)
	if err != nil {
		s.reporter.Event("oauth_failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusBadRequest, gin.H{"error": "authorization failed"})
		return
	}
	sub, err := s.subscribers.Upsert(c.Request.Context(), reg)
	if err != nil {
		s.logger.Error("subscriber upsert failed", "team", reg.TeamID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	// The registration is already durable; a failed catch-up alert is
	// recovered by the next regular fanout.
	if err := s.listener.OnSubscriberRegistered(c.Request.Context(), sub); err != nil {
		s.logger.Error("initial alert failed", "team", sub.TeamID, "error", err)
	}

	c.Redirect(http.StatusFound, s.cfg.BaseURL+"?success=1")
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.listener.CheckReadiness(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) validateURL() string {
	return s.cfg.BaseURL + "/validate"
}
