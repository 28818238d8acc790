package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"billboardwatch/internal/service"
	"billboardwatch/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type Service struct {
	logger  *logrus.Logger
	config  *types.Config
	auth    *service.AuthService
	reports *service.ReportService

	allowedOrigins map[string]struct{}

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	auth *service.AuthService,
	reports *service.ReportService,
) (*Service, error) {
	mux := flow.New()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range strings.Split(config.AllowedOrigins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = struct{}{}
		}
	}

	s := &Service{
		logger:  logger,
		config:  config,
		auth:    auth,
		reports: reports,

		allowedOrigins: allowedOrigins,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.CORSMiddleware)
	r.Use(s.LoggingMiddleware)
	r.Use(s.MetricsMiddleware)

	r.HandleFunc("/api/health", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", promhttp.Handler(), http.MethodGet)

	r.HandleFunc("/api/auth/register", s.handleRegister, http.MethodPost)
	r.HandleFunc("/api/auth/login", s.handleLogin, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/api/auth/me", s.handleMe, http.MethodGet)

		r.HandleFunc("/api/reports", s.handleListReports, http.MethodGet)
		r.HandleFunc("/api/reports", s.handleCreateReport, http.MethodPost)
		r.HandleFunc("/api/reports/:id", s.handleUpdateReport, http.MethodPut)
		r.HandleFunc("/api/reports/:id", s.handleDeleteReport, http.MethodDelete)
	})
}
