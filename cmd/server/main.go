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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	jwttoken "idproof/internal/jwt_token"
	"idproof/internal/kyc/channel"
	"idproof/internal/kyc/decision"
	"idproof/internal/kyc/document"
	"idproof/internal/kyc/handler"
	"idproof/internal/kyc/liveness"
	kycmetrics "idproof/internal/kyc/metrics"
	"idproof/internal/kyc/models"
	"idproof/internal/kyc/orchestrator"
	sessionstore "idproof/internal/kyc/store/session"
	"idproof/internal/kyc/verifier"
	"idproof/internal/platform/config"
	"idproof/internal/platform/httpserver"
	"idproof/internal/platform/logger"
	"idproof/internal/platform/metrics"
	"idproof/internal/platform/middleware"
	"idproof/pkg/platform/audit/publisher"
	"idproof/pkg/platform/circuit"
	"idproof/pkg/platform/privacy"
)

const auditBufferSize = 1024

// main wires the verification engine to its stores, the remote verifier and the
// HTTP surface, then runs until SIGINT or SIGTERM.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	kycMetrics := kycmetrics.New(reg)
	httpMetrics := metrics.New(reg)

	deps, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close(log)

	auditPublisher := publisher.NewPublisher(deps.auditStore,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	breaker := circuit.New("verifier",
		circuit.WithFailureThreshold(cfg.Verifier.FailureThreshold),
		circuit.WithCooldown(cfg.Verifier.BreakerCooldown),
	)
	client := verifier.New(cfg.Verifier.BaseURL,
		verifier.WithTimeout(cfg.Verifier.Timeout),
		verifier.WithAPIKey(cfg.Verifier.APIKey),
		verifier.WithBreaker(breaker),
		verifier.WithLogger(log),
	)

	steps := orchestrator.Steps{
		Channel: channel.New(client, deps.codeStore,
			channel.WithPolicy(channel.Policy{
				ResendCooldown: cfg.Channel.ResendCooldown,
				CodeTTL:        cfg.Channel.CodeTTL,
				MaxAttempts:    cfg.Channel.MaxAttempts,
			}),
			channel.WithLogger(log),
		),
		Document: document.New(client, document.WithLogger(log)),
		Liveness: liveness.New(client, liveness.WithFaceComparer(client), liveness.WithLogger(log)),
	}
	engine := decision.New(decision.Policy{
		ApproveAtOrAbove: cfg.Decision.ApproveAtOrAbove,
		RejectBelow:      cfg.Decision.RejectBelow,
		HighPriorityBand: cfg.Decision.HighPriorityBand,
		FrontWeight:      cfg.Decision.FrontWeight,
		BackWeight:       cfg.Decision.BackWeight,
		LivenessWeight:   cfg.Decision.LivenessWeight,
		ComparisonWeight: cfg.Decision.ComparisonWeight,
	})

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.ReviewTicketTTL)
	hub := handler.NewHub(log)

	service := orchestrator.New(sessionstore.NewInMemoryStore(), steps, engine,
		orchestrator.WithHandoff(deps.handoff),
		orchestrator.WithNotifier(hub),
		orchestrator.WithAuditor(auditPublisher),
		orchestrator.WithReviewTicketer(jwtService),
		orchestrator.WithMetrics(kycMetrics),
		orchestrator.WithHasher(privacy.NewHasher(cfg.Server.PrivacyKey)),
		orchestrator.WithLogger(log),
		orchestrator.WithSessionTTL(cfg.Session.TTL),
		orchestrator.WithDefaultProfile(models.Profile(cfg.Session.Profile)),
	)

	var validator middleware.JWTValidator
	if cfg.Auth.Disabled {
		log.Warn("caller authentication is disabled; every request runs as anonymous")
	} else {
		validator = jwttoken.NewJWTServiceAdapter(jwtService)
	}

	router := chi.NewRouter()
	router.Get("/healthz", handleHealth)
	router.Get("/readyz", deps.handleReady)
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	handler.New(service, hub, log, httpMetrics, validator,
		handler.WithRequestTimeout(cfg.Server.RequestTimeout),
	).Register(router)

	go service.RunSweeper(ctx, cfg.Session.SweepInterval)

	srv := httpserver.New(cfg.Server.Addr, router)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting idproof", "addr", cfg.Server.Addr, "profile", cfg.Session.Profile)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	start := time.Now()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped", "took", time.Since(start))
	return nil
}
