// Package orchestrator drives a verification session through its stages, owns the
// working session store and hands the terminal result to the caller.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"idproof/internal/kyc/channel"
	"idproof/internal/kyc/decision"
	"idproof/internal/kyc/device"
	"idproof/internal/kyc/document"
	"idproof/internal/kyc/liveness"
	"idproof/internal/kyc/metrics"
	"idproof/internal/kyc/models"
	"idproof/internal/kyc/ports"
	"idproof/pkg/email"
	"idproof/pkg/platform/audit"
	"idproof/pkg/platform/privacy"
	"idproof/pkg/platform/sentinel"
	"idproof/pkg/requestcontext"
)

const tracerName = "idproof/kyc/orchestrator"

// SessionStore is the working store for in-progress sessions.
type SessionStore interface {
	Save(ctx context.Context, sess *models.Session) error
	Get(ctx context.Context, id models.SessionID, now time.Time) (*models.Session, error)
	Delete(ctx context.Context, id models.SessionID) error
	DeleteExpired(ctx context.Context, now time.Time) ([]models.SessionID, error)
	Len() int
}

// ReviewTicketer signs a ticket the manual review surface can use to claim a case.
type ReviewTicketer interface {
	IssueReviewTicket(ctx context.Context, id models.SessionID, review models.ManualReview) (string, error)
}

// Steps groups the stage steps the service delegates to.
type Steps struct {
	Channel  *channel.Step
	Document *document.Step
	Liveness *liveness.Step
}

type Service struct {
	sessions SessionStore
	steps    Steps
	engine   *decision.Engine

	handoff  ports.HandoffPort
	notifier ports.ProgressNotifier
	auditor  ports.AuditPublisher
	tickets  ReviewTicketer
	metrics  *metrics.Metrics
	hasher   *privacy.Hasher
	logger   *slog.Logger
	tracer   trace.Tracer

	sessionTTL     time.Duration
	defaultProfile models.Profile

	stages     map[models.Stage]stageHandler
	finalizing sync.Map
}

type Option func(*Service)

func WithHandoff(h ports.HandoffPort) Option {
	return func(s *Service) {
		if h != nil {
			s.handoff = h
		}
	}
}

func WithNotifier(n ports.ProgressNotifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithAuditor(a ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

func WithReviewTicketer(t ReviewTicketer) Option {
	return func(s *Service) {
		s.tickets = t
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithHasher sets the keyed hash used for audit subjects.
func WithHasher(h *privacy.Hasher) Option {
	return func(s *Service) {
		s.hasher = h
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithDefaultProfile sets the profile used when Start does not name one.
func WithDefaultProfile(p models.Profile) Option {
	return func(s *Service) {
		if p.IsValid() {
			s.defaultProfile = p
		}
	}
}

func New(sessions SessionStore, steps Steps, engine *decision.Engine, opts ...Option) *Service {
	s := &Service{
		sessions:       sessions,
		steps:          steps,
		engine:         engine,
		handoff:        nopHandoff{},
		notifier:       nopNotifier{},
		logger:         slog.Default(),
		tracer:         otel.Tracer(tracerName),
		sessionTTL:     30 * time.Minute,
		defaultProfile: models.ProfileStandard,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.stages = s.stageHandlers()
	return s
}

// StartRequest carries the contact supplied by the surrounding application.
type StartRequest struct {
	Contact   models.Contact
	Profile   models.Profile
	UserAgent string
}

// Start creates a session in the channel stage.
func (s *Service) Start(ctx context.Context, req StartRequest) (view models.SessionView, err error) {
	ctx, end := s.span(ctx, "Start", models.SessionID{})
	defer func() { end(err) }()

	contact := models.Contact{
		Email: email.Normalize(req.Contact.Email),
		Phone: req.Contact.Phone,
	}
	if contact.Email != "" && !email.IsValid(contact.Email) {
		return models.SessionView{}, models.ErrInvalidContact()
	}
	profile := req.Profile
	if profile == "" {
		profile = s.defaultProfile
	}
	if !profile.IsValid() {
		return models.SessionView{}, models.ErrInvalidProfile(profile)
	}
	ua := req.UserAgent
	if ua == "" {
		ua = requestcontext.UserAgent(ctx)
	}

	now := requestcontext.Now(ctx)
	sess := models.NewSession(contact, profile, device.ParseUserAgent(ua), now, s.sessionTTL)
	sess.Owner = requestcontext.CallerID(ctx)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return models.SessionView{}, err
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("kyc.session_id", sess.ID.String()))

	s.metrics.IncSessionStarted(string(profile))
	s.metrics.SetActiveSessions(s.sessions.Len())
	view = sess.Snapshot()
	s.emit(ctx, view, audit.EventSessionStarted, "", "")
	s.logger.InfoContext(ctx, "verification session started",
		"session_id", sess.ID.String(),
		"profile", profile,
		"device", sess.Device,
	)
	return view, nil
}

// Get returns the current view of a live session.
func (s *Service) Get(ctx context.Context, id models.SessionID) (view models.SessionView, err error) {
	ctx, end := s.span(ctx, "Get", id)
	defer func() { end(err) }()

	sess, err := s.load(ctx, id)
	if err != nil {
		return models.SessionView{}, err
	}
	return sess.Snapshot(), nil
}

// load fetches a live session owned by the calling client. A session left in deciding by a failed verdict
// write is finalized here so the flow resumes on the next call.
func (s *Service) load(ctx context.Context, id models.SessionID) (*models.Session, error) {
	sess, err := s.sessions.Get(ctx, id, requestcontext.Now(ctx))
	if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrExpired) {
		return nil, models.ErrSessionNotFound()
	}
	if err != nil {
		return nil, err
	}
	if caller := requestcontext.CallerID(ctx); !sess.OwnedBy(caller) {
		// reported as missing so ids of other callers cannot be probed
		s.logger.WarnContext(ctx, "session accessed by another caller",
			"session_id", id.String(),
			"caller_id", caller,
		)
		return nil, models.ErrSessionNotFound()
	}
	if sess.Stage() == models.StageDeciding {
		if err := s.progress(ctx, sess); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// Sweep drops expired sessions and their code state.
func (s *Service) Sweep(ctx context.Context) int {
	removed, err := s.sessions.DeleteExpired(ctx, requestcontext.Now(ctx))
	if err != nil {
		s.logger.ErrorContext(ctx, "session sweep failed", "error", err)
		return 0
	}
	for _, id := range removed {
		if err := s.steps.Channel.Discard(ctx, id); err != nil {
			s.logger.WarnContext(ctx, "failed to discard code state", "session_id", id.String(), "error", err)
		}
	}
	if len(removed) > 0 {
		s.logger.InfoContext(ctx, "expired sessions swept", "count", len(removed))
	}
	s.metrics.SetActiveSessions(s.sessions.Len())
	return len(removed)
}

// RunSweeper sweeps on every tick until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

func (s *Service) span(ctx context.Context, op string, id models.SessionID) (context.Context, func(error)) {
	attrs := []attribute.KeyValue{attribute.String("kyc.operation", op)}
	if !id.IsNil() {
		attrs = append(attrs, attribute.String("kyc.session_id", id.String()))
	}
	ctx, span := s.tracer.Start(ctx, "kyc."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

type nopHandoff struct{}

func (nopHandoff) Deliver(context.Context, ports.Result) error { return nil }

type nopNotifier struct{}

func (nopNotifier) StageChanged(context.Context, models.SessionID, models.Stage, models.Stage) {}
