// Package handler exposes verification sessions over HTTP and streams their
// progress over a websocket.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"idproof/internal/kyc/models"
	"idproof/internal/kyc/orchestrator"
	"idproof/internal/platform/metrics"
	"idproof/internal/platform/middleware"
	dErrors "idproof/pkg/domain-errors"
	"idproof/pkg/platform/httputil"
	"idproof/pkg/platform/middleware/metadata"
	"idproof/pkg/platform/middleware/requesttime"
	"idproof/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks Service

// Service is the verification engine as seen by the transport.
type Service interface {
	Start(ctx context.Context, req orchestrator.StartRequest) (models.SessionView, error)
	Get(ctx context.Context, id models.SessionID) (models.SessionView, error)
	RequestCode(ctx context.Context, id models.SessionID, ch models.Channel, purpose models.Purpose) (string, error)
	SubmitCode(ctx context.Context, id models.SessionID, ch models.Channel, code string) (models.SessionView, error)
	SubmitDocument(ctx context.Context, id models.SessionID, side models.Side, capture models.Capture) (models.SessionView, error)
	SubmitDocuments(ctx context.Context, id models.SessionID, front, back models.Capture) (models.SessionView, error)
	SubmitLiveness(ctx context.Context, id models.SessionID, selfie models.Capture) (models.SessionView, error)
	Retake(ctx context.Context, id models.SessionID, slot models.Slot) (models.SessionView, error)
	Abandon(ctx context.Context, id models.SessionID) (models.SessionView, error)
}

const (
	defaultRequestTimeout = 45 * time.Second
	pongWait              = 60 * time.Second
	pingPeriod            = 54 * time.Second
	writeWait             = 10 * time.Second
)

// Handler serves the /v1/kyc routes.
type Handler struct {
	service        Service
	hub            *Hub
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auth           func(http.Handler) http.Handler
	requestTimeout time.Duration
	upgrader       websocket.Upgrader
}

type Option func(*Handler)

// WithRequestTimeout bounds every non-streaming request.
func WithRequestTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.requestTimeout = d
		}
	}
}

// WithCheckOrigin restricts websocket upgrades.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(h *Handler) {
		h.upgrader.CheckOrigin = fn
	}
}

// New builds the handler. A nil validator admits every caller as "anonymous".
func New(service Service, hub *Hub, logger *slog.Logger, m *metrics.Metrics, validator middleware.JWTValidator, opts ...Option) *Handler {
	h := &Handler{
		service:        service,
		hub:            hub,
		logger:         logger,
		metrics:        m,
		requestTimeout: defaultRequestTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if validator != nil {
		h.auth = middleware.RequireAuth(validator, logger)
	} else {
		h.auth = middleware.AllowAnonymous("anonymous")
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the verification routes on r.
func (h *Handler) Register(r chi.Router) {
	kyc := chi.NewRouter()
	kyc.Use(middleware.Recovery(h.logger))
	kyc.Use(middleware.RequestID)
	kyc.Use(metadata.ClientMetadata)
	kyc.Use(requesttime.Middleware)
	kyc.Use(middleware.Logger(h.logger))
	kyc.Use(middleware.LatencyMiddleware(h.metrics))
	kyc.Use(h.auth)

	kyc.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(h.requestTimeout))
		api.Use(middleware.ContentTypeJSON)

		api.Post("/sessions", h.handleStart)
		api.Get("/sessions/{id}", h.handleGet)
		api.Post("/sessions/{id}/channel/code", h.handleRequestCode)
		api.Post("/sessions/{id}/channel/verify", h.handleVerifyCode)
		api.Post("/sessions/{id}/documents", h.handleDocuments)
		api.Post("/sessions/{id}/documents/{side}", h.handleDocument)
		api.Post("/sessions/{id}/liveness", h.handleLiveness)
		api.Post("/sessions/{id}/retake", h.handleRetake)
		api.Post("/sessions/{id}/abandon", h.handleAbandon)
	})
	kyc.Get("/sessions/{id}/events", h.handleEvents)

	r.Mount("/v1/kyc", kyc)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[StartSessionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	view, err := h.service.Start(ctx, orchestrator.StartRequest{
		Contact: models.Contact{Email: req.Email, Phone: req.Phone},
		Profile: models.Profile(req.Profile),
	})
	if err != nil {
		h.fail(ctx, w, "failed to start session", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromView(view))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.service.Get(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to load session", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromView(view))
}

func (h *Handler) handleRequestCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RequestCodeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	masked, err := h.service.RequestCode(ctx, id, models.Channel(req.Channel), models.Purpose(req.Purpose))
	if err != nil {
		h.fail(ctx, w, "failed to send code", err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, RequestCodeResponse{MaskedContact: masked})
}

func (h *Handler) handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[VerifyCodeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.SubmitCode(ctx, id, models.Channel(req.Channel), req.Code)
	h.respond(ctx, w, view, err, "failed to verify code")
}

func (h *Handler) handleDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	side := models.Side(chi.URLParam(r, "side"))
	if !side.IsValid() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "side must be front or back"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[ImageRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.SubmitDocument(ctx, id, side, req.Capture())
	h.respond(ctx, w, view, err, "failed to submit document")
}

func (h *Handler) handleDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[DocumentsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.SubmitDocuments(ctx, id, req.Front.Capture(), req.Back.Capture())
	h.respond(ctx, w, view, err, "failed to submit documents")
}

func (h *Handler) handleLiveness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ImageRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.SubmitLiveness(ctx, id, req.Capture())
	h.respond(ctx, w, view, err, "failed to submit liveness capture")
}

func (h *Handler) handleRetake(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RetakeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.Retake(ctx, id, models.Slot(req.Slot))
	h.respond(ctx, w, view, err, "failed to retake")
}

func (h *Handler) handleAbandon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.service.Abandon(ctx, id)
	h.respond(ctx, w, view, err, "failed to abandon session")
}

// handleEvents streams stage changes for one session until it turns terminal.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	events, cancelSub := h.hub.Subscribe(id)
	defer cancelSub()

	view, err := h.service.Get(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to load session for streaming", err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(ctx, "websocket upgrade failed", "session_id", id.String(), "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go h.readLoop(ctx, cancel, conn)

	snapshot := FromView(view)
	if err := h.write(conn, Event{
		Type:      EventTypeSnapshot,
		SessionID: id.String(),
		Session:   &snapshot,
		At:        requestcontext.Now(ctx),
	}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, open := <-events:
			if !open {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session finished"),
					time.Now().Add(writeWait))
				return
			}
			if err := h.write(conn, ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames so pongs and close frames are processed.
func (h *Handler) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	defer cancel()
	for {
		if _, _, err := conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.DebugContext(ctx, "websocket read error", "error", err)
			}
			return
		}
	}
}

func (h *Handler) write(conn *websocket.Conn, ev Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (models.SessionID, bool) {
	id, err := models.ParseSessionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return models.SessionID{}, false
	}
	return id, true
}

func (h *Handler) respond(ctx context.Context, w http.ResponseWriter, view models.SessionView, err error, msg string) {
	if err != nil {
		h.fail(ctx, w, msg, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromView(view))
}

// fail logs at a level matching the error and writes it. Domain errors pass
// through; anything else is reported as internal.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	requestID := requestcontext.RequestID(ctx)
	de, ok := dErrors.As(err)
	if !ok || de.Code == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, msg))
		return
	}
	if dErrors.ToHTTPStatus(de.Code) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err)
	} else {
		h.logger.WarnContext(ctx, msg, "request_id", requestID, "error", err)
	}
	httputil.WriteError(w, err)
}
