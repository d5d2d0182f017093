package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"idproof/internal/kyc/handler/mocks"
	"idproof/internal/kyc/models"
	"idproof/internal/kyc/orchestrator"
	"idproof/internal/platform/middleware"
	dErrors "idproof/pkg/domain-errors"
)

type HandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	hub     *Hub
	router  chi.Router
	id      models.SessionID
	now     time.Time
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.hub = NewHub(logger)
	s.router = chi.NewRouter()
	New(s.service, s.hub, logger, nil, nil).Register(s.router)
	s.id = models.NewSessionID()
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (s *HandlerSuite) view(stage models.Stage) models.SessionView {
	return models.SessionView{
		ID:        s.id,
		Contact:   models.Contact{Email: "ada@example.com", Phone: "+15550100"},
		Profile:   models.ProfileStandard,
		Device:    "Safari on iOS",
		Stage:     stage,
		CreatedAt: s.now,
		UpdatedAt: s.now,
		ExpiresAt: s.now.Add(30 * time.Minute),
	}
}

func (s *HandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (s *HandlerSuite) path(suffix string) string {
	return "/v1/kyc/sessions/" + s.id.String() + suffix
}

func (s *HandlerSuite) TestStartSession() {
	s.Run("creates a session without echoing contact data", func() {
		s.service.EXPECT().Start(gomock.Any(), orchestrator.StartRequest{
			Contact: models.Contact{Email: "ada@example.com"},
			Profile: models.ProfileStrict,
		}).Return(s.view(models.StageChannelPending), nil)

		w := s.do(http.MethodPost, "/v1/kyc/sessions", map[string]string{
			"email":   " ada@example.com ",
			"profile": "strict",
		})

		s.Equal(http.StatusCreated, w.Code)
		s.NotContains(w.Body.String(), "ada@example.com")
		s.NotContains(w.Body.String(), "+15550100")
		body := s.decode(w)
		s.Equal(s.id.String(), body["id"])
		s.Equal("channel_pending", body["stage"])
		s.Equal("Safari on iOS", body["device"])
	})

	s.Run("requires a contact", func() {
		w := s.do(http.MethodPost, "/v1/kyc/sessions", map[string]string{})
		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal("validation_error", s.decode(w)["error"])
	})

	s.Run("rejects malformed JSON", func() {
		req := httptest.NewRequest(http.MethodPost, "/v1/kyc/sessions", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal("bad_request", s.decode(w)["error"])
	})

	s.Run("rejects non JSON bodies", func() {
		req := httptest.NewRequest(http.MethodPost, "/v1/kyc/sessions", strings.NewReader("email=a"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Equal(http.StatusUnsupportedMediaType, w.Code)
	})
}

func (s *HandlerSuite) TestGetSession() {
	s.Run("malformed id", func() {
		w := s.do(http.MethodGet, "/v1/kyc/sessions/not-a-uuid", nil)
		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal("invalid_input", s.decode(w)["error"])
	})

	s.Run("unknown session", func() {
		s.service.EXPECT().Get(gomock.Any(), s.id).Return(models.SessionView{}, models.ErrSessionNotFound())
		w := s.do(http.MethodGet, s.path(""), nil)
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("internal errors are not leaked", func() {
		s.service.EXPECT().Get(gomock.Any(), s.id).Return(models.SessionView{}, errors.New("redis: connection refused"))
		w := s.do(http.MethodGet, s.path(""), nil)
		s.Equal(http.StatusInternalServerError, w.Code)
		s.NotContains(w.Body.String(), "redis")
	})

	s.Run("shows artifacts and verdict", func() {
		v := s.view(models.StageLivenessPending)
		v.ChannelVerified = true
		v.VerifiedChannel = models.ChannelEmail
		v.Documents = map[models.Side]*models.DocumentArtifact{
			models.SideFront: {ImageRef: "sha256:f", IsValid: true, Confidence: 91, CapturedAt: s.now},
		}
		v.DocumentInFlight = map[models.Side]bool{models.SideBack: true}
		s.service.EXPECT().Get(gomock.Any(), s.id).Return(v, nil)

		w := s.do(http.MethodGet, s.path(""), nil)
		s.Equal(http.StatusOK, w.Code)
		body := s.decode(w)
		docs := body["documents"].(map[string]any)
		front := docs["front"].(map[string]any)
		s.Equal("sha256:f", front["image_ref"])
		s.Equal(true, front["valid"])
		back := docs["back"].(map[string]any)
		s.Equal(true, back["in_flight"])
		s.Nil(body["verdict"])
	})
}

func (s *HandlerSuite) TestChannelCode() {
	s.Run("request returns the masked contact", func() {
		s.service.EXPECT().RequestCode(gomock.Any(), s.id, models.ChannelEmail, models.Purpose("signup")).
			Return("a***@example.com", nil)
		w := s.do(http.MethodPost, s.path("/channel/code"), map[string]string{"channel": "Email", "purpose": "signup"})
		s.Equal(http.StatusAccepted, w.Code)
		s.Equal("a***@example.com", s.decode(w)["masked_contact"])
	})

	s.Run("unknown channel", func() {
		w := s.do(http.MethodPost, s.path("/channel/code"), map[string]string{"channel": "fax"})
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("resend cooldown maps to 429", func() {
		s.service.EXPECT().RequestCode(gomock.Any(), s.id, models.ChannelPhone, models.Purpose("")).
			Return("", models.ErrResendTooSoon(42))
		w := s.do(http.MethodPost, s.path("/channel/code"), map[string]string{"channel": "phone"})
		s.Equal(http.StatusTooManyRequests, w.Code)
		s.Equal("resend_too_soon", s.decode(w)["error"])
	})

	s.Run("incorrect code", func() {
		s.service.EXPECT().SubmitCode(gomock.Any(), s.id, models.ChannelEmail, "123456").
			Return(models.SessionView{}, models.ErrIncorrectCode(2))
		w := s.do(http.MethodPost, s.path("/channel/verify"), map[string]string{"channel": "email", "code": " 123456 "})
		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal("incorrect_code", s.decode(w)["error"])
	})

	s.Run("verified", func() {
		v := s.view(models.StageDocumentPending)
		v.ChannelVerified = true
		s.service.EXPECT().SubmitCode(gomock.Any(), s.id, models.ChannelEmail, "654321").Return(v, nil)
		w := s.do(http.MethodPost, s.path("/channel/verify"), map[string]string{"channel": "email", "code": "654321"})
		s.Equal(http.StatusOK, w.Code)
		s.Equal("document_pending", s.decode(w)["stage"])
	})
}

func (s *HandlerSuite) TestDocuments() {
	front := []byte("front-image")
	back := []byte("back-image")

	s.Run("both sides decode into captures", func() {
		s.service.EXPECT().SubmitDocuments(gomock.Any(), s.id,
			models.NewCapture("", front),
			models.NewCapture("cap-back", back),
		).Return(s.view(models.StageLivenessPending), nil)

		w := s.do(http.MethodPost, s.path("/documents"), map[string]any{
			"front": map[string]string{"image_base64": base64.StdEncoding.EncodeToString(front)},
			"back":  map[string]string{"image_base64": base64.StdEncoding.EncodeToString(back), "image_ref": "cap-back"},
		})
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("one side", func() {
		s.service.EXPECT().SubmitDocument(gomock.Any(), s.id, models.SideBack, models.NewCapture("", back)).
			Return(s.view(models.StageDocumentPending), nil)
		w := s.do(http.MethodPost, s.path("/documents/back"), map[string]string{
			"image_base64": base64.StdEncoding.EncodeToString(back),
		})
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("unknown side never reaches the service", func() {
		w := s.do(http.MethodPost, s.path("/documents/middle"), map[string]string{
			"image_base64": base64.StdEncoding.EncodeToString(back),
		})
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("invalid base64", func() {
		w := s.do(http.MethodPost, s.path("/documents/front"), map[string]string{"image_base64": "%%%"})
		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal("validation_error", s.decode(w)["error"])
	})

	s.Run("wrong stage maps to conflict", func() {
		s.service.EXPECT().SubmitDocument(gomock.Any(), s.id, models.SideFront, gomock.Any()).
			Return(models.SessionView{}, models.ErrWrongStage(models.StageChannelPending, models.StageDocumentPending))
		w := s.do(http.MethodPost, s.path("/documents/front"), map[string]string{
			"image_base64": base64.StdEncoding.EncodeToString(front),
		})
		s.Equal(http.StatusConflict, w.Code)
		s.Equal("invalid_state", s.decode(w)["error"])
	})

	s.Run("verifier outage maps to 503", func() {
		s.service.EXPECT().SubmitDocument(gomock.Any(), s.id, models.SideFront, gomock.Any()).
			Return(models.SessionView{}, models.ErrValidation(errors.New("upstream 502")))
		w := s.do(http.MethodPost, s.path("/documents/front"), map[string]string{
			"image_base64": base64.StdEncoding.EncodeToString(front),
		})
		s.Equal(http.StatusServiceUnavailable, w.Code)
		s.NotContains(w.Body.String(), "upstream 502")
	})
}

func (s *HandlerSuite) TestLivenessRetakeAbandon() {
	selfie := []byte("selfie")
	s.service.EXPECT().SubmitLiveness(gomock.Any(), s.id, models.NewCapture("", selfie)).
		Return(s.view(models.StageLivenessPending), nil)
	w := s.do(http.MethodPost, s.path("/liveness"), map[string]string{
		"image_base64": base64.StdEncoding.EncodeToString(selfie),
	})
	s.Equal(http.StatusOK, w.Code)

	s.service.EXPECT().Retake(gomock.Any(), s.id, models.SlotLiveness).Return(s.view(models.StageLivenessPending), nil)
	w = s.do(http.MethodPost, s.path("/retake"), map[string]string{"slot": "liveness"})
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, s.path("/retake"), map[string]string{"slot": "passport"})
	s.Equal(http.StatusBadRequest, w.Code)

	final := s.view(models.StageTerminal)
	final.Verdict = models.Rejected{Reason: models.ReasonAbandoned}
	s.service.EXPECT().Abandon(gomock.Any(), s.id).Return(final, nil)
	w = s.do(http.MethodPost, s.path("/abandon"), nil)
	s.Equal(http.StatusOK, w.Code)
	verdict := s.decode(w)["verdict"].(map[string]any)
	s.Equal("rejected", verdict["kind"])
	s.Equal("abandoned", verdict["reason"])
}

func (s *HandlerSuite) TestRequiresBearerToken() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	New(s.service, s.hub, logger, nil, rejectingValidator{}).Register(router)

	req := httptest.NewRequest(http.MethodGet, s.path(""), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, s.path(""), nil)
	req.Header.Set("Authorization", "Bearer forged")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerSuite) TestEventStream() {
	s.service.EXPECT().Get(gomock.Any(), s.id).Return(s.view(models.StageLivenessPending), nil)

	srv := httptest.NewServer(s.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + s.path("/events")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	defer resp.Body.Close()
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var ev Event
	s.Require().NoError(conn.ReadJSON(&ev))
	s.Equal(EventTypeSnapshot, ev.Type)
	s.Require().NotNil(ev.Session)
	s.Equal(models.StageLivenessPending, ev.Session.Stage)
	s.Equal(1, s.hub.Subscribers(s.id))

	ctx := context.Background()
	s.hub.StageChanged(ctx, s.id, models.StageLivenessPending, models.StageDeciding)
	s.Require().NoError(conn.ReadJSON(&ev))
	s.Equal(EventTypeStageChanged, ev.Type)
	s.Equal(models.StageDeciding, ev.To)

	s.hub.StageChanged(ctx, s.id, models.StageDeciding, models.StageTerminal)
	s.Require().NoError(conn.ReadJSON(&ev))
	s.Equal(models.StageTerminal, ev.To)

	_, _, err = conn.ReadMessage()
	s.True(websocket.IsCloseError(err, websocket.CloseNormalClosure))
	s.Equal(0, s.hub.Subscribers(s.id))
}

func (s *HandlerSuite) TestEventStreamUnknownSession() {
	s.service.EXPECT().Get(gomock.Any(), s.id).Return(models.SessionView{}, models.ErrSessionNotFound())
	w := s.do(http.MethodGet, s.path("/events"), nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(0, s.hub.Subscribers(s.id))
}

type rejectingValidator struct{}

func (rejectingValidator) ValidateToken(string) (*middleware.JWTClaims, error) {
	return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
}
