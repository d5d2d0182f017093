// Package verifier is the HTTP JSON client for the remote OCR, biometric and
// one-time-code service. It implements every verifier port the kyc steps consume.
package verifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"idproof/internal/kyc/models"
	"idproof/internal/kyc/ports"
	"idproof/pkg/platform/circuit"
	"idproof/pkg/requestcontext"
)

const (
	defaultTimeout   = 12 * time.Second
	maxResponseBytes = 1 << 20
	tracerName       = "idproof/kyc/verifier"
)

var (
	_ ports.ChannelVerifier  = (*Client)(nil)
	_ ports.DocumentVerifier = (*Client)(nil)
	_ ports.LivenessVerifier = (*Client)(nil)
	_ ports.FaceComparer     = (*Client)(nil)
)

// Client calls the verifier service. Every call is bounded by the client timeout
// and guarded by a circuit breaker.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	timeout time.Duration
	breaker *circuit.Breaker
	logger  *slog.Logger
	tracer  trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithAPIKey sends the key as a bearer token on every call.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: defaultTimeout,
		breaker: circuit.New("verifier"),
		logger:  slog.Default(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sendCodeRequest struct {
	Channel string `json:"channel"`
	Contact string `json:"contact"`
	Purpose string `json:"purpose"`
}

type sendCodeResponse struct {
	MaskedContact string `json:"maskedContact"`
}

type checkCodeRequest struct {
	Channel string `json:"channel"`
	Contact string `json:"contact"`
	Code    string `json:"code"`
	Purpose string `json:"purpose"`
}

type checkCodeResponse struct {
	Verified *bool `json:"verified"`
}

type documentRequest struct {
	ImageBase64 string `json:"imageBase64"`
	Side        string `json:"side"`
}

type livenessRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

type compareRequest struct {
	DocumentImageBase64 string `json:"documentImageBase64"`
	SelfieImageBase64   string `json:"selfieImageBase64"`
}

type validationResponse struct {
	Valid           *bool    `json:"valid"`
	Match           *bool    `json:"match"`
	Confidence      *float64 `json:"confidence"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

func (c *Client) SendChannelCode(ctx context.Context, req ports.SendCodeRequest) (ports.SendCodeResult, error) {
	var resp sendCodeResponse
	err := c.post(ctx, "send_channel_code", "/channel-code", sendCodeRequest{
		Channel: string(req.Channel),
		Contact: req.Contact,
		Purpose: string(req.Purpose),
	}, &resp, attribute.String("kyc.channel", string(req.Channel)))
	if err != nil {
		return ports.SendCodeResult{}, err
	}
	return ports.SendCodeResult{MaskedContact: resp.MaskedContact}, nil
}

func (c *Client) CheckChannelCode(ctx context.Context, req ports.CheckCodeRequest) (bool, error) {
	var resp checkCodeResponse
	err := c.post(ctx, "check_channel_code", "/channel-code/verify", checkCodeRequest{
		Channel: string(req.Channel),
		Contact: req.Contact,
		Code:    req.Code,
		Purpose: string(req.Purpose),
	}, &resp, attribute.String("kyc.channel", string(req.Channel)))
	if err != nil {
		return false, err
	}
	if resp.Verified == nil {
		return false, NewError(ErrorBadData, "check_channel_code", "response missing verified", nil)
	}
	return *resp.Verified, nil
}

func (c *Client) ValidateDocumentImage(ctx context.Context, image []byte, side models.Side) (ports.ValidationResult, error) {
	var resp validationResponse
	err := c.post(ctx, "validate_document", "/document/validate", documentRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(image),
		Side:        string(side),
	}, &resp, attribute.String("kyc.side", string(side)))
	if err != nil {
		return ports.ValidationResult{}, err
	}
	return resp.toResult("validate_document", resp.Valid)
}

func (c *Client) ValidateLivenessImage(ctx context.Context, image []byte) (ports.ValidationResult, error) {
	var resp validationResponse
	err := c.post(ctx, "validate_liveness", "/liveness/validate", livenessRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(image),
	}, &resp)
	if err != nil {
		return ports.ValidationResult{}, err
	}
	return resp.toResult("validate_liveness", resp.Valid)
}

func (c *Client) CompareFaces(ctx context.Context, documentImage, selfie []byte) (ports.ValidationResult, error) {
	var resp validationResponse
	err := c.post(ctx, "compare_faces", "/biometric/compare", compareRequest{
		DocumentImageBase64: base64.StdEncoding.EncodeToString(documentImage),
		SelfieImageBase64:   base64.StdEncoding.EncodeToString(selfie),
	}, &resp)
	if err != nil {
		return ports.ValidationResult{}, err
	}
	return resp.toResult("compare_faces", resp.Match)
}

func (r validationResponse) toResult(op string, flag *bool) (ports.ValidationResult, error) {
	if flag == nil || r.Confidence == nil {
		return ports.ValidationResult{}, NewError(ErrorBadData, op, "response missing validity or confidence", nil)
	}
	return ports.ValidationResult{
		Valid:           *flag,
		Confidence:      models.ClampConfidence(*r.Confidence),
		Issues:          r.Issues,
		Recommendations: r.Recommendations,
	}, nil
}

func (c *Client) post(ctx context.Context, op, path string, body, out any, attrs ...attribute.KeyValue) (err error) {
	ctx, span := c.tracer.Start(ctx, "verifier."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append(attrs, attribute.String("verifier.path", path))...),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(GetCategory(err)))
		}
		span.End()
	}()

	if !c.breaker.Allow() {
		return NewError(ErrorCircuitOpen, op, "verifier circuit open", nil)
	}

	err = c.do(ctx, op, path, body, out)
	c.record(ctx, op, err)
	return err
}

func (c *Client) do(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return NewError(ErrorRejectedRequest, op, "encode request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return NewError(ErrorRejectedRequest, op, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if id := requestcontext.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return transportError(op, err)
	}
	if cat, failed := classifyStatus(resp.StatusCode); failed {
		return NewError(cat, op, fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return NewError(ErrorBadData, op, "decode response", err)
	}
	return nil
}

func (c *Client) record(ctx context.Context, op string, err error) {
	if err == nil || GetCategory(err) == ErrorRejectedRequest {
		if _, change := c.breaker.RecordSuccess(); change.Closed {
			c.logger.InfoContext(ctx, "verifier circuit closed", "breaker", c.breaker.Name())
		}
		return
	}
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "verifier circuit opened",
			"breaker", c.breaker.Name(),
			"op", op,
			"category", GetCategory(err),
		)
	}
}

func transportError(op string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(ErrorTimeout, op, "request timed out", err)
	case errors.Is(err, context.Canceled):
		// the caller went away; retrying on its behalf is pointless
		return &Error{Category: ErrorOutage, Op: op, Message: "request canceled", Underlying: err}
	default:
		return NewError(ErrorOutage, op, "request failed", err)
	}
}

func classifyStatus(status int) (ErrorCategory, bool) {
	switch {
	case status >= 200 && status < 300:
		return "", false
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return ErrorTimeout, true
	case status == http.StatusTooManyRequests:
		return ErrorRateLimited, true
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorAuthentication, true
	case status >= 500:
		return ErrorOutage, true
	default:
		return ErrorRejectedRequest, true
	}
}
