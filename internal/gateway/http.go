package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jperezcano/sessiondx-go/internal/core/domain"
	"github.com/jperezcano/sessiondx-go/internal/infra/tlsroots"
	"github.com/jperezcano/sessiondx-go/internal/telemetry/logger"
)

// defaultRequestsPerSecond caps outbound request rate so bulk operations
// (reconstruction fetches every step of every invocation) do not trip the
// gateway throttle.
const defaultRequestsPerSecond = 20

// HTTPConfig configures an HTTPGateway.
type HTTPConfig struct {
	// Endpoint is the gateway address, with or without scheme.
	Endpoint string
	// Region is sent on every request as X-SX-Region.
	Region string
	// APIKeyID and APIKey authenticate requests when both are set.
	APIKeyID string
	APIKey   string
	// Timeout bounds each request. Defaults to 30s.
	Timeout time.Duration
	// RequestsPerSecond caps outbound request rate. Defaults to 20.
	RequestsPerSecond float64
	// TLSCAFile optionally names a PEM bundle appended to the system
	// roots, for gateways behind a private CA.
	TLSCAFile string

	Logger logger.Logger
}

// HTTPGateway implements Gateway over the JSON/HTTP surface of the session
// gateway.
type HTTPGateway struct {
	baseURL string
	region  string

	apiKeyID string
	apiKey   string

	client  *http.Client
	limiter *rate.Limiter
	log     logger.Logger
}

var _ Gateway = (*HTTPGateway)(nil)

// NewHTTPGateway creates a gateway client for the given endpoint.
func NewHTTPGateway(cfg HTTPConfig) (*HTTPGateway, error) {
	// Ensure baseURL has http:// prefix
	baseURL := cfg.Endpoint
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	client := &http.Client{Timeout: timeout}
	if cfg.TLSCAFile != "" {
		pool, err := tlsroots.NewPool()
		if err != nil {
			return nil, fmt.Errorf("load system roots: %w", err)
		}
		if err := pool.AddCertFile(cfg.TLSCAFile); err != nil {
			return nil, err
		}
		client.Transport = &http.Transport{TLSClientConfig: pool.ClientConfig()}
	}

	return &HTTPGateway{
		baseURL:  baseURL,
		region:   cfg.Region,
		apiKeyID: cfg.APIKeyID,
		apiKey:   cfg.APIKey,
		client:   client,
		limiter:  rate.NewLimiter(rate.Limit(rps), int(rps)),
		log:      log,
	}, nil
}

// BaseURL returns the base URL of the gateway client.
func (g *HTTPGateway) BaseURL() string {
	return g.baseURL
}

// CreateSession creates a new session and returns its identifier.
func (g *HTTPGateway) CreateSession(ctx context.Context, metadata, tags map[string]string) (string, error) {
	req := struct {
		SessionMetadata map[string]string `json:"sessionMetadata,omitempty"`
		Tags            map[string]string `json:"tags,omitempty"`
	}{SessionMetadata: metadata, Tags: tags}

	var resp struct {
		SessionID string `json:"sessionId"`
	}
	if err := g.do(ctx, http.MethodPost, "/v1/sessions", req, &resp, domain.ErrSessionNotFound); err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", domain.ErrMalformedResponse.WithDetails("create-session response has no sessionId")
	}
	return resp.SessionID, nil
}

// GetSession fetches a session record.
func (g *HTTPGateway) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	body, err := g.doRaw(ctx, http.MethodGet, g.sessionPath(sessionID), nil, domain.ErrSessionNotFound)
	if err != nil {
		return nil, err
	}
	return decodeSession(body)
}

// EndSession marks a session as closed. Ending an already-closed session
// returns a conflict error.
func (g *HTTPGateway) EndSession(ctx context.Context, sessionID string) error {
	return g.do(ctx, http.MethodPost, g.sessionPath(sessionID)+"/end", nil, nil, domain.ErrSessionNotFound)
}

// DeleteSession permanently removes a session.
func (g *HTTPGateway) DeleteSession(ctx context.Context, sessionID string) error {
	return g.do(ctx, http.MethodDelete, g.sessionPath(sessionID), nil, nil, domain.ErrSessionNotFound)
}

// CreateInvocation creates an invocation in a session and returns its
// identifier.
func (g *HTTPGateway) CreateInvocation(ctx context.Context, sessionID, description string) (string, error) {
	req := struct {
		Description string `json:"description,omitempty"`
	}{Description: description}

	var resp struct {
		InvocationID string `json:"invocationId"`
	}
	path := g.sessionPath(sessionID) + "/invocations"
	if err := g.do(ctx, http.MethodPost, path, req, &resp, domain.ErrSessionNotFound); err != nil {
		return "", err
	}
	if resp.InvocationID == "" {
		return "", domain.ErrMalformedResponse.WithDetails("create-invocation response has no invocationId")
	}
	return resp.InvocationID, nil
}

// ListInvocations lists the invocations of a session.
func (g *HTTPGateway) ListInvocations(ctx context.Context, sessionID string) ([]domain.InvocationSummary, error) {
	path := g.sessionPath(sessionID) + "/invocations"
	body, err := g.doRaw(ctx, http.MethodGet, path, nil, domain.ErrSessionNotFound)
	if err != nil {
		return nil, err
	}
	return decodeInvocationList(body)
}

// ListInvocationSteps lists the step summaries of an invocation.
func (g *HTTPGateway) ListInvocationSteps(ctx context.Context, sessionID, invocationID string) ([]domain.StepSummary, error) {
	path := g.invocationPath(sessionID, invocationID) + "/steps"
	body, err := g.doRaw(ctx, http.MethodGet, path, nil, domain.ErrInvocationNotFound)
	if err != nil {
		return nil, err
	}
	return decodeStepList(body)
}

// GetInvocationStep fetches a full step record including its payload.
func (g *HTTPGateway) GetInvocationStep(ctx context.Context, sessionID, invocationID, stepID string) (*domain.InvocationStep, error) {
	path := g.invocationPath(sessionID, invocationID) + "/steps/" + url.PathEscape(stepID)
	body, err := g.doRaw(ctx, http.MethodGet, path, nil, domain.ErrStepNotFound)
	if err != nil {
		return nil, err
	}
	return decodeStep(body)
}

// PutInvocationStep writes a step record with the caller-chosen identifier.
func (g *HTTPGateway) PutInvocationStep(ctx context.Context, sessionID, invocationID, stepID string, stepTime time.Time, payload domain.StepPayload) error {
	req := struct {
		InvocationStepTime string      `json:"invocationStepTime"`
		Payload            wirePayload `json:"payload"`
	}{
		InvocationStepTime: formatWireTime(stepTime),
		Payload:            encodeStepPayload(payload),
	}
	path := g.invocationPath(sessionID, invocationID) + "/steps/" + url.PathEscape(stepID)
	return g.do(ctx, http.MethodPut, path, req, nil, domain.ErrInvocationNotFound)
}

func (g *HTTPGateway) sessionPath(sessionID string) string {
	return "/v1/sessions/" + url.PathEscape(sessionID)
}

func (g *HTTPGateway) invocationPath(sessionID, invocationID string) string {
	return g.sessionPath(sessionID) + "/invocations/" + url.PathEscape(invocationID)
}

// do performs a JSON request and decodes the response into target, which may
// be nil when the body is irrelevant.
func (g *HTTPGateway) do(ctx context.Context, method, path string, body, target any, notFound *domain.DomainError) error {
	raw, err := g.doRaw(ctx, method, path, body, notFound)
	if err != nil {
		return err
	}
	if target != nil {
		if err := json.Unmarshal(raw, target); err != nil {
			return domain.ErrMalformedResponse.WithCause(err)
		}
	}
	return nil
}

// doRaw performs a request and returns the raw response body. Transport
// failures map to the transient error class; error responses are classified
// by classifyError with notFound as the 404 sentinel.
func (g *HTTPGateway) doRaw(ctx context.Context, method, path string, body any, notFound *domain.DomainError) ([]byte, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, domain.ErrGatewayTransient.WithCause(err)
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	g.addHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	g.log.Debug("gateway request", "method", method, "path", path)
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, domain.ErrGatewayTransient.WithCause(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.ErrGatewayTransient.WithCause(err)
	}

	if resp.StatusCode >= 400 {
		return nil, classifyError(resp.StatusCode, raw, notFound)
	}
	return raw, nil
}

// addHeaders adds authentication and common headers.
func (g *HTTPGateway) addHeaders(req *http.Request) {
	if g.apiKeyID != "" && g.apiKey != "" {
		req.Header.Set("X-API-Key-ID", g.apiKeyID)
		req.Header.Set("X-API-Key", g.apiKey)
	}
	if g.region != "" {
		req.Header.Set("X-SX-Region", g.region)
	}
	req.Header.Set("User-Agent", "sessiondx/1.0")
}

// classifyError maps an error response to a domain error. Classification is
// by HTTP status first, then by the exception-style code names older gateway
// builds put in the body regardless of status.
func classifyError(status int, body []byte, notFound *domain.DomainError) error {
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &errResp)
	detail := errResp.Message
	if detail == "" {
		detail = fmt.Sprintf("request failed with status %d", status)
	}

	if notFound == nil {
		notFound = domain.ErrSessionNotFound
	}

	switch status {
	case http.StatusNotFound:
		return notFound.WithDetails(detail)
	case http.StatusConflict:
		return domain.ErrSessionEnded.WithDetails(detail)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.ErrGatewayValidation.WithDetails(detail)
	case http.StatusTooManyRequests:
		return domain.ErrGatewayThrottled.WithDetails(detail)
	}

	switch errResp.Code {
	case "ResourceNotFoundException":
		return notFound.WithDetails(detail)
	case "ConflictException":
		return domain.ErrSessionEnded.WithDetails(detail)
	case "ValidationException":
		return domain.ErrGatewayValidation.WithDetails(detail)
	case "ThrottlingException":
		return domain.ErrGatewayThrottled.WithDetails(detail)
	}

	return domain.ErrGatewayTransient.WithDetails(detail)
}
