package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jperezcano/sessiondx-go/internal/core/domain"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *HTTPGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	gw, err := NewHTTPGateway(HTTPConfig{
		Endpoint: srv.URL,
		Region:   "eu-west-1",
		APIKeyID: "key-id",
		APIKey:   "sxak_secret",
	})
	if err != nil {
		t.Fatalf("NewHTTPGateway() error = %v", err)
	}
	return gw
}

func TestHTTPGatewayCreateSession(t *testing.T) {
	var gotReq struct {
		SessionMetadata map[string]string `json:"sessionMetadata"`
		Tags            map[string]string `json:"tags"`
	}
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/sessions" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-API-Key-ID") != "key-id" || r.Header.Get("X-API-Key") != "sxak_secret" {
			t.Error("auth headers missing")
		}
		if r.Header.Get("X-SX-Region") != "eu-west-1" {
			t.Error("region header missing")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"sessionId": "s-new"})
	})

	id, err := gw.CreateSession(context.Background(),
		map[string]string{domain.MetaIncidentID: "INC-1001"},
		map[string]string{"Environment": "Development"})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if id != "s-new" {
		t.Errorf("session id = %q, want s-new", id)
	}
	if gotReq.SessionMetadata[domain.MetaIncidentID] != "INC-1001" {
		t.Error("metadata not forwarded")
	}
	if gotReq.Tags["Environment"] != "Development" {
		t.Error("tags not forwarded")
	}
}

func TestHTTPGatewayGetSession(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/sessions/s-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"session": map[string]any{
				"sessionId":        "s-1",
				"creationDateTime": "2026-03-01T10:00:00Z",
				"sessionMetadata":  map[string]string{"severity": "High"},
			},
		})
	})

	sess, err := gw.GetSession(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if sess.ID != "s-1" || sess.Meta(domain.MetaSeverity, "") != "High" {
		t.Errorf("unexpected session: %+v", sess)
	}
}

func TestHTTPGatewayEndSessionConflict(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "SX-SESS-4090",
			"message": "session already ended",
		})
	})

	err := gw.EndSession(context.Background(), "s-1")
	if !errors.Is(err, domain.ErrSessionEnded) {
		t.Fatalf("expected session-ended conflict, got %v", err)
	}
}

func TestHTTPGatewayPutInvocationStep(t *testing.T) {
	var gotBody struct {
		InvocationStepTime string      `json:"invocationStepTime"`
		Payload            wirePayload `json:"payload"`
	}
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if r.URL.Path != "/v1/sessions/s-1/invocations/inv-1/steps/sxst-x" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})

	payload := domain.StepPayload{ContentBlocks: []domain.ContentBlock{
		domain.NewTextBlock("## Diagnostic step"),
	}}
	ts := time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)
	if err := gw.PutInvocationStep(context.Background(), "s-1", "inv-1", "sxst-x", ts, payload); err != nil {
		t.Fatalf("PutInvocationStep() error = %v", err)
	}
	if gotBody.InvocationStepTime != "2026-03-01T10:05:00Z" {
		t.Errorf("step time = %q", gotBody.InvocationStepTime)
	}
	if len(gotBody.Payload.ContentBlocks) != 1 {
		t.Errorf("payload blocks = %d, want 1", len(gotBody.Payload.ContentBlocks))
	}
}

func TestHTTPGatewayDeleteSession(t *testing.T) {
	var gotMethod string
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	})

	if err := gw.DeleteSession(context.Background(), "s-1"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %s, want DELETE", gotMethod)
	}
}

func TestHTTPGatewayListInvocationSteps(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/sessions/s-1/invocations/inv-1/steps" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"invocationStepSummaries": []map[string]string{
				{"invocationStepId": "sxst-1", "invocationStepTime": "2026-03-01T10:05:00Z"},
			},
		})
	})

	steps, err := gw.ListInvocationSteps(context.Background(), "s-1", "inv-1")
	if err != nil {
		t.Fatalf("ListInvocationSteps() error = %v", err)
	}
	if len(steps) != 1 || steps[0].ID != "sxst-1" {
		t.Errorf("unexpected steps: %+v", steps)
	}
}

func TestHTTPGatewayEndpointNormalization(t *testing.T) {
	gw, err := NewHTTPGateway(HTTPConfig{Endpoint: "gateway.example.com:8080"})
	if err != nil {
		t.Fatalf("NewHTTPGateway() error = %v", err)
	}
	if gw.BaseURL() != "http://gateway.example.com:8080" {
		t.Errorf("BaseURL() = %q", gw.BaseURL())
	}

	gw, err = NewHTTPGateway(HTTPConfig{Endpoint: "https://gateway.example.com"})
	if err != nil {
		t.Fatalf("NewHTTPGateway() error = %v", err)
	}
	if gw.BaseURL() != "https://gateway.example.com" {
		t.Errorf("BaseURL() = %q", gw.BaseURL())
	}
}

func TestHTTPGatewayBadCAFile(t *testing.T) {
	_, err := NewHTTPGateway(HTTPConfig{
		Endpoint:  "https://gateway.example.com",
		TLSCAFile: "/nonexistent/ca.pem",
	})
	if err == nil {
		t.Fatal("NewHTTPGateway() expected error for missing CA file")
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		notFound *domain.DomainError
		want     *domain.DomainError
	}{
		{
			name:     "404 uses per-call sentinel",
			status:   http.StatusNotFound,
			body:     `{"code": "SX-STEP-4040", "message": "no such step"}`,
			notFound: domain.ErrStepNotFound,
			want:     domain.ErrStepNotFound,
		},
		{
			name:   "409 is conflict",
			status: http.StatusConflict,
			body:   `{"message": "already ended"}`,
			want:   domain.ErrSessionEnded,
		},
		{
			name:   "400 is validation",
			status: http.StatusBadRequest,
			body:   `{"message": "sessionId required"}`,
			want:   domain.ErrGatewayValidation,
		},
		{
			name:   "429 is throttled",
			status: http.StatusTooManyRequests,
			body:   `{"message": "slow down"}`,
			want:   domain.ErrGatewayThrottled,
		},
		{
			name:   "500 is transient",
			status: http.StatusInternalServerError,
			body:   `{"message": "oops"}`,
			want:   domain.ErrGatewayTransient,
		},
		{
			name:     "exception code fallback",
			status:   http.StatusTeapot,
			body:     `{"code": "ResourceNotFoundException", "message": "gone"}`,
			notFound: domain.ErrSessionNotFound,
			want:     domain.ErrSessionNotFound,
		},
		{
			name:   "throttling exception fallback",
			status: http.StatusTeapot,
			body:   `{"code": "ThrottlingException"}`,
			want:   domain.ErrGatewayThrottled,
		},
		{
			name:   "non-json body is transient",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			want:   domain.ErrGatewayTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyError(tt.status, []byte(tt.body), tt.notFound)
			if !errors.Is(err, tt.want) {
				t.Errorf("classifyError() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestHTTPGatewayTransportFailure(t *testing.T) {
	gw, err := NewHTTPGateway(HTTPConfig{
		Endpoint: "127.0.0.1:1",
		Timeout:  200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewHTTPGateway() error = %v", err)
	}
	_, err = gw.GetSession(context.Background(), "s-1")
	if !errors.Is(err, domain.ErrGatewayTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}
