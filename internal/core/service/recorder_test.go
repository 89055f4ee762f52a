package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jperezcano/sessiondx-go/internal/core/domain"
	"github.com/jperezcano/sessiondx-go/internal/gateway"
	"github.com/jperezcano/sessiondx-go/internal/gateway/memory"
)

// flakyGateway wraps a real gateway and injects failures: the first
// createFailures invocation creations fail with createErr, the first
// putFailures step writes fail with putErr.
type flakyGateway struct {
	gateway.Gateway

	createFailures int
	createErr      error
	createCalls    int

	putFailures int
	putErr      error
	putCalls    int
}

func (f *flakyGateway) CreateInvocation(ctx context.Context, sessionID, description string) (string, error) {
	f.createCalls++
	if f.createCalls <= f.createFailures {
		return "", f.createErr
	}
	return f.Gateway.CreateInvocation(ctx, sessionID, description)
}

func (f *flakyGateway) PutInvocationStep(ctx context.Context, sessionID, invocationID, stepID string, stepTime time.Time, payload domain.StepPayload) error {
	f.putCalls++
	if f.putCalls <= f.putFailures {
		return f.putErr
	}
	return f.Gateway.PutInvocationStep(ctx, sessionID, invocationID, stepID, stepTime, payload)
}

// emptyInvocationGateway accepts invocation creation but never returns an id.
type emptyInvocationGateway struct {
	gateway.Gateway
	createCalls int
}

func (g *emptyInvocationGateway) CreateInvocation(ctx context.Context, sessionID, description string) (string, error) {
	g.createCalls++
	return "", nil
}

func newTestRecorder(gw gateway.Gateway) *RecorderService {
	svc := NewRecorderService(gw, RecorderConfig{}, nil)
	svc.sleep = func(context.Context, time.Duration) error { return nil }
	return svc
}

func openTestSession(t *testing.T, gw gateway.Gateway) string {
	t.Helper()
	id, err := gw.CreateSession(context.Background(),
		map[string]string{domain.MetaIncidentID: "INC-1001"}, nil)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	return id
}

func TestRecordCreatesInvocation(t *testing.T) {
	ctx := context.Background()
	gw := memory.New()
	sid := openTestSession(t, gw)
	svc := newTestRecorder(gw)

	resp, err := svc.Record(ctx, &RecordStepRequest{
		SessionID:  sid,
		EngineerID: "alice",
		Component:  "api-gateway",
		Action:     "restarted the pod",
		Result:     "latency back to baseline",
		NextSteps:  "monitor for 30 minutes",
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if resp.InvocationID == "" || resp.StepID == "" {
		t.Fatalf("incomplete response: %+v", resp)
	}
	if !strings.HasPrefix(resp.StepID, domain.StepIDPrefix) {
		t.Errorf("step id %q missing prefix", resp.StepID)
	}
	if !resp.Verified {
		t.Error("read-back verification should pass against the in-process gateway")
	}

	invocations, _ := gw.ListInvocations(ctx, sid)
	if len(invocations) != 1 {
		t.Fatalf("got %d invocations, want 1", len(invocations))
	}
	if invocations[0].Description != "diagnosis of api-gateway by alice" {
		t.Errorf("description = %q", invocations[0].Description)
	}

	step, err := gw.GetInvocationStep(ctx, sid, resp.InvocationID, resp.StepID)
	if err != nil {
		t.Fatalf("GetInvocationStep() error = %v", err)
	}
	text := step.Payload.ContentBlocks[0].Text
	for _, want := range []string{
		"**Engineer:** alice",
		"**Component:** api-gateway",
		"**Action:** restarted the pod",
		"**Result:** latency back to baseline",
		"**Next steps:** monitor for 30 minutes",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("step text missing %q:\n%s", want, text)
		}
	}
}

func TestRecordReusesInvocation(t *testing.T) {
	ctx := context.Background()
	gw := memory.New()
	sid := openTestSession(t, gw)
	inv, _ := gw.CreateInvocation(ctx, sid, "diagnosis of db by bob")
	svc := newTestRecorder(gw)

	resp, err := svc.Record(ctx, &RecordStepRequest{
		SessionID:    sid,
		InvocationID: inv,
		EngineerID:   "bob",
		Component:    "db",
		Action:       "checked slow query log",
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if resp.InvocationID != inv {
		t.Errorf("invocation = %q, want reuse of %q", resp.InvocationID, inv)
	}

	invocations, _ := gw.ListInvocations(ctx, sid)
	if len(invocations) != 1 {
		t.Errorf("got %d invocations, want 1", len(invocations))
	}
}

func TestRecordValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestRecorder(memory.New())

	tests := []struct {
		name string
		req  *RecordStepRequest
	}{
		{"missing session", &RecordStepRequest{EngineerID: "a", Component: "c", Action: "x"}},
		{"missing engineer", &RecordStepRequest{SessionID: "s", Component: "c", Action: "x"}},
		{"missing component", &RecordStepRequest{SessionID: "s", EngineerID: "a", Action: "x"}},
		{"missing action", &RecordStepRequest{SessionID: "s", EngineerID: "a", Component: "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Record(ctx, tt.req); !errors.Is(err, domain.ErrMissingArgument) {
				t.Errorf("Record() error = %v, want missing-argument", err)
			}
		})
	}
}

func TestRecordFailsFastOnBadSession(t *testing.T) {
	ctx := context.Background()
	gw := &flakyGateway{Gateway: memory.New()}
	svc := newTestRecorder(gw)

	_, err := svc.Record(ctx, &RecordStepRequest{
		SessionID:  "sxse-missing",
		EngineerID: "alice",
		Component:  "db",
		Action:     "look",
	})
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("Record() error = %v, want not-found", err)
	}
	if gw.putCalls != 0 {
		t.Errorf("putCalls = %d, want 0 (fail before write)", gw.putCalls)
	}
}

func TestRecordRejectsClosedSession(t *testing.T) {
	ctx := context.Background()
	gw := memory.New()
	sid := openTestSession(t, gw)
	_ = gw.EndSession(ctx, sid)
	svc := newTestRecorder(gw)

	_, err := svc.Record(ctx, &RecordStepRequest{
		SessionID:  sid,
		EngineerID: "alice",
		Component:  "db",
		Action:     "look",
	})
	if !errors.Is(err, domain.ErrSessionEnded) {
		t.Fatalf("Record() error = %v, want conflict", err)
	}
}

func TestRecordRetriesInvocationCreation(t *testing.T) {
	ctx := context.Background()
	gw := &flakyGateway{
		Gateway:        memory.New(),
		createFailures: 2,
		createErr:      domain.ErrGatewayTransient,
	}
	sid := openTestSession(t, gw)
	svc := newTestRecorder(gw)

	resp, err := svc.Record(ctx, &RecordStepRequest{
		SessionID:  sid,
		EngineerID: "alice",
		Component:  "db",
		Action:     "look",
	})
	if err != nil {
		t.Fatalf("Record() error = %v, want success on third attempt", err)
	}
	if gw.createCalls != 3 {
		t.Errorf("createCalls = %d, want 3", gw.createCalls)
	}
	if !resp.Verified {
		t.Error("step should verify after the successful write")
	}
}

func TestRecordInvocationRetryCoversAnyFailure(t *testing.T) {
	// Unlike most of the workflow, invocation creation retries every error
	// class, not just transient ones.
	ctx := context.Background()
	gw := &flakyGateway{
		Gateway:        memory.New(),
		createFailures: 1,
		createErr:      domain.ErrGatewayValidation,
	}
	sid := openTestSession(t, gw)
	svc := newTestRecorder(gw)

	if _, err := svc.Record(ctx, &RecordStepRequest{
		SessionID:  sid,
		EngineerID: "alice",
		Component:  "db",
		Action:     "look",
	}); err != nil {
		t.Fatalf("Record() error = %v, want retry past the validation failure", err)
	}
	if gw.createCalls != 2 {
		t.Errorf("createCalls = %d, want 2", gw.createCalls)
	}
}

func TestRecordGivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	gw := &flakyGateway{
		Gateway:        memory.New(),
		createFailures: 10,
		createErr:      domain.ErrGatewayThrottled,
	}
	sid := openTestSession(t, gw)
	svc := newTestRecorder(gw)

	_, err := svc.Record(ctx, &RecordStepRequest{
		SessionID:  sid,
		EngineerID: "alice",
		Component:  "db",
		Action:     "look",
	})
	if !errors.Is(err, domain.ErrRecorderFailed) {
		t.Fatalf("Record() error = %v, want recorder-failed", err)
	}
	if !errors.Is(err, domain.ErrGatewayThrottled) {
		t.Errorf("cause should be preserved, got %v", err)
	}
	if gw.createCalls != DefaultMaxAttempts {
		t.Errorf("createCalls = %d, want %d", gw.createCalls, DefaultMaxAttempts)
	}
	if gw.putCalls != 0 {
		t.Errorf("putCalls = %d, want 0 (no step without an invocation)", gw.putCalls)
	}
}

func TestRecordMissingInvocationID(t *testing.T) {
	ctx := context.Background()
	base := memory.New()
	sid := openTestSession(t, base)
	gw := &emptyInvocationGateway{Gateway: base}
	svc := newTestRecorder(gw)

	_, err := svc.Record(ctx, &RecordStepRequest{
		SessionID:  sid,
		EngineerID: "alice",
		Component:  "db",
		Action:     "look",
	})
	if !errors.Is(err, domain.ErrRecorderNoInvocationID) {
		t.Fatalf("Record() error = %v, want no-invocation-id", err)
	}
	if gw.createCalls != DefaultMaxAttempts {
		t.Errorf("createCalls = %d, want %d", gw.createCalls, DefaultMaxAttempts)
	}
}

func TestRecordStepWriteNotRetried(t *testing.T) {
	ctx := context.Background()
	gw := &flakyGateway{
		Gateway:     memory.New(),
		putFailures: 10,
		putErr:      domain.ErrGatewayTransient,
	}
	sid := openTestSession(t, gw)
	svc := newTestRecorder(gw)

	_, err := svc.Record(ctx, &RecordStepRequest{
		SessionID:  sid,
		EngineerID: "alice",
		Component:  "db",
		Action:     "look",
	})
	if !errors.Is(err, domain.ErrGatewayTransient) {
		t.Fatalf("Record() error = %v, want the write failure surfaced", err)
	}
	if gw.putCalls != 1 {
		t.Errorf("putCalls = %d, want 1 (single attempt)", gw.putCalls)
	}
}

func TestRecordAttachments(t *testing.T) {
	ctx := context.Background()
	gw := memory.New()
	sid := openTestSession(t, gw)
	svc := newTestRecorder(gw)

	dir := t.TempDir()
	imgPath := filepath.Join(dir, "graph.PNG")
	if err := os.WriteFile(imgPath, []byte{0x89, 0x50, 0x4e, 0x47}, 0o600); err != nil {
		t.Fatal(err)
	}

	resp, err := svc.Record(ctx, &RecordStepRequest{
		SessionID:  sid,
		EngineerID: "alice",
		Component:  "db",
		Action:     "captured latency graph",
		ImagePaths: []string{imgPath, filepath.Join(dir, "missing.png")},
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if len(resp.SkippedImages) != 1 {
		t.Errorf("SkippedImages = %v, want the unreadable path only", resp.SkippedImages)
	}

	step, _ := gw.GetInvocationStep(ctx, sid, resp.InvocationID, resp.StepID)
	if len(step.Payload.ContentBlocks) != 2 {
		t.Fatalf("got %d blocks, want text + image", len(step.Payload.ContentBlocks))
	}
	img := step.Payload.ContentBlocks[1]
	if !img.IsImage() || img.Image.Format != "png" {
		t.Errorf("image block = %+v, want png", img)
	}
}
