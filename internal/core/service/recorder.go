package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jperezcano/sessiondx-go/internal/core/domain"
	"github.com/jperezcano/sessiondx-go/internal/gateway"
	"github.com/jperezcano/sessiondx-go/internal/telemetry/logger"
)

// Recorder retry defaults. Invocation creation is the one retried call in
// the whole workflow: it is retried on any failure with a fixed pause
// between attempts. Everything else is attempted once.
const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = time.Second
)

// RecorderConfig configures the invocation-creation retry behavior of
// RecorderService.
type RecorderConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
}

// RecorderService records diagnostic steps into a session.
//
// @req RQ-0103
// @design DS-0103
type RecorderService struct {
	gw  gateway.Gateway
	cfg RecorderConfig
	log logger.Logger

	// Swappable for deterministic tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRecorderService creates a new RecorderService.
func NewRecorderService(gw gateway.Gateway, cfg RecorderConfig, log logger.Logger) *RecorderService {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if log == nil {
		log = logger.Default()
	}
	return &RecorderService{
		gw:    gw,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// RecordStepRequest contains parameters for recording a diagnostic step.
type RecordStepRequest struct {
	SessionID    string // Required
	InvocationID string // Optional; a new invocation is created when empty
	EngineerID   string // Required
	Component    string // Required
	Action       string // Required
	Result       string
	NextSteps    string
	ImagePaths   []string // Optional screenshot files attached to the step
}

// RecordStepResponse contains the result of recording a step.
type RecordStepResponse struct {
	InvocationID string
	StepID       string
	// Verified reports whether the post-write read-back confirmed the step.
	Verified bool
	// SkippedImages lists attachment paths that could not be loaded.
	SkippedImages []string
}

// Record writes a diagnostic step. The session is checked before any write
// so a bad session identifier fails fast; invocation creation is retried up
// to the configured attempt count, the step itself is written once.
func (s *RecorderService) Record(ctx context.Context, req *RecordStepRequest) (*RecordStepResponse, error) {
	// 1. Validate required fields
	if req.SessionID == "" {
		return nil, domain.ErrMissingArgument.WithDetails("session id is required")
	}
	if req.EngineerID == "" {
		return nil, domain.ErrMissingArgument.WithDetails("engineer id is required")
	}
	if req.Component == "" {
		return nil, domain.ErrMissingArgument.WithDetails("component is required")
	}
	if req.Action == "" {
		return nil, domain.ErrMissingArgument.WithDetails("action is required")
	}

	// 2. Read before write: the session must exist and be active
	session, err := s.gw.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status() == domain.StatusClosed {
		return nil, domain.ErrSessionEnded.WithDetails("cannot record into a closed session")
	}

	// 3. Resolve the invocation
	invocationID := req.InvocationID
	if invocationID == "" {
		description := fmt.Sprintf("diagnosis of %s by %s", req.Component, req.EngineerID)
		invocationID, err = s.createInvocationWithRetry(ctx, req.SessionID, description)
		if err != nil {
			return nil, err
		}
		s.log.Debug("invocation created", "session_id", req.SessionID, "invocation_id", invocationID)
	}

	// 4. Assemble the step payload
	blocks := []domain.ContentBlock{domain.NewTextBlock(renderStepText(req))}
	var skipped []string
	for _, path := range req.ImagePaths {
		block, err := loadImageBlock(path)
		if err != nil {
			s.log.Warn("skipping attachment", "path", path, "error", err)
			skipped = append(skipped, path)
			continue
		}
		blocks = append(blocks, block)
	}

	stepID, err := domain.GenerateStepID()
	if err != nil {
		return nil, err
	}
	stepTime := s.now()
	payload := domain.StepPayload{ContentBlocks: blocks}

	// 5. Write the step. A single attempt: the write is not idempotent from
	// the operator's point of view, so failures surface immediately.
	if err := s.gw.PutInvocationStep(ctx, req.SessionID, invocationID, stepID, stepTime, payload); err != nil {
		return nil, err
	}

	s.log.Info("step recorded",
		"session_id", req.SessionID,
		"invocation_id", invocationID,
		"step_id", stepID,
		"attachments", len(blocks)-1)

	// 6. Best-effort verification; never fails the recording
	verified := s.verify(ctx, req.SessionID, invocationID, stepID, len(blocks))

	return &RecordStepResponse{
		InvocationID:  invocationID,
		StepID:        stepID,
		Verified:      verified,
		SkippedImages: skipped,
	}, nil
}

// createInvocationWithRetry creates an invocation, retrying any failure
// with a fixed delay between attempts. Exhaustion surfaces a recorder error
// that distinguishes a missing invocation id in an otherwise successful
// response from an outright call failure.
func (s *RecorderService) createInvocationWithRetry(ctx context.Context, sessionID, description string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		invID, err := s.gw.CreateInvocation(ctx, sessionID, description)
		if err == nil && invID != "" {
			return invID, nil
		}
		if err == nil {
			lastErr = domain.ErrRecorderNoInvocationID
		} else {
			lastErr = err
		}
		s.log.Warn("invocation creation failed",
			"attempt", attempt,
			"max_attempts", s.cfg.MaxAttempts,
			"error", lastErr)
		if attempt < s.cfg.MaxAttempts {
			if err := s.sleep(ctx, s.cfg.RetryDelay); err != nil {
				return "", domain.ErrRecorderFailed.WithCause(err)
			}
		}
	}
	if errors.Is(lastErr, domain.ErrRecorderNoInvocationID) || errors.Is(lastErr, domain.ErrMalformedResponse) {
		return "", domain.ErrRecorderNoInvocationID.WithDetails(
			fmt.Sprintf("gave up after %d attempts", s.cfg.MaxAttempts)).WithCause(lastErr)
	}
	return "", domain.ErrRecorderFailed.WithDetails(
		fmt.Sprintf("gave up after %d attempts", s.cfg.MaxAttempts)).WithCause(lastErr)
}

// verify reads the step back and compares the block count.
func (s *RecorderService) verify(ctx context.Context, sessionID, invocationID, stepID string, wantBlocks int) bool {
	step, err := s.gw.GetInvocationStep(ctx, sessionID, invocationID, stepID)
	if err != nil {
		s.log.Warn("step verification failed", "step_id", stepID, "error", err)
		return false
	}
	if got := len(step.Payload.ContentBlocks); got != wantBlocks {
		s.log.Warn("step verification mismatch", "step_id", stepID, "got_blocks", got, "want_blocks", wantBlocks)
		return false
	}
	return true
}

// renderStepText renders the markdown block stored as the step's text
// content. The Component and Engineer markers are what the reconstructor's
// annotator looks for.
func renderStepText(req *RecordStepRequest) string {
	var b strings.Builder
	b.WriteString("### Diagnostic step\n")
	fmt.Fprintf(&b, "**Engineer:** %s\n", req.EngineerID)
	fmt.Fprintf(&b, "**Component:** %s\n", req.Component)
	fmt.Fprintf(&b, "**Action:** %s\n", req.Action)
	if req.Result != "" {
		fmt.Fprintf(&b, "**Result:** %s\n", req.Result)
	}
	if req.NextSteps != "" {
		fmt.Fprintf(&b, "**Next steps:** %s\n", req.NextSteps)
	}
	return strings.TrimRight(b.String(), "\n")
}

// loadImageBlock reads an attachment file into an image content block. The
// format comes from the file extension; unknown extensions fall back to png.
func loadImageBlock(path string) (domain.ContentBlock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ContentBlock{}, err
	}
	format := domain.NormalizeImageFormat(filepath.Ext(path))
	return domain.NewImageBlock(format, data), nil
}

// sleepCtx pauses for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
