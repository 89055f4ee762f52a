package service

import (
	"context"
	"strings"
	"time"

	"github.com/jperezcano/sessiondx-go/internal/core/domain"
	"github.com/jperezcano/sessiondx-go/internal/gateway"
	"github.com/jperezcano/sessiondx-go/internal/telemetry/logger"
)

// Default tags applied to every session opened by this tool. They let
// gateway operators tell diagnosis sessions apart from other workloads.
var defaultSessionTags = map[string]string{
	"Environment":  "Development",
	"IncidentType": "PerformanceDegradation",
	"Demo":         "True",
}

// LifecycleService handles opening, closing, and deleting diagnosis
// sessions.
//
// @req RQ-0102
// @design DS-0103
type LifecycleService struct {
	gw  gateway.Gateway
	log logger.Logger

	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewLifecycleService creates a new LifecycleService.
func NewLifecycleService(gw gateway.Gateway, log logger.Logger) *LifecycleService {
	if log == nil {
		log = logger.Default()
	}
	return &LifecycleService{
		gw:  gw,
		log: log,
		now: time.Now,
	}
}

// OpenSessionRequest contains parameters for opening a diagnosis session.
type OpenSessionRequest struct {
	IncidentID     string // Required
	SystemAffected string // Required
	Severity       string // Optional, defaults to high
	Tags           map[string]string
}

// OpenSessionResponse contains the result of opening a session.
type OpenSessionResponse struct {
	SessionID string
	Session   *domain.Session
}

// Open creates a new diagnosis session for an incident.
func (s *LifecycleService) Open(ctx context.Context, req *OpenSessionRequest) (*OpenSessionResponse, error) {
	// 1. Validate required fields
	if req.IncidentID == "" {
		return nil, domain.ErrMissingArgument.WithDetails("incident id is required")
	}
	if req.SystemAffected == "" {
		return nil, domain.ErrMissingArgument.WithDetails("affected system is required")
	}

	severity := strings.ToLower(req.Severity)
	if severity == "" {
		severity = domain.SeverityHigh
	}
	if !domain.ValidSeverity(severity) {
		return nil, domain.ErrSessionValidation.WithDetails("severity must be high, medium, or low")
	}

	// 2. Assemble metadata and tags
	metadata := map[string]string{
		domain.MetaIncidentID:     req.IncidentID,
		domain.MetaSystemAffected: req.SystemAffected,
		domain.MetaSeverity:       severity,
		domain.MetaStartedAt:      s.now().UTC().Format(time.RFC3339),
	}

	tags := make(map[string]string, len(defaultSessionTags)+len(req.Tags))
	for k, v := range defaultSessionTags {
		tags[k] = v
	}
	for k, v := range req.Tags {
		tags[k] = v
	}

	// 3. Create and read back
	sessionID, err := s.gw.CreateSession(ctx, metadata, tags)
	if err != nil {
		return nil, err
	}

	s.log.Info("session opened",
		"session_id", sessionID,
		"incident_id", req.IncidentID,
		"severity", severity)

	session, err := s.gw.GetSession(ctx, sessionID)
	if err != nil {
		// The session was created; surface it even if the read-back failed.
		s.log.Warn("could not read back new session", "session_id", sessionID, "error", err)
		return &OpenSessionResponse{SessionID: sessionID}, nil
	}

	return &OpenSessionResponse{SessionID: sessionID, Session: session}, nil
}

// Describe fetches the current state of a session.
func (s *LifecycleService) Describe(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, domain.ErrMissingArgument.WithDetails("session id is required")
	}
	return s.gw.GetSession(ctx, sessionID)
}

// CloseSessionRequest contains parameters for closing a session.
type CloseSessionRequest struct {
	SessionID         string // Required
	ResolutionSummary string
	ResolutionType    string // Defaults to "resolved"
}

// Close records a final resolution step and then ends the session. Closing
// an already-closed session returns a conflict error; the caller decides
// whether that is fatal.
func (s *LifecycleService) Close(ctx context.Context, req *CloseSessionRequest) error {
	if req.SessionID == "" {
		return domain.ErrMissingArgument.WithDetails("session id is required")
	}
	resolutionType := req.ResolutionType
	if resolutionType == "" {
		resolutionType = "resolved"
	}

	// 1. Write the resolution record as one last invocation step.
	invID, err := s.gw.CreateInvocation(ctx, req.SessionID, "incident resolution")
	if err != nil {
		return err
	}
	resolvedAt := s.now().UTC()
	stepID, err := domain.GenerateStepID()
	if err != nil {
		return err
	}
	payload := domain.StepPayload{ContentBlocks: []domain.ContentBlock{
		domain.NewTextBlock(renderResolutionText(resolutionType, req.ResolutionSummary, resolvedAt)),
	}}
	if err := s.gw.PutInvocationStep(ctx, req.SessionID, invID, stepID, resolvedAt, payload); err != nil {
		return err
	}

	// 2. End the session.
	if err := s.gw.EndSession(ctx, req.SessionID); err != nil {
		return err
	}
	s.log.Info("session closed",
		"session_id", req.SessionID,
		"resolution_type", resolutionType)
	return nil
}

// renderResolutionText formats the structured resolution record stored in
// the final step of a closed session.
func renderResolutionText(resolutionType, summary string, resolvedAt time.Time) string {
	if summary == "" {
		summary = "(none provided)"
	}
	var b strings.Builder
	b.WriteString("## Incident Resolution\n\n")
	b.WriteString("**Type:** " + resolutionType + "\n")
	b.WriteString("**Summary:** " + summary + "\n")
	b.WriteString("**Resolved at:** " + resolvedAt.Format(time.RFC3339) + "\n")
	b.WriteString("**Lessons learned:** (to be completed)\n")
	return b.String()
}

// DeleteSessionRequest contains parameters for deleting a session.
type DeleteSessionRequest struct {
	SessionID string // Required
	Reason    string
	Approver  string
}

// Delete permanently removes a session and all steps recorded under it.
// An audit record is written to the local log for operator visibility; it
// is never sent to the gateway.
func (s *LifecycleService) Delete(ctx context.Context, req *DeleteSessionRequest) error {
	if req.SessionID == "" {
		return domain.ErrMissingArgument.WithDetails("session id is required")
	}
	if err := s.gw.DeleteSession(ctx, req.SessionID); err != nil {
		return err
	}
	s.log.Info("session delete audit",
		"action", "delete",
		"session_id", req.SessionID,
		"timestamp", s.now().UTC().Format(time.RFC3339),
		"reason", req.Reason,
		"approver", req.Approver)
	return nil
}
