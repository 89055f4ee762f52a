package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jperezcano/sessiondx-go/internal/core/domain"
	"github.com/jperezcano/sessiondx-go/internal/gateway"
)

// SessionIDPrefix and InvocationIDPrefix mark gateway-assigned identifiers.
const (
	SessionIDPrefix    = "sxse-"
	InvocationIDPrefix = "sxiv-"
)

type invocationRecord struct {
	summary domain.InvocationSummary
	order   []string
	steps   map[string]*domain.InvocationStep
}

type sessionRecord struct {
	session     domain.Session
	order       []string
	invocations map[string]*invocationRecord
}

// Gateway is an in-process implementation of the session gateway.
type Gateway struct {
	mu       sync.RWMutex
	sessions map[string]*sessionRecord

	// now is swappable for deterministic tests.
	now func() time.Time
}

var _ gateway.Gateway = (*Gateway)(nil)

// Option configures the Gateway.
type Option func(*Gateway)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

// New creates an empty in-process gateway.
func New(opts ...Option) *Gateway {
	g := &Gateway{
		sessions: make(map[string]*sessionRecord),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func newID(prefix string) string {
	return prefix + strings.ToLower(ulid.Make().String())
}

// CreateSession creates a new active session.
func (g *Gateway) CreateSession(_ context.Context, metadata, tags map[string]string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if metadata == nil {
		metadata = map[string]string{}
	}
	id := newID(SessionIDPrefix)
	g.sessions[id] = &sessionRecord{
		session: domain.Session{
			ID:        id,
			CreatedAt: g.now(),
			Metadata:  metadata,
			Tags:      tags,
		},
		invocations: make(map[string]*invocationRecord),
	}
	return id, nil
}

// GetSession retrieves a session by ID.
func (g *Gateway) GetSession(_ context.Context, sessionID string) (*domain.Session, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rec, ok := g.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	// Return a copy to prevent external modification.
	sess := rec.session
	sess.Metadata = copyMap(rec.session.Metadata)
	sess.Tags = copyMap(rec.session.Tags)
	return &sess, nil
}

// EndSession closes a session. Ending an already-closed session is a
// conflict.
func (g *Gateway) EndSession(_ context.Context, sessionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.sessions[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if !rec.session.EndedAt.IsZero() {
		return domain.ErrSessionEnded
	}
	rec.session.EndedAt = g.now()
	return nil
}

// DeleteSession removes a session and everything recorded under it.
func (g *Gateway) DeleteSession(_ context.Context, sessionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.sessions[sessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(g.sessions, sessionID)
	return nil
}

// CreateInvocation creates an invocation in an active session.
func (g *Gateway) CreateInvocation(_ context.Context, sessionID, description string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.sessions[sessionID]
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	if !rec.session.EndedAt.IsZero() {
		return "", domain.ErrSessionEnded
	}

	id := newID(InvocationIDPrefix)
	rec.invocations[id] = &invocationRecord{
		summary: domain.InvocationSummary{
			ID:          id,
			Description: description,
			CreatedAt:   g.now(),
		},
		steps: make(map[string]*domain.InvocationStep),
	}
	rec.order = append(rec.order, id)
	return id, nil
}

// ListInvocations lists a session's invocations in creation order.
func (g *Gateway) ListInvocations(_ context.Context, sessionID string) ([]domain.InvocationSummary, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rec, ok := g.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	out := make([]domain.InvocationSummary, 0, len(rec.order))
	for _, id := range rec.order {
		out = append(out, rec.invocations[id].summary)
	}
	return out, nil
}

// ListInvocationSteps lists an invocation's step summaries in write order.
func (g *Gateway) ListInvocationSteps(_ context.Context, sessionID, invocationID string) ([]domain.StepSummary, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	inv, err := g.invocation(sessionID, invocationID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.StepSummary, 0, len(inv.order))
	for _, id := range inv.order {
		out = append(out, domain.StepSummary{ID: id, StepTime: inv.steps[id].StepTime})
	}
	return out, nil
}

// GetInvocationStep retrieves a full step record.
func (g *Gateway) GetInvocationStep(_ context.Context, sessionID, invocationID, stepID string) (*domain.InvocationStep, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	inv, err := g.invocation(sessionID, invocationID)
	if err != nil {
		return nil, err
	}
	step, ok := inv.steps[stepID]
	if !ok {
		return nil, domain.ErrStepNotFound
	}

	out := *step
	return &out, nil
}

// PutInvocationStep stores a step under the caller-chosen identifier.
func (g *Gateway) PutInvocationStep(_ context.Context, sessionID, invocationID, stepID string, stepTime time.Time, payload domain.StepPayload) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	inv, err := g.invocation(sessionID, invocationID)
	if err != nil {
		return err
	}

	if _, exists := inv.steps[stepID]; !exists {
		inv.order = append(inv.order, stepID)
	}
	inv.steps[stepID] = &domain.InvocationStep{
		ID:           stepID,
		InvocationID: invocationID,
		StepTime:     stepTime,
		Payload:      payload,
	}
	return nil
}

// invocation looks up an invocation record. Callers hold g.mu.
func (g *Gateway) invocation(sessionID, invocationID string) (*invocationRecord, error) {
	rec, ok := g.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	inv, ok := rec.invocations[invocationID]
	if !ok {
		return nil, domain.ErrInvocationNotFound
	}
	return inv, nil
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
