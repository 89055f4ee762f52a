// Package gateway provides access to the remote session gateway.
package gateway

import (
	"context"
	"time"

	"github.com/jperezcano/sessiondx-go/internal/core/domain"
)

// Gateway is the remote session-management contract consumed by the client.
// Every stateful operation is delegated to the remote service; the client
// never stores session data locally.
//
// Implementations classify failures into the domain error taxonomy:
// not-found, conflict, validation, throttled, transient, malformed response.
//
// @design DS-0201
type Gateway interface {
	// CreateSession creates a session with the given metadata and tags and
	// returns the assigned session identifier.
	CreateSession(ctx context.Context, metadata, tags map[string]string) (string, error)

	// GetSession fetches the session record.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// EndSession marks the session ended. Fails with a conflict error if the
	// session is already in a terminal state.
	EndSession(ctx context.Context, sessionID string) error

	// DeleteSession permanently removes the session and all sub-resources.
	DeleteSession(ctx context.Context, sessionID string) error

	// CreateInvocation creates an invocation under the session and returns
	// its identifier.
	CreateInvocation(ctx context.Context, sessionID, description string) (string, error)

	// ListInvocations lists all invocations of a session.
	ListInvocations(ctx context.Context, sessionID string) ([]domain.InvocationSummary, error)

	// ListInvocationSteps lists all steps of an invocation.
	ListInvocationSteps(ctx context.Context, sessionID, invocationID string) ([]domain.StepSummary, error)

	// GetInvocationStep fetches one step including its payload.
	GetInvocationStep(ctx context.Context, sessionID, invocationID, stepID string) (*domain.InvocationStep, error)

	// PutInvocationStep writes one immutable step with a client-supplied id
	// and timestamp.
	PutInvocationStep(ctx context.Context, sessionID, invocationID, stepID string, stepTime time.Time, payload domain.StepPayload) error
}
