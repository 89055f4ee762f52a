// Package domain defines the core domain models for sessiondx.
package domain

import "time"

// Session metadata keys written at open time and read back during
// reconstruction. The gateway treats metadata as an opaque string map.
const (
	MetaIncidentID     = "incidentId"
	MetaSystemAffected = "systemAffected"
	MetaSeverity       = "severity"
	MetaStartedAt      = "startedAt"
)

// Session status values derived from the end timestamp.
const (
	StatusActive = "Active"
	StatusClosed = "Closed"
)

// Severity levels accepted when opening a session.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Session is the normalized client-side view of a remote diagnostic session.
// The gateway owns the record; the client holds the identifier and whatever
// the last GetSession returned.
//
// @req RQ-0101
// @design DS-0101
type Session struct {
	// ID is the opaque session identifier (or ARN) assigned by the gateway.
	ID string `json:"id"`

	// CreatedAt is the session creation timestamp.
	CreatedAt time.Time `json:"created_at"`

	// EndedAt is the session end timestamp. Zero while the session is active.
	EndedAt time.Time `json:"ended_at,omitempty"`

	// Metadata is the free-form metadata map set at creation.
	Metadata map[string]string `json:"metadata"`

	// Tags is the tag map set at creation.
	Tags map[string]string `json:"tags,omitempty"`
}

// Status returns "Active" if the session has no end timestamp, else "Closed".
func (s *Session) Status() string {
	if s.EndedAt.IsZero() {
		return StatusActive
	}
	return StatusClosed
}

// Meta returns the metadata value for key, or def if absent or empty.
func (s *Session) Meta(key, def string) string {
	if s.Metadata == nil {
		return def
	}
	if v, ok := s.Metadata[key]; ok && v != "" {
		return v
	}
	return def
}

// ValidSeverity reports whether sev is an accepted severity level.
func ValidSeverity(sev string) bool {
	switch sev {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}
