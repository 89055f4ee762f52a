// Package domain defines the core domain models for sessiondx.
package domain

import "time"

// DiagnosticContext is the reconstructed, read-only narrative view of a
// session's full history. It is rebuilt from scratch on every query and is
// never persisted.
//
// @req RQ-0103
// @design DS-0103
type DiagnosticContext struct {
	// Incident is the incident info extracted from session metadata.
	Incident IncidentInfo `json:"incident_info"`

	// Timeline holds one entry per invocation, sorted by timestamp.
	Timeline []TimelineEvent `json:"diagnostic_timeline"`

	// ComponentsTested is the deduplicated list of component names extracted
	// from step text.
	ComponentsTested []string `json:"components_tested"`

	// Hypotheses holds extracted hypothesis records, sorted by timestamp.
	Hypotheses []Hypothesis `json:"hypotheses"`

	// Screenshots holds image references, sorted by timestamp.
	Screenshots []Screenshot `json:"screenshots"`
}

// IncidentInfo is the incident record derived from session metadata.
// Fields for which the gateway returned no metadata are "Unknown".
type IncidentInfo struct {
	IncidentID     string    `json:"incident_id"`
	SystemAffected string    `json:"system_affected"`
	Severity       string    `json:"severity"`
	StartedAt      time.Time `json:"started_at"`
	Status         string    `json:"status"`
}

// TimelineEvent is one invocation-level entry of the timeline.
type TimelineEvent struct {
	Timestamp   time.Time  `json:"timestamp"`
	Description string     `json:"description"`
	Engineer    string     `json:"engineer"`
	Steps       []StepView `json:"steps"`
}

// StepView is the display view of one invocation step.
type StepView struct {
	Timestamp   time.Time  `json:"timestamp"`
	TextContent string     `json:"text_content"`
	HasImages   bool       `json:"has_images"`
	ImageRefs   []ImageRef `json:"image_refs,omitempty"`
}

// ImageRef identifies one image block within a step.
type ImageRef struct {
	StepID string `json:"step_id"`
	Format string `json:"format"`
}

// Hypothesis is one extracted hypothesis record.
type Hypothesis struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Engineer  string    `json:"engineer"`
}

// Screenshot is one screenshot reference with its surrounding context.
type Screenshot struct {
	StepID       string    `json:"step_id"`
	InvocationID string    `json:"invocation_id"`
	Timestamp    time.Time `json:"timestamp"`

	// AssociatedText is the first 100 characters of the step's text, with an
	// ellipsis when truncated.
	AssociatedText string `json:"associated_text"`
}
