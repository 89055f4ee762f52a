package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jperezcano/sessiondx-go/internal/core/domain"
	"github.com/jperezcano/sessiondx-go/internal/gateway"
	"github.com/jperezcano/sessiondx-go/internal/telemetry/logger"
)

// unknownValue fills incident fields the session metadata does not carry.
const unknownValue = "Unknown"

// associatedTextLimit bounds the text excerpt stored with a screenshot.
const associatedTextLimit = 100

// ReconstructorService rebuilds the full diagnostic context of a session
// from the gateway's records. Reconstruction is read-only and rebuilt from
// scratch on every call.
//
// @req RQ-0104
// @design DS-0103
type ReconstructorService struct {
	gw        gateway.Gateway
	annotator Annotator
	log       logger.Logger
}

// NewReconstructorService creates a new ReconstructorService. A nil
// annotator selects the marker-based default.
func NewReconstructorService(gw gateway.Gateway, annotator Annotator, log logger.Logger) *ReconstructorService {
	if annotator == nil {
		annotator = NewMarkerAnnotator()
	}
	if log == nil {
		log = logger.Default()
	}
	return &ReconstructorService{
		gw:        gw,
		annotator: annotator,
		log:       log,
	}
}

// Reconstruct assembles the diagnostic context of a session. A missing
// session fails fast; partial or malformed records within the session are
// skipped with a warning so one bad step never loses the rest of the
// history.
func (s *ReconstructorService) Reconstruct(ctx context.Context, sessionID string) (*domain.DiagnosticContext, error) {
	if sessionID == "" {
		return nil, domain.ErrMissingArgument.WithDetails("session id is required")
	}

	// 1. The session itself must resolve
	session, err := s.gw.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	dc := &domain.DiagnosticContext{
		Incident:         incidentInfo(session),
		Timeline:         []domain.TimelineEvent{},
		ComponentsTested: []string{},
		Hypotheses:       []domain.Hypothesis{},
		Screenshots:      []domain.Screenshot{},
	}

	// 2. Walk every invocation in creation order, so first-seen
	// accumulators follow chronology rather than gateway list order.
	// Invocations without a creation time sort first.
	invocations, err := s.gw.ListInvocations(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(invocations, func(i, j int) bool {
		return invocations[i].CreatedAt.Before(invocations[j].CreatedAt)
	})

	seenComponents := make(map[string]bool)
	log := logger.ForSession(ctx, sessionID)

	for _, inv := range invocations {
		if inv.ID == "" {
			log.Warn("skipping invocation without identifier")
			continue
		}

		engineer := engineerFromDescription(inv.Description)
		event := domain.TimelineEvent{
			Timestamp:   inv.CreatedAt,
			Description: inv.Description,
			Engineer:    engineer,
			Steps:       []domain.StepView{},
		}

		// 3. Walk every step of the invocation
		summaries, err := s.gw.ListInvocationSteps(ctx, sessionID, inv.ID)
		if err != nil {
			log.Warn("skipping invocation steps", "invocation_id", inv.ID, "error", err)
			dc.Timeline = append(dc.Timeline, event)
			continue
		}

		for _, summary := range summaries {
			if summary.ID == "" {
				log.Warn("skipping step without identifier", "invocation_id", inv.ID)
				continue
			}

			step, err := s.gw.GetInvocationStep(ctx, sessionID, inv.ID, summary.ID)
			if err != nil {
				log.Warn("skipping unreadable step",
					"invocation_id", inv.ID,
					"step_id", summary.ID,
					"error", err)
				continue
			}

			view := s.collectStep(dc, seenComponents, inv.ID, step)
			event.Steps = append(event.Steps, view)
		}

		sort.SliceStable(event.Steps, func(i, j int) bool {
			return event.Steps[i].Timestamp.Before(event.Steps[j].Timestamp)
		})
		dc.Timeline = append(dc.Timeline, event)
	}

	// 4. Final chronological ordering
	sort.SliceStable(dc.Timeline, func(i, j int) bool {
		return dc.Timeline[i].Timestamp.Before(dc.Timeline[j].Timestamp)
	})
	sort.SliceStable(dc.Hypotheses, func(i, j int) bool {
		return dc.Hypotheses[i].Timestamp.Before(dc.Hypotheses[j].Timestamp)
	})
	sort.SliceStable(dc.Screenshots, func(i, j int) bool {
		return dc.Screenshots[i].Timestamp.Before(dc.Screenshots[j].Timestamp)
	})

	return dc, nil
}

// collectStep folds one step into the context accumulators and returns its
// timeline view.
func (s *ReconstructorService) collectStep(dc *domain.DiagnosticContext, seen map[string]bool, invocationID string, step *domain.InvocationStep) domain.StepView {
	var texts []string
	var refs []domain.ImageRef

	for _, block := range step.Payload.ContentBlocks {
		if block.IsImage() {
			refs = append(refs, domain.ImageRef{StepID: step.ID, Format: block.Image.Format})
			continue
		}
		if block.Text != "" {
			texts = append(texts, block.Text)
		}
	}

	text := strings.Join(texts, "\n")

	// Components: deduplicated, first-seen order
	for _, component := range s.annotator.Components(text) {
		if !seen[component] {
			seen[component] = true
			dc.ComponentsTested = append(dc.ComponentsTested, component)
		}
	}

	// Hypotheses carry the step time and the engineer the step text names
	for _, note := range s.annotator.Hypotheses(text) {
		dc.Hypotheses = append(dc.Hypotheses, domain.Hypothesis{
			Text:      note.Text,
			Timestamp: step.StepTime,
			Engineer:  note.Engineer,
		})
	}

	// Screenshots keep an excerpt of the step text for orientation
	for range refs {
		dc.Screenshots = append(dc.Screenshots, domain.Screenshot{
			StepID:         step.ID,
			InvocationID:   invocationID,
			Timestamp:      step.StepTime,
			AssociatedText: excerpt(text, associatedTextLimit),
		})
	}

	return domain.StepView{
		Timestamp:   step.StepTime,
		TextContent: text,
		HasImages:   len(refs) > 0,
		ImageRefs:   refs,
	}
}

// incidentInfo maps session metadata to the incident header, substituting
// Unknown for absent keys.
func incidentInfo(session *domain.Session) domain.IncidentInfo {
	info := domain.IncidentInfo{
		IncidentID:     session.Meta(domain.MetaIncidentID, unknownValue),
		SystemAffected: session.Meta(domain.MetaSystemAffected, unknownValue),
		Severity:       session.Meta(domain.MetaSeverity, unknownValue),
		Status:         session.Status(),
	}
	if raw := session.Meta(domain.MetaStartedAt, ""); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			info.StartedAt = t
		}
	}
	if info.StartedAt.IsZero() {
		info.StartedAt = session.CreatedAt
	}
	return info
}

// engineerFromDescription pulls the engineer name from an invocation
// description of the form "diagnosis of <component> by <engineer>". Both
// the English "by" and Spanish "por" connectors appear in recorded data.
func engineerFromDescription(description string) string {
	for _, sep := range []string{" by ", " por "} {
		if idx := strings.LastIndex(description, sep); idx >= 0 {
			if name := strings.TrimSpace(description[idx+len(sep):]); name != "" {
				return name
			}
		}
	}
	return unknownValue
}

// excerpt truncates text to limit runes with a trailing ellipsis.
func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
