package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jperezcano/sessiondx-go/internal/core/domain"
	"github.com/jperezcano/sessiondx-go/internal/gateway"
	"github.com/jperezcano/sessiondx-go/internal/telemetry/logger"
)

// Probe stage outcomes.
const (
	ProbePass = "PASS"
	ProbeFail = "FAIL"
	ProbeSkip = "SKIP"
)

// Stage names, in execution order.
const (
	StageGetSession       = "get session"
	StageCreateInvocation = "create invocation"
	StagePutStep          = "put step"
	StageListInvocations  = "list invocations"
	StageListSteps        = "list steps"
	StageGetStep          = "get step"
)

// ProbeStage is the outcome of one probe stage.
type ProbeStage struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
	Err    error  `json:"-"`
}

// ProbeReport collects the outcomes of a full probe run.
type ProbeReport struct {
	SessionID string       `json:"session_id,omitempty"`
	Stages    []ProbeStage `json:"stages"`
}

// OK reports whether every stage passed.
func (r *ProbeReport) OK() bool {
	for _, st := range r.Stages {
		if st.Status != ProbePass {
			return false
		}
	}
	return true
}

// ProbeService exercises every gateway operation against an existing
// session: get-session, create-invocation, put-step, list-invocations,
// list-steps, get-step. Stages that depend on the output of a failed stage
// are skipped, not failed. The probe invocation and step it writes are
// diagnostic noise with no bearing on the diagnosis workflow.
//
// @req RQ-0105
// @design DS-0103
type ProbeService struct {
	gw  gateway.Gateway
	log logger.Logger

	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewProbeService creates a new ProbeService.
func NewProbeService(gw gateway.Gateway, log logger.Logger) *ProbeService {
	if log == nil {
		log = logger.Default()
	}
	return &ProbeService{
		gw:  gw,
		log: log,
		now: time.Now,
	}
}

// Run executes all probe stages against sessionID and returns the report.
// Run never returns an error; failures are part of the report.
func (s *ProbeService) Run(ctx context.Context, sessionID string) *ProbeReport {
	report := &ProbeReport{SessionID: sessionID}

	// Stage 1: the session must exist; everything else depends on it.
	session, err := s.gw.GetSession(ctx, sessionID)
	if err != nil {
		report.add(StageGetSession, ProbeFail, "", err)
		report.add(StageCreateInvocation, ProbeSkip, "no session", nil)
		report.add(StagePutStep, ProbeSkip, "no session", nil)
		report.add(StageListInvocations, ProbeSkip, "no session", nil)
		report.add(StageListSteps, ProbeSkip, "no session", nil)
		report.add(StageGetStep, ProbeSkip, "no session", nil)
		return report
	}
	report.add(StageGetSession, ProbePass, fmt.Sprintf("status %s", session.Status()), nil)

	// Stage 2: create a probe invocation.
	invID, err := s.gw.CreateInvocation(ctx, sessionID, "gateway probe")
	switch {
	case err != nil:
		report.add(StageCreateInvocation, ProbeFail, "", err)
		invID = ""
	case invID == "":
		report.add(StageCreateInvocation, ProbeFail, "no invocation id returned", nil)
	default:
		report.add(StageCreateInvocation, ProbePass, invID, nil)
	}

	// Stage 3: write one probe step into that invocation.
	var stepID string
	if invID == "" {
		report.add(StagePutStep, ProbeSkip, "no invocation id", nil)
	} else {
		stepID, err = s.putProbeStep(ctx, sessionID, invID)
		if err != nil {
			report.add(StagePutStep, ProbeFail, "", err)
			stepID = ""
		} else {
			report.add(StagePutStep, ProbePass, stepID, nil)
		}
	}

	// Stage 4: the invocation listing needs only the session.
	invocations, err := s.gw.ListInvocations(ctx, sessionID)
	if err != nil {
		report.add(StageListInvocations, ProbeFail, "", err)
	} else {
		report.add(StageListInvocations, ProbePass,
			fmt.Sprintf("%d invocation(s)", len(invocations)), nil)
	}

	// Stage 5: step listing needs a valid invocation id.
	if invID == "" {
		report.add(StageListSteps, ProbeSkip, "no invocation id", nil)
	} else {
		steps, err := s.gw.ListInvocationSteps(ctx, sessionID, invID)
		if err != nil {
			report.add(StageListSteps, ProbeFail, "", err)
		} else {
			report.add(StageListSteps, ProbePass,
				fmt.Sprintf("%d step(s)", len(steps)), nil)
		}
	}

	// Stage 6: read the probe step back.
	if stepID == "" {
		report.add(StageGetStep, ProbeSkip, "no step written", nil)
	} else {
		step, err := s.gw.GetInvocationStep(ctx, sessionID, invID, stepID)
		switch {
		case err != nil:
			report.add(StageGetStep, ProbeFail, "", err)
		case len(step.Payload.ContentBlocks) == 0:
			report.add(StageGetStep, ProbeFail, "step came back without content", nil)
		default:
			report.add(StageGetStep, ProbePass, "step intact", nil)
		}
	}

	s.log.Info("probe finished", "session_id", sessionID, "ok", report.OK())
	return report
}

func (s *ProbeService) putProbeStep(ctx context.Context, sessionID, invID string) (string, error) {
	stepID, err := domain.GenerateStepID()
	if err != nil {
		return "", err
	}
	stepTime := s.now()
	payload := domain.StepPayload{ContentBlocks: []domain.ContentBlock{
		domain.NewTextBlock("gateway probe check at " + stepTime.UTC().Format(time.RFC3339)),
	}}
	if err := s.gw.PutInvocationStep(ctx, sessionID, invID, stepID, stepTime, payload); err != nil {
		return "", err
	}
	return stepID, nil
}

func (r *ProbeReport) add(name, status, detail string, err error) {
	if err != nil && detail == "" {
		detail = err.Error()
	}
	r.Stages = append(r.Stages, ProbeStage{Name: name, Status: status, Detail: detail, Err: err})
}
