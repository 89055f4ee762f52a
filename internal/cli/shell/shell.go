// Package shell provides the interactive mode of the sessiondx CLI.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jperezcano/sessiondx-go/internal/cli/output"
	"github.com/jperezcano/sessiondx-go/internal/core/domain"
	"github.com/jperezcano/sessiondx-go/internal/core/service"
	"github.com/jperezcano/sessiondx-go/internal/telemetry/logger"
)

// Options configures the interactive shell.
type Options struct {
	Input  io.Reader
	Output io.Writer

	Lifecycle     *service.LifecycleService
	Recorder      *service.RecorderService
	Reconstructor *service.ReconstructorService
	Probe         *service.ProbeService

	// ConfigPath, when set, is watched for live log-level changes.
	ConfigPath string
	// History, when nil, uses the default ~/.sessiondx/history store.
	History *History
}

// Shell is the interactive menu loop.
type Shell struct {
	in  *bufio.Reader
	out io.Writer

	lifecycle     *service.LifecycleService
	recorder      *service.RecorderService
	reconstructor *service.ReconstructorService
	probe         *service.ProbeService

	history    *History
	configPath string

	// activeSession is the session the responder is currently working on.
	activeSession string
}

// New creates a shell from options.
func New(opts Options) *Shell {
	history := opts.History
	if history == nil {
		history = NewHistory()
	}
	return &Shell{
		in:            bufio.NewReader(opts.Input),
		out:           opts.Output,
		lifecycle:     opts.Lifecycle,
		recorder:      opts.Recorder,
		reconstructor: opts.Reconstructor,
		probe:         opts.Probe,
		history:       history,
		configPath:    opts.ConfigPath,
	}
}

// menu is the fixed action list, in display order.
var menu = []struct {
	label  string
	action func(*Shell, context.Context) error
}{
	{"Open diagnosis session", (*Shell).actionOpen},
	{"Record diagnostic step", (*Shell).actionRecord},
	{"Reconstruct diagnostic context", (*Shell).actionContext},
	{"Close session", (*Shell).actionClose},
	{"Delete session", (*Shell).actionDelete},
	{"Switch active session", (*Shell).actionSwitch},
	{"Run gateway probe", (*Shell).actionProbe},
	{"Exit", nil},
}

// Run starts the menu loop. It returns when the responder chooses Exit or
// the input is exhausted.
func (s *Shell) Run(ctx context.Context) error {
	if err := s.history.Load(); err != nil {
		logger.Warn("could not load shell history", "error", err)
	}
	defer func() {
		if err := s.history.Save(); err != nil {
			logger.Warn("could not save shell history", "error", err)
		}
	}()

	if s.configPath != "" {
		stop, err := watchLogLevel(s.configPath)
		if err != nil {
			logger.Warn("config watch disabled", "error", err)
		} else {
			defer stop()
		}
	}

	fmt.Fprintln(s.out, "sessiondx interactive shell")
	for {
		s.printMenu()

		choice, err := s.readLine("Select an action: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return err
		}
		if choice == "" {
			continue
		}
		s.history.Add(choice)

		idx := parseChoice(choice)
		if idx < 1 || idx > len(menu) {
			fmt.Fprintf(s.out, "Invalid choice %q, pick 1-%d.\n", choice, len(menu))
			continue
		}
		entry := menu[idx-1]
		if entry.action == nil {
			ok, err := s.confirm("Exit the shell?")
			if err != nil {
				if errors.Is(err, io.EOF) {
					fmt.Fprintln(s.out)
					return nil
				}
				return err
			}
			if !ok {
				continue
			}
			fmt.Fprintln(s.out, "Bye.")
			return nil
		}

		if err := entry.action(s, ctx); err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	}
}

func (s *Shell) printMenu() {
	fmt.Fprintln(s.out)
	if s.activeSession != "" {
		fmt.Fprintf(s.out, "Active session: %s\n", s.activeSession)
	}
	for i, entry := range menu {
		fmt.Fprintf(s.out, "  %d. %s\n", i+1, entry.label)
	}
}

func (s *Shell) actionOpen(ctx context.Context) error {
	incident, err := s.promptRequired("Incident ID")
	if err != nil {
		return err
	}
	system, err := s.promptRequired("Affected system")
	if err != nil {
		return err
	}
	severity, err := s.promptDefault("Severity (high/medium/low)", domain.SeverityHigh)
	if err != nil {
		return err
	}

	resp, err := s.lifecycle.Open(ctx, &service.OpenSessionRequest{
		IncidentID:     incident,
		SystemAffected: system,
		Severity:       severity,
	})
	if err != nil {
		return err
	}

	s.activeSession = resp.SessionID
	fmt.Fprintf(s.out, "Session opened: %s\n", resp.SessionID)
	return nil
}

func (s *Shell) actionRecord(ctx context.Context) error {
	sessionID, err := s.promptSession()
	if err != nil {
		return err
	}
	engineer, err := s.promptRequired("Engineer")
	if err != nil {
		return err
	}
	component, err := s.promptRequired("Component")
	if err != nil {
		return err
	}
	action, err := s.promptRequired("Action taken")
	if err != nil {
		return err
	}
	result, err := s.promptDefault("Result", "")
	if err != nil {
		return err
	}
	next, err := s.promptDefault("Next steps", "")
	if err != nil {
		return err
	}
	images, err := s.promptDefault("Screenshots (comma-separated paths)", "")
	if err != nil {
		return err
	}

	resp, err := s.recorder.Record(ctx, &service.RecordStepRequest{
		SessionID:  sessionID,
		EngineerID: engineer,
		Component:  component,
		Action:     action,
		Result:     result,
		NextSteps:  next,
		ImagePaths: splitPaths(images),
	})
	if err != nil {
		return err
	}

	s.activeSession = sessionID
	fmt.Fprintf(s.out, "Step recorded: %s\n", resp.StepID)
	for _, path := range resp.SkippedImages {
		fmt.Fprintf(s.out, "Warning: attachment skipped: %s\n", path)
	}
	return nil
}

func (s *Shell) actionContext(ctx context.Context) error {
	sessionID, err := s.promptSession()
	if err != nil {
		return err
	}
	dc, err := s.reconstructor.Reconstruct(ctx, sessionID)
	if err != nil {
		return err
	}
	s.activeSession = sessionID
	return output.RenderContext(s.out, dc)
}

func (s *Shell) actionClose(ctx context.Context) error {
	sessionID, err := s.promptSession()
	if err != nil {
		return err
	}
	summary, err := s.promptDefault("Resolution summary", "")
	if err != nil {
		return err
	}
	resolutionType, err := s.promptDefault("Resolution type", "resolved")
	if err != nil {
		return err
	}
	if err := s.lifecycle.Close(ctx, &service.CloseSessionRequest{
		SessionID:         sessionID,
		ResolutionSummary: summary,
		ResolutionType:    resolutionType,
	}); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Session %s closed.\n", sessionID)
	return nil
}

func (s *Shell) actionDelete(ctx context.Context) error {
	sessionID, err := s.promptSession()
	if err != nil {
		return err
	}
	reason, err := s.promptDefault("Reason", "")
	if err != nil {
		return err
	}
	approver, err := s.promptDefault("Approver", "")
	if err != nil {
		return err
	}
	ok, err := s.confirm(fmt.Sprintf("Permanently delete session '%s'?", sessionID))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}
	if err := s.lifecycle.Delete(ctx, &service.DeleteSessionRequest{
		SessionID: sessionID,
		Reason:    reason,
		Approver:  approver,
	}); err != nil {
		return err
	}
	if s.activeSession == sessionID {
		s.activeSession = ""
	}
	fmt.Fprintf(s.out, "Session %s deleted.\n", sessionID)
	return nil
}

// actionSwitch changes the active session after validating that the target
// exists, and shows what it switched to.
func (s *Shell) actionSwitch(ctx context.Context) error {
	sessionID, err := s.promptRequired("Session ID")
	if err != nil {
		return err
	}
	session, err := s.lifecycle.Describe(ctx, sessionID)
	if err != nil {
		return err
	}
	s.activeSession = sessionID
	return output.RenderSession(s.out, session)
}

func (s *Shell) actionProbe(ctx context.Context) error {
	sessionID, err := s.promptSession()
	if err != nil {
		return err
	}
	report := s.probe.Run(ctx, sessionID)
	return output.RenderProbeReport(s.out, report)
}

// promptSession asks for a session ID, offering the active session as the
// default.
func (s *Shell) promptSession() (string, error) {
	if s.activeSession != "" {
		return s.promptDefault("Session ID", s.activeSession)
	}
	return s.promptRequired("Session ID")
}

// parseChoice parses a menu selection; 0 means invalid.
func parseChoice(s string) int {
	var n int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &n); err != nil {
		return 0
	}
	return n
}

// splitPaths splits a comma-separated path list, dropping empties.
func splitPaths(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
