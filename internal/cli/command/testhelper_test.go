package command

import (
	"io"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/jperezcano/sessiondx-go/internal/cli/config"
	"github.com/jperezcano/sessiondx-go/internal/gateway/memory"
)

var sessionIDPattern = regexp.MustCompile(`sxse-[0-9a-z]{26}`)

// newTestApp builds the app with an injected Env over an in-process
// gateway, so commands run end-to-end without a server.
func newTestApp(t *testing.T) (*cli.App, *Env) {
	t.Helper()
	cfg := config.Default()
	cfg.Recorder.RetryDelay = time.Millisecond

	env := NewEnv(cfg, memory.New(), nil)
	app := App()
	if app.Metadata == nil {
		app.Metadata = map[string]any{}
	}
	app.Metadata["env"] = env
	return app, env
}

// runCommand runs the app with args and captures stdout.
func runCommand(t *testing.T, app *cli.App, args ...string) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	runErr := app.Run(append([]string{"sessiondx"}, args...))

	w.Close()
	os.Stdout = old
	out, _ := io.ReadAll(r)
	return string(out), runErr
}

// openSession opens a session through the CLI and returns its ID.
func openSession(t *testing.T, app *cli.App) string {
	t.Helper()
	out, err := runCommand(t, app, "session", "open",
		"--incident", "INC-1001", "--system", "payment-svc", "--severity", "high")
	if err != nil {
		t.Fatalf("session open failed: %v", err)
	}
	id := sessionIDPattern.FindString(out)
	if id == "" {
		t.Fatalf("no session id in output:\n%s", out)
	}
	return id
}
