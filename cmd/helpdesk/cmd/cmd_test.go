package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/civic881027/ai-ticket-demo/guard"
	"github.com/civic881027/ai-ticket-demo/internal/config"
	"github.com/civic881027/ai-ticket-demo/internal/fakeapi"
	"github.com/civic881027/ai-ticket-demo/tickets"
)

type cliFixture struct {
	api *fakeapi.Server
	dir string
}

func newCLIFixture(t *testing.T, backend string) *cliFixture {
	t.Helper()
	api := fakeapi.New()
	_, err := api.AddUser("alice", "alice-pw", false)
	require.NoError(t, err)
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HELPDESK_BASE_URL", srv.URL+fakeapi.APIPrefix)
	t.Setenv("HELPDESK_SESSION_BACKEND", backend)
	t.Setenv("HELPDESK_SESSION_PATH", filepath.Join(dir, "state", "session"))
	return &cliFixture{api: api, dir: dir}
}

func (f *cliFixture) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestCLI_TicketsRequireLogin(t *testing.T) {
	f := newCLIFixture(t, config.SessionBackendFile)

	_, _, err := f.run(t, "", "tickets", "list")
	require.ErrorIs(t, err, guard.ErrLoginRequired)
	require.Zero(t, f.api.Hits(http.MethodGet, "/tickets/"))
}

func TestCLI_SessionLifecycle(t *testing.T) {
	for _, backend := range []string{config.SessionBackendFile, config.SessionBackendBolt} {
		t.Run(backend, func(t *testing.T) {
			f := newCLIFixture(t, backend)

			out, _, err := f.run(t, "", "login", "-u", "alice", "-p", "alice-pw")
			require.NoError(t, err)
			require.Contains(t, out, "Logged in as alice")

			// Each run is a new process as far as the session is concerned.
			out, _, err = f.run(t, "", "tickets", "create", "--title", "VPN broken", "--description", "error on connect", "-o", "json")
			require.NoError(t, err)
			var created tickets.Ticket
			require.NoError(t, json.Unmarshal([]byte(out), &created))
			require.Equal(t, "Technical Issue", created.Category)

			out, _, err = f.run(t, "", "tickets", "list")
			require.NoError(t, err)
			require.Contains(t, out, "VPN broken")
			require.Contains(t, out, "PRIORITY")

			out, _, err = f.run(t, "", "tickets", "reply", "1", "restarted", "the", "router")
			require.NoError(t, err)
			require.Contains(t, out, "restarted the router")

			out, _, err = f.run(t, "", "tickets", "show", "1", "-o", "yaml")
			require.NoError(t, err)
			require.Contains(t, out, "response_text: restarted the router")

			out, _, err = f.run(t, "", "whoami", "-o", "json")
			require.NoError(t, err)
			require.Contains(t, out, `"user_id": "1"`)

			_, _, err = f.run(t, "", "logout")
			require.NoError(t, err)
			_, _, err = f.run(t, "", "tickets", "list")
			require.ErrorIs(t, err, guard.ErrLoginRequired)
			require.Equal(t, int64(1), f.api.LoginCalls())
		})
	}
}

func TestCLI_LoginPromptsForCredentials(t *testing.T) {
	f := newCLIFixture(t, config.SessionBackendFile)

	out, errOut, err := f.run(t, "alice\nalice-pw\n", "login")
	require.NoError(t, err)
	require.Contains(t, out, "Logged in as alice")
	require.Contains(t, errOut, "Username:")
	require.Contains(t, errOut, "Password:")
}

func TestCLI_LoginRejected(t *testing.T) {
	f := newCLIFixture(t, config.SessionBackendFile)

	_, _, err := f.run(t, "", "login", "-u", "alice", "-p", "nope")
	require.Error(t, err)
	require.Contains(t, err.Error(), "No active account found")

	_, _, err = f.run(t, "", "whoami")
	require.ErrorIs(t, err, guard.ErrLoginRequired)
}

func TestCLI_RejectsUnknownOutputFormat(t *testing.T) {
	newCLIFixture(t, config.SessionBackendMemory)

	var out, errOut bytes.Buffer
	err := run([]string{"whoami", "-o", "xml"}, strings.NewReader(""), &out, &errOut)
	require.ErrorContains(t, err, "unknown output format")
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
