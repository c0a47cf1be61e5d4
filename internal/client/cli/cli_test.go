package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/offsync/internal/client/config"
	"github.com/dmitrijs2005/offsync/internal/remote"
	"github.com/dmitrijs2005/offsync/internal/wire"
	"github.com/stretchr/testify/require"
)

// fakeRemote is remote.Memory with a controllable Ping and upsert failure.
type fakeRemote struct {
	*remote.Memory

	mu        sync.Mutex
	pingErr   error
	upsertErr error
	closed    int
	addr      string
	token     string
	deviceID  string
}

func (f *fakeRemote) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeRemote) Upsert(ctx context.Context, collection string, rows []wire.Row) error {
	f.mu.Lock()
	err := f.upsertErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Memory.Upsert(ctx, collection, rows)
}

func (f *fakeRemote) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

// harness runs the CLI against a temporary database and a fake remote.
type harness struct {
	t      *testing.T
	db     string
	remote *fakeRemote
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(config.EnvFile, filepath.Join(t.TempDir(), "none.env"))

	h := &harness{
		t:      t,
		db:     filepath.Join(t.TempDir(), "offsync.db"),
		remote: &fakeRemote{Memory: remote.NewMemory()},
	}

	prev := dialRemote
	dialRemote = func(addr, token, deviceID string) (remoteClient, error) {
		h.remote.addr, h.remote.token, h.remote.deviceID = addr, token, deviceID
		return h.remote, nil
	}
	t.Cleanup(func() { dialRemote = prev })
	return h
}

// run executes the CLI as owner alice with JSON output.
func (h *harness) run(stdin string, args ...string) (stdout, stderr string, code int) {
	h.t.Helper()
	full := append([]string{"--db", h.db, "--owner", "alice", "--format", "json"}, args...)
	return h.runRaw(stdin, full...)
}

func (h *harness) runRaw(stdin string, args ...string) (string, string, int) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	code := Execute(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), errOut.String(), code
}

// mustRun fails the test unless the command succeeds.
func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, errOut, code := h.run("", args...)
	require.Equal(h.t, ExitSuccess, code, "stderr: %s", errOut)
	return out
}

func (h *harness) createdID(args ...string) string {
	h.t.Helper()
	var res struct {
		ID string `json:"id"`
	}
	require.NoError(h.t, json.Unmarshal([]byte(h.mustRun(args...)), &res))
	require.NotEmpty(h.t, res.ID)
	return res.ID
}

var errDown = errors.New("connection refused")
