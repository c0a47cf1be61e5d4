package cli

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/timex"
	"github.com/dmitrijs2005/offsync/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSync_FullPass(t *testing.T) {
	h := newHarness(t)
	id := h.createdID("album", "create", "--name", "Blue")

	var view syncView
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("sync")), &view))
	assert.True(t, view.Ran)
	require.Len(t, view.Pushes, len(wire.Collections))
	assert.Equal(t, wire.Albums, view.Pushes[0].Collection)
	assert.Equal(t, 1, view.Pushes[0].Rows)

	row, ok := h.remote.Get(wire.Albums, id)
	require.True(t, ok)
	assert.Equal(t, "Blue", row["name"])

	var ob outboxView
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("outbox")), &ob))
	assert.Zero(t, ob.Total)
	assert.NotEmpty(t, ob.LastSync)
}

func TestSync_OfflineSkips(t *testing.T) {
	h := newHarness(t)
	h.remote.pingErr = errDown
	h.createdID("album", "create", "--name", "Blue")

	var view syncView
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("sync")), &view))
	assert.False(t, view.Ran)
	assert.Zero(t, h.remote.Len(wire.Albums))

	var ob outboxView
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("outbox")), &ob))
	assert.EqualValues(t, 1, ob.Total, "outbox survives an offline sync")
}

func TestSync_PullOnly(t *testing.T) {
	h := newHarness(t)
	now := time.Now().UTC()
	require.NoError(t, h.remote.Memory.Upsert(context.Background(), wire.Albums, []wire.Row{{
		"id":         "remote-1",
		"user_id":    "alice",
		"name":       "From elsewhere",
		"tags":       []any{},
		"created_at": timex.FormatTime(now),
		"updated_at": timex.FormatTime(now),
		"device_id":  "other",
		"version":    float64(0),
	}}))

	var view syncView
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("sync", "--pull", "--collection", wire.Albums)), &view))
	assert.Empty(t, view.Pushes)
	require.Len(t, view.Pulls, 1)
	assert.Equal(t, 1, view.Pulls[0].Applied)

	var got models.Album
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("album", "get", "remote-1")), &got))
	assert.Equal(t, "From elsewhere", got.Name)
}

func TestSync_PushReportsUnreachable(t *testing.T) {
	h := newHarness(t)
	h.remote.upsertErr = common.ErrUnreachable
	h.createdID("album", "create", "--name", "Blue")

	_, errOut, code := h.run("", "sync", "--push", "--collection", wire.Albums)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, errOut, "outbox")
}

func TestSync_UnknownCollection(t *testing.T) {
	h := newHarness(t)
	_, _, code := h.run("", "sync", "--collection", "playlists")
	assert.Equal(t, ExitCommandError, code)
}

func TestSync_RequiresOwner(t *testing.T) {
	h := newHarness(t)
	_, errOut, code := h.runRaw("", "--db", h.db, "--format", "json", "sync")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, errOut, common.ErrUnauthenticated.Error())
}
