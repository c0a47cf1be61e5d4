package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlbumLifecycle(t *testing.T) {
	h := newHarness(t)

	id := h.createdID("album", "create", "--name", "Blue", "--tag", "jazz, live", "--tag", "1959")

	var got models.Album
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("album", "get", id)), &got))
	assert.Equal(t, "Blue", got.Name)
	assert.Equal(t, []string{"jazz", "live", "1959"}, got.Tags)
	assert.Equal(t, "alice", got.UserID)
	assert.EqualValues(t, 0, got.Version)
	assert.Nil(t, got.Description)

	h.mustRun("album", "update", id, "--description", "remaster")
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("album", "get", id)), &got))
	assert.Equal(t, "Blue", got.Name, "unset flags leave fields alone")
	require.NotNil(t, got.Description)
	assert.Equal(t, "remaster", *got.Description)
	assert.EqualValues(t, 1, got.Version)

	var list []models.Album
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("album", "list", "--tag", "live")), &list))
	require.Len(t, list, 1)

	h.mustRun("album", "delete", id)
	_, errOut, code := h.run("", "album", "get", id)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, errOut, "not found")

	require.NoError(t, json.Unmarshal([]byte(h.mustRun("album", "list")), &list))
	assert.Empty(t, list)
}

func TestAlbumCreate_RequiresName(t *testing.T) {
	h := newHarness(t)
	_, errOut, code := h.run("", "album", "create")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, errOut, "name")

	_, errOut, code = h.run("", "album", "create", "--name", "")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, errOut, "invalid albums row")

	var view outboxView
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("outbox")), &view))
	assert.Zero(t, view.Total, "a rejected row is never queued")
}

func TestMutation_WithoutOwner(t *testing.T) {
	h := newHarness(t)
	_, errOut, code := h.runRaw("", "--db", h.db, "album", "create", "--name", "x")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, errOut, "--owner")
}

func TestSongAndMessage(t *testing.T) {
	h := newHarness(t)

	// The album is never created locally; songs may reference it anyway.
	songID := h.createdID("song", "create", "--album", "remote-album", "--name", "So What")

	var before models.Song
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("song", "get", songID)), &before))

	out, errOut, code := h.run("first line\nsecond line\n\nignored\n", "message", "create", "--song", songID)
	require.Equal(t, ExitSuccess, code, errOut)
	var created struct{ ID string }
	require.NoError(t, json.Unmarshal([]byte(out), &created))

	var msgs []models.Message
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("message", "list", "--song", songID)), &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, created.ID, msgs[0].ID)
	assert.Equal(t, "first line\nsecond line", msgs[0].Content)
	assert.Equal(t, models.MessageText, msgs[0].Type)

	var after models.Song
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("song", "get", songID)), &after))
	assert.Equal(t, before.Version+1, after.Version, "posting a message touches the song")

	h.mustRun("song", "update", songID, "--album", "other")
	var songs []models.Song
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("song", "list", "--album", "other")), &songs))
	require.Len(t, songs, 1)

	h.mustRun("message", "delete", created.ID)
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("message", "list")), &msgs))
	assert.Empty(t, msgs)
}

func TestMessageCreate_Audio(t *testing.T) {
	h := newHarness(t)
	file := filepath.Join(t.TempDir(), "note.m4a")
	require.NoError(t, os.WriteFile(file, []byte("audio"), 0o600))

	h.createdID("message", "create", "--song", "s1", "--media", file)

	var msgs []models.Message
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("message", "list")), &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, models.MessageAudio, msgs[0].Type)
	require.NotNil(t, msgs[0].MediaURI)
	assert.Equal(t, file, *msgs[0].MediaURI)
}

func TestTableOutput(t *testing.T) {
	h := newHarness(t)
	h.createdID("album", "create", "--name", "Kind of Blue", "--tag", "jazz")

	out, errOut, code := h.runRaw("", "--db", h.db, "--owner", "alice", "--format", "table", "album", "list")
	require.Equal(t, ExitSuccess, code, errOut)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Kind of Blue")
	assert.Contains(t, out, "jazz")
}

func TestOutbox(t *testing.T) {
	h := newHarness(t)
	h.createdID("album", "create", "--name", "a")
	h.createdID("album", "create", "--name", "b")
	h.createdID("song", "create", "--album", "x", "--name", "s")

	var view outboxView
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("outbox")), &view))
	assert.Equal(t, map[string]int64{wire.Albums: 2, wire.Songs: 1, wire.Messages: 0}, view.Pending)
	assert.EqualValues(t, 3, view.Total)
	assert.Empty(t, view.LastSync)
}
