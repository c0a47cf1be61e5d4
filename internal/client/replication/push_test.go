package replication

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/reachability"
	"github.com/dmitrijs2005/offsync/internal/client/services"
	"github.com/dmitrijs2005/offsync/internal/client/store"
	"github.com/dmitrijs2005/offsync/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToWire_LenientTimestampsAndOwner(t *testing.T) {
	c, err := lookup(wire.Songs)
	require.NoError(t, err)
	now := time.UnixMilli(5_000)

	row, err := c.toWire(map[string]any{
		"id":        "s1",
		"userId":    "",
		"albumId":   "a1",
		"name":      "n",
		"createdAt": "2024-06-10T06:13:20.123Z",
		"updatedAt": "garbage",
		"deletedAt": "also garbage",
		"version":   float64(3),
		"unknown":   true,
	}, "u1", now)
	require.NoError(t, err)

	assert.Equal(t, wire.Row{
		"id":         "s1",
		"user_id":    "u1",
		"album_id":   "a1",
		"name":       "n",
		"version":    float64(3),
		"created_at": "2024-06-10T06:13:20.123Z",
		"updated_at": "1970-01-01T00:00:05.000Z",
		"deleted_at": nil,
	}, row)

	_, err = c.toWire(map[string]any{"name": "no id"}, "u1", now)
	require.Error(t, err)
}

func TestPush_SkipsMalformedEntriesWithoutBlockingBatch(t *testing.T) {
	rs := newRemote()
	ctx := context.Background()
	d := newDevice(t, "dev-A", "u1", rs, reachability.Static(true))

	require.NoError(t, d.store.Update(ctx, func(ctx context.Context, r *store.Repos) error {
		return r.Outbox.Append(ctx, &models.OutboxEntry{
			OpID: "broken", Collection: wire.Albums, Kind: models.OpInsert,
			Payload: []byte(`{"schema":1,"kind":"albums","row":`), CreatedAt: 1,
		})
	}))
	id, err := d.albums.Create(ctx, services.AlbumFields{Name: "fine"})
	require.NoError(t, err)

	res, err := d.engine.Push(ctx, "u1", wire.Albums)
	require.NoError(t, err)
	assert.Equal(t, PushResult{Collection: wire.Albums, Entries: 1, Rows: 1, Skipped: 1}, res)

	_, ok := rs.Get(wire.Albums, id)
	assert.True(t, ok)

	var left []*models.OutboxEntry
	require.NoError(t, d.store.View(ctx, func(ctx context.Context, r *store.Repos) (err error) {
		left, err = r.Outbox.ListByCollection(ctx, wire.Albums)
		return err
	}))
	require.Len(t, left, 1)
	assert.Equal(t, "broken", left[0].OpID, "undecodable entries stay for inspection")
}

func TestPush_RepairsSnapshotWithoutOwnerOrTimestamps(t *testing.T) {
	rs := newRemote()
	ctx := context.Background()
	d := newDevice(t, "dev-A", "u1", rs, reachability.Static(true))
	d.clock.Set(9_000)

	legacy := &models.Album{Meta: models.Meta{ID: "legacy"}, Name: "old"}
	entry, err := models.NewOutboxEntry(legacy, models.OpInsert, 1)
	require.NoError(t, err)
	require.NoError(t, d.store.Update(ctx, func(ctx context.Context, r *store.Repos) error {
		return r.Outbox.Append(ctx, entry)
	}))

	_, err = d.engine.Push(ctx, "u1", wire.Albums)
	require.NoError(t, err)

	row, ok := rs.Get(wire.Albums, "legacy")
	require.True(t, ok)
	assert.Equal(t, "u1", row.Owner())
	assert.Equal(t, "1970-01-01T00:00:09.000Z", row["updated_at"])
	assert.Equal(t, "1970-01-01T00:00:09.000Z", row["created_at"])
	assert.Nil(t, row["deleted_at"])
}

func TestPush_RemoteFailureKeepsWholeBatch(t *testing.T) {
	rs := newRemote()
	ctx := context.Background()
	d := newDevice(t, "dev-A", "u1", rs, reachability.Static(true))

	for i := 0; i < 3; i++ {
		_, err := d.albums.Create(ctx, services.AlbumFields{Name: "x"})
		require.NoError(t, err)
	}
	rs.failUpsert(wire.Albums, context.DeadlineExceeded)

	_, err := d.engine.Push(ctx, "u1", wire.Albums)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorContains(t, err, "push albums")
	assert.Equal(t, int64(3), d.outboxLen(t))
	assert.Zero(t, rs.Len(wire.Albums))
}

type fakeUploader struct {
	calls []string
	err   error
}

func (f *fakeUploader) Upload(ctx context.Context, owner, localPath string) (string, error) {
	f.calls = append(f.calls, owner+":"+localPath)
	if f.err != nil {
		return "", f.err
	}
	return "s3://media/" + owner + "/clip.m4a", nil
}

func TestPush_UploadsLocalAudioMedia(t *testing.T) {
	rs := newRemote()
	ctx := context.Background()
	up := &fakeUploader{}
	d := newDevice(t, "dev-A", "u1", rs, reachability.Static(true), WithMediaUploader(up))

	path := "/data/rec/clip.m4a"
	already := "s3://media/u1/old.m4a"
	audioID, err := d.messages.Create(ctx, services.MessageFields{SongID: "s", Type: models.MessageAudio, MediaURI: &path})
	require.NoError(t, err)
	_, err = d.messages.Create(ctx, services.MessageFields{SongID: "s", Type: models.MessageAudio, MediaURI: &already})
	require.NoError(t, err)
	_, err = d.messages.Create(ctx, services.MessageFields{SongID: "s", Content: "text"})
	require.NoError(t, err)

	_, err = d.engine.Push(ctx, "u1", wire.Messages)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1:/data/rec/clip.m4a"}, up.calls)

	row, ok := rs.Get(wire.Messages, audioID)
	require.True(t, ok)
	assert.Equal(t, "s3://media/u1/clip.m4a", row["media_uri"])
}

func TestPush_UploadFailureFailsPush(t *testing.T) {
	rs := newRemote()
	ctx := context.Background()
	up := &fakeUploader{err: errors.New("bucket missing")}
	d := newDevice(t, "dev-A", "u1", rs, reachability.Static(true), WithMediaUploader(up))

	path := "clip.m4a"
	_, err := d.messages.Create(ctx, services.MessageFields{SongID: "s", Type: models.MessageAudio, MediaURI: &path})
	require.NoError(t, err)

	_, err = d.engine.Push(ctx, "u1", wire.Messages)
	require.ErrorContains(t, err, "bucket missing")
	assert.Zero(t, rs.upsertCalls(wire.Messages))
	assert.Equal(t, int64(1), d.outboxLen(t))
}

func TestIsLocalPath(t *testing.T) {
	assert.True(t, isLocalPath("/tmp/a.m4a"))
	assert.True(t, isLocalPath("a.m4a"))
	assert.False(t, isLocalPath(""))
	assert.False(t, isLocalPath("s3://b/k"))
	assert.False(t, isLocalPath("https://cdn/x"))
}
