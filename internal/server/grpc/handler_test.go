package grpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/logging"
	"github.com/dmitrijs2005/offsync/internal/remote"
	"github.com/dmitrijs2005/offsync/internal/rpc"
	"github.com/dmitrijs2005/offsync/internal/wire"
)

func ownerCtx(owner string) context.Context {
	return context.WithValue(context.Background(), UserIDKey, owner)
}

func messageRow(id, owner, updated string) wire.Row {
	return wire.Row{
		"id": id, "user_id": owner, "device_id": "d1", "version": 1,
		"song_id": "s1", "content": "hi", "type": "text", "media_uri": nil,
		"created_at": updated, "updated_at": updated, "deleted_at": nil,
	}
}

type stubStore struct {
	err error
}

func (s stubStore) Upsert(context.Context, string, []wire.Row) error { return s.err }
func (s stubStore) Select(context.Context, string, remote.Filter) ([]wire.Row, error) {
	return nil, s.err
}

func TestHandler_UpsertThenSelectScopedToOwner(t *testing.T) {
	mem := remote.NewMemory()
	s := NewGRPCServer("", logging.Nop(), mem, "k")

	req, err := rpc.EncodeUpsert(wire.Messages, []wire.Row{
		messageRow("m1", "u1", "2024-05-01T10:00:00.000Z"),
		messageRow("m2", "u1", "2024-05-01T12:00:00.000Z"),
	})
	require.NoError(t, err)

	_, err = s.Upsert(ownerCtx("u1"), req)
	require.NoError(t, err)
	assert.Equal(t, 2, mem.Len(wire.Messages))

	resp, err := s.Select(ownerCtx("u1"), rpc.EncodeSelect(wire.Messages, time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	rows, err := rpc.DecodeRows(resp)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "m2", rows[0].ID())

	resp, err = s.Select(ownerCtx("u2"), rpc.EncodeSelect(wire.Messages, time.Time{}))
	require.NoError(t, err)
	rows, err = rpc.DecodeRows(resp)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestHandler_UpsertRejectsForeignRows(t *testing.T) {
	mem := remote.NewMemory()
	s := NewGRPCServer("", logging.Nop(), mem, "k")

	req, err := rpc.EncodeUpsert(wire.Messages, []wire.Row{
		messageRow("m1", "u1", "2024-05-01T10:00:00.000Z"),
		messageRow("m2", "intruder", "2024-05-01T10:00:00.000Z"),
	})
	require.NoError(t, err)

	_, err = s.Upsert(ownerCtx("u1"), req)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, 0, mem.Len(wire.Messages))
}

func TestHandler_RequiresOwner(t *testing.T) {
	s := NewGRPCServer("", logging.Nop(), remote.NewMemory(), "k")

	_, err := s.Upsert(context.Background(), rpc.EncodeSelect(wire.Albums, time.Time{}))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = s.Select(context.Background(), rpc.EncodeSelect(wire.Albums, time.Time{}))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestHandler_MalformedRequests(t *testing.T) {
	s := NewGRPCServer("", logging.Nop(), remote.NewMemory(), "k")

	_, err := s.Upsert(ownerCtx("u1"), rpc.EncodeStatus("x"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Select(ownerCtx("u1"), rpc.EncodeStatus("x"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHandler_StoreErrorsMapToCodes(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{common.ErrRemoteRejected, codes.FailedPrecondition},
		{common.ErrUnknownCollection, codes.FailedPrecondition},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("disk full"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			s := NewGRPCServer("", logging.Nop(), stubStore{err: tt.err}, "k")

			_, err := s.Select(ownerCtx("u1"), rpc.EncodeSelect(wire.Albums, time.Time{}))
			assert.Equal(t, tt.want, status.Code(err))

			req, encErr := rpc.EncodeUpsert(wire.Albums, nil)
			require.NoError(t, encErr)
			_, err = s.Upsert(ownerCtx("u1"), req)
			assert.Equal(t, tt.want, status.Code(err))
		})
	}
}

func TestHandler_Ping(t *testing.T) {
	s := NewGRPCServer("", logging.Nop(), remote.NewMemory(), "k")
	resp, err := s.Ping(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, rpc.StatusOK, rpc.DecodeStatus(resp))
}
