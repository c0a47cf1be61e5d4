package rpc

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/offsync/internal/wire"
)

func TestUpsert_EncodeDecode(t *testing.T) {
	rows := []wire.Row{{
		"id":         "a1",
		"user_id":    "u1",
		"version":    int64(3),
		"tags":       []string{"rock", "live"},
		"deleted_at": nil,
		"updated_at": "2024-05-01T10:00:00.000Z",
	}}

	s, err := EncodeUpsert(wire.Albums, rows)
	require.NoError(t, err)

	collection, got, err := DecodeUpsert(s)
	require.NoError(t, err)
	assert.Equal(t, wire.Albums, collection)

	want := []wire.Row{{
		"id":         "a1",
		"user_id":    "u1",
		"version":    int64(3),
		"tags":       []any{"rock", "live"},
		"deleted_at": nil,
		"updated_at": "2024-05-01T10:00:00.000Z",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	var a wire.Album
	require.NoError(t, wire.Decode(got[0], &a))
	assert.Equal(t, int64(3), a.Version)
}

func TestEncodeRows_Empty(t *testing.T) {
	s, err := EncodeRows(nil)
	require.NoError(t, err)
	rows, err := DecodeRows(s)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSelect_EncodeDecode(t *testing.T) {
	after := time.Date(2024, 5, 1, 10, 0, 0, 123e6, time.UTC)
	collection, got, err := DecodeSelect(EncodeSelect(wire.Songs, after))
	require.NoError(t, err)
	assert.Equal(t, wire.Songs, collection)
	assert.True(t, after.Equal(got))
}

func TestDecode_Malformed(t *testing.T) {
	_, _, err := DecodeUpsert(&structpb.Struct{})
	require.ErrorContains(t, err, `missing field "collection"`)

	_, _, err = DecodeUpsert(&structpb.Struct{Fields: map[string]*structpb.Value{
		"collection": structpb.NewNumberValue(1),
	}})
	require.ErrorContains(t, err, "not a string")

	_, err = DecodeRows(&structpb.Struct{Fields: map[string]*structpb.Value{
		"rows": structpb.NewStringValue("x"),
	}})
	require.ErrorContains(t, err, "not a list")

	_, err = DecodeRows(&structpb.Struct{Fields: map[string]*structpb.Value{
		"rows": structpb.NewListValue(&structpb.ListValue{Values: []*structpb.Value{structpb.NewBoolValue(true)}}),
	}})
	require.ErrorContains(t, err, "row 0 is not an object")

	row, err := structpb.NewStruct(map[string]any{"id": "a", "version": 1.5})
	require.NoError(t, err)
	_, err = DecodeRows(&structpb.Struct{Fields: map[string]*structpb.Value{
		"rows": structpb.NewListValue(&structpb.ListValue{Values: []*structpb.Value{structpb.NewStructValue(row)}}),
	}})
	require.ErrorContains(t, err, `column "version" is not an integer`)

	_, _, err = DecodeSelect(&structpb.Struct{Fields: map[string]*structpb.Value{
		"collection":    structpb.NewStringValue("albums"),
		"updated_after": structpb.NewStringValue("yesterday"),
	}})
	require.ErrorContains(t, err, "updated_after")
}

func TestStatus(t *testing.T) {
	assert.Equal(t, StatusOK, DecodeStatus(EncodeStatus(StatusOK)))
	assert.Equal(t, "", DecodeStatus(nil))
}
