package rpc

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/offsync/internal/timex"
	"github.com/dmitrijs2005/offsync/internal/wire"
)

const (
	fieldCollection   = "collection"
	fieldRows         = "rows"
	fieldUpdatedAfter = "updated_after"
	fieldStatus       = "status"
)

// StatusOK is the Ping status of a healthy server.
const StatusOK = "OK"

func EncodeUpsert(collection string, rows []wire.Row) (*structpb.Struct, error) {
	list, err := rowsToList(rows)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldCollection: structpb.NewStringValue(collection),
		fieldRows:       structpb.NewListValue(list),
	}}, nil
}

func DecodeUpsert(s *structpb.Struct) (string, []wire.Row, error) {
	collection, err := stringField(s, fieldCollection)
	if err != nil {
		return "", nil, err
	}
	rows, err := listRows(s)
	if err != nil {
		return "", nil, err
	}
	return collection, rows, nil
}

func EncodeSelect(collection string, updatedAfter time.Time) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldCollection:   structpb.NewStringValue(collection),
		fieldUpdatedAfter: structpb.NewStringValue(timex.FormatTime(updatedAfter)),
	}}
}

func DecodeSelect(s *structpb.Struct) (string, time.Time, error) {
	collection, err := stringField(s, fieldCollection)
	if err != nil {
		return "", time.Time{}, err
	}
	raw, err := stringField(s, fieldUpdatedAfter)
	if err != nil {
		return "", time.Time{}, err
	}
	after, err := timex.ParseWire(raw)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", fieldUpdatedAfter, err)
	}
	return collection, after, nil
}

func EncodeRows(rows []wire.Row) (*structpb.Struct, error) {
	list, err := rowsToList(rows)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldRows: structpb.NewListValue(list),
	}}, nil
}

func DecodeRows(s *structpb.Struct) ([]wire.Row, error) {
	return listRows(s)
}

func EncodeStatus(status string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldStatus: structpb.NewStringValue(status),
	}}
}

func DecodeStatus(s *structpb.Struct) string {
	return s.GetFields()[fieldStatus].GetStringValue()
}

// rowsToList normalises row values through JSON first: structpb only
// understands the generic shapes encoding/json produces.
func rowsToList(rows []wire.Row) (*structpb.ListValue, error) {
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode rows: %w", err)
	}
	var generic []any
	if err := json.Unmarshal(b, &generic); err != nil {
		return nil, fmt.Errorf("encode rows: %w", err)
	}
	if generic == nil {
		generic = []any{}
	}
	list, err := structpb.NewList(generic)
	if err != nil {
		return nil, fmt.Errorf("encode rows: %w", err)
	}
	return list, nil
}

func listRows(s *structpb.Struct) ([]wire.Row, error) {
	v, ok := s.GetFields()[fieldRows]
	if !ok {
		return nil, fmt.Errorf("missing field %q", fieldRows)
	}
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("field %q is not a list", fieldRows)
	}
	rows := make([]wire.Row, 0, len(list.GetValues()))
	for i, item := range list.GetValues() {
		st := item.GetStructValue()
		if st == nil {
			return nil, fmt.Errorf("row %d is not an object", i)
		}
		row := wire.Row(st.AsMap())
		if err := restoreInts(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// intColumns travel as protobuf doubles and are turned back into int64.
var intColumns = []string{"version"}

func restoreInts(row wire.Row) error {
	for _, col := range intColumns {
		f, ok := row[col].(float64)
		if !ok {
			continue
		}
		if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			return fmt.Errorf("column %q is not an integer: %v", col, f)
		}
		row[col] = int64(f)
	}
	return nil
}

func stringField(s *structpb.Struct, name string) (string, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return "", fmt.Errorf("missing field %q", name)
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("field %q is not a string", name)
	}
	return sv.StringValue, nil
}
