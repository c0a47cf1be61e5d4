package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/remote"
	"github.com/dmitrijs2005/offsync/internal/rpc"
)

func (s *GRPCServer) Upsert(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	owner, ok := OwnerFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	collection, rows, err := rpc.DecodeUpsert(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	for _, r := range rows {
		if r.Owner() != owner {
			s.logger.Warn(ctx, "foreign row rejected", "collection", collection, "id", r.ID(), "owner", owner)
			return nil, status.Errorf(codes.InvalidArgument, "row %q is not owned by the caller", r.ID())
		}
	}

	if err := s.rows.Upsert(ctx, collection, rows); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) Select(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	owner, ok := OwnerFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	collection, after, err := rpc.DecodeSelect(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	rows, err := s.rows.Select(ctx, collection, remote.Filter{UpdatedAfter: after, Owner: owner})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	resp, err := rpc.EncodeRows(rows)
	if err != nil {
		s.logger.Error(ctx, "encode rows", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}
	return resp, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return rpc.EncodeStatus(rpc.StatusOK), nil
}

func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrRemoteRejected), errors.Is(err, common.ErrUnknownCollection):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.logger.Error(ctx, "row store failure", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
