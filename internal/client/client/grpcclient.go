package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/remote"
	"github.com/dmitrijs2005/offsync/internal/rpc"
	"github.com/dmitrijs2005/offsync/internal/wire"
)

const pingTimeout = 3 * time.Second

var _ remote.Store = (*GRPCClient)(nil)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      rpc.RemoteStoreClient
	accessToken string
	deviceID    string
}

func withHeaders(ctx context.Context, token, deviceID string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}
	if deviceID != "" {
		md.Set(common.DeviceIDHeaderName, deviceID)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) headersInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(withHeaders(ctx, s.accessToken, s.deviceID), method, req, reply, cc, opts...)
}

// NewGRPCClient prepares a lazy connection to endpointURL. Extra dial options
// are appended after the defaults (insecure transport, header interceptor).
func NewGRPCClient(endpointURL, accessToken, deviceID string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken, deviceID: deviceID}

	dial := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.headersInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dial...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpointURL, err)
	}
	c.conn = conn
	c.client = rpc.NewRemoteStoreClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Upsert(ctx context.Context, collection string, rows []wire.Row) error {
	req, err := rpc.EncodeUpsert(collection, rows)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrRemoteRejected, err)
	}
	if _, err := s.client.Upsert(ctx, req); err != nil {
		return mapError(err)
	}
	return nil
}

// Select asks for rows changed after f.UpdatedAfter. The owner is taken from
// the access token server-side, f.Owner is not sent.
func (s *GRPCClient) Select(ctx context.Context, collection string, f remote.Filter) ([]wire.Row, error) {
	resp, err := s.client.Select(ctx, rpc.EncodeSelect(collection, f.UpdatedAfter))
	if err != nil {
		return nil, mapError(err)
	}
	rows, err := rpc.DecodeRows(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrRemoteRejected, err)
	}
	return rows, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	resp, err := s.client.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return mapError(err)
	}
	if st := rpc.DecodeStatus(resp); st != rpc.StatusOK {
		return fmt.Errorf("%w: status %q", common.ErrUnreachable, st)
	}
	return nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %w", common.ErrUnreachable, err)
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", common.ErrUnauthenticated, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %s", common.ErrUnreachable, st.Message())
	default:
		return fmt.Errorf("%w: %s: %s", common.ErrRemoteRejected, st.Code(), st.Message())
	}
}
