// Package client is the gRPC transport of the replication engine.
//
// GRPCClient implements remote.Store (Upsert, Select) and Ping against the
// offsync.v1.RemoteStore service. A unary interceptor attaches the access
// token and device id to every call, and gRPC status codes are mapped onto
// the sentinel errors of package common:
//
//   - Unauthenticated, PermissionDenied: common.ErrUnauthenticated
//   - Unavailable, DeadlineExceeded: common.ErrUnreachable
//   - anything else: common.ErrRemoteRejected
//
// Callers match them with errors.Is.
package client
