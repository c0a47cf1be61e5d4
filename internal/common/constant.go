// Package common contains shared constants and sentinel errors used across
// offsync components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DeviceIDHeaderName carries the writing device id for server-side logging.
const DeviceIDHeaderName = "device_id"
