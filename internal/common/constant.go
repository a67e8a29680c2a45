// Package common contains shared constants and sentinel errors used across
// gophadmin components.
package common

// AccessTokenHeaderName is the gRPC/HTTP metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// Full gRPC method names of the admin auth service. The service is described
// by hand (see server/grpc) and carries google.protobuf.Struct payloads.
const (
	AuthServiceName    = "gophadmin.auth.v1.AuthService"
	MethodLogin        = "/" + AuthServiceName + "/Login"
	MethodLogout       = "/" + AuthServiceName + "/Logout"
	MethodGetProfile   = "/" + AuthServiceName + "/GetProfile"
	MethodRefreshToken = "/" + AuthServiceName + "/RefreshToken"
	MethodPing         = "/" + AuthServiceName + "/Ping"
)

// REST routes served by the development API and used by the HTTP client.
const (
	RouteLogin   = "/api/v1/auth/login"
	RouteLogout  = "/api/v1/auth/logout"
	RouteProfile = "/api/v1/auth/profile"
	RouteRefresh = "/api/v1/auth/refresh"
	RoutePing    = "/api/v1/ping"
)
