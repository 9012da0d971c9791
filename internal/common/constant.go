package common

// SessionCookieName is the cookie that carries the session token between the
// browser and the HTTP boundary.
const SessionCookieName = "session"

// AccessTokenHeaderName is the gRPC metadata key used to carry the session
// token on internal calls.
const AccessTokenHeaderName = "access_token"

// RequestIDHeaderName is the HTTP header used to correlate log lines.
const RequestIDHeaderName = "X-Request-ID"
