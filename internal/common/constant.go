package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key carrying
// the bearer token.
const AuthorizationHeaderName = "authorization"

// BearerPrefix precedes the session token in AuthorizationHeaderName.
const BearerPrefix = "Bearer "

// SessionTokenBytes is the amount of random material in a session token.
// Tokens are rendered as hex, so their length is twice this value.
const SessionTokenBytes = 32
