package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "

// TokenFieldName is the legacy query/body field that may carry the token
// instead of the Authorization header.
const TokenFieldName = "_token"
