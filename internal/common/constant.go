package common

// AuthorizationHeaderName is the HTTP header carrying the bearer credential
// issued by the external identity provider.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the expected scheme prefix of the Authorization header value.
const BearerPrefix = "Bearer "
