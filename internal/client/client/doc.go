// Package client talks to the messagely HTTP API on behalf of the CLI.
//
// Client is the transport-agnostic contract; HTTPClient implements it over
// net/http and keeps the bearer token obtained from Register or Login.
//
// # Error Handling
//
// Transport failures are reported as ErrUnavailable. Error responses are
// decoded into *APIError, which unwraps to the matching common kind
// (common.ErrUnauthorized, common.ErrForbidden, common.ErrNotFound,
// common.ErrValidation) so callers can use errors.Is.
package client
