// Package api is the notes backend client.
//
// # Overview
//
// Client sends JSON requests to the backend's REST endpoints and decodes the
// typed responses (see contracts.go). Authenticated calls carry
// "Authorization: Bearer <access>" read from a TokenStore on every request.
//
// # Token refresh
//
// A 401 on an authenticated call starts, or joins, a single in-flight refresh
// (golang.org/x/sync/singleflight) and then retries the original call once.
// However many requests fail during one expiry, the refresh endpoint is hit
// at most once and every waiter sees the same outcome. A request whose token
// was already replaced by a refresh that finished in the meantime retries
// without refreshing again.
//
// When the refresh fails, or there is no refresh token, both tokens are
// cleared, the handler registered with OnSessionExpired runs once, and the
// call fails with ErrSessionExpired.
//
// # Errors
//
//   - *NetworkError: transport failure; matches ErrUnavailable.
//   - *APIError: non-2xx status with the backend's message.
//   - *MalformedResponseError: body does not match the expected contract.
//   - ErrSessionExpired: credentials could not be renewed.
package api
