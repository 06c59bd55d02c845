// Package oauth implements the browser side of the OAuth 2.0 authorization
// code flow against a Cloud Foundry login server.
//
// # Flow
//
//  1. The host creates a Session with NewSession, supplying the completion
//     to run once a code arrives.
//  2. Commence stores the session under the caller's own session id and
//     returns the authorization URL to redirect the browser to.
//  3. The login server redirects back with code and state. Finish takes the
//     session out of the store, validates the callback and runs the
//     completion with the code.
//
// # Security
//
// The state parameter is a 128-bit random nonce and is compared in constant
// time. A session is removed from the store before it is validated, so a
// callback can be processed at most once; replays and callbacks carrying a
// forged state fail with 401. Validation order is fixed: session present,
// state matches, no provider error, code present.
//
// Sessions are never shared between session ids. Expiry is the store's
// concern; see package session.
package oauth
