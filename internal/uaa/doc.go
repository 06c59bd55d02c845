// Package uaa talks to a Cloud Foundry UAA server and cloud controller.
//
// It contains three layers:
//
//   - Client, the HTTP adapter. It adds Basic or bearer authentication,
//     always asks for JSON and turns any non-200 response into an
//     AuthServiceError without looking at the body.
//   - TokenService, which runs the client-credentials and authorization-code
//     grants against the token endpoint.
//   - Resolver, which maps a user name to a user id, fetches the user profile
//     and lists the organizations a token can see.
//
// Token values are carried in Secret so they never show up in logs or error
// strings. Nothing in this package caches tokens; every call goes to the
// provider.
package uaa
