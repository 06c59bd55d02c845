// Package server is a small HTTP host for the UAA realm.
//
// It exposes the login endpoints at the paths a Jenkins-style security realm
// uses, keeps each browser's session in a cookie-keyed in-memory store and
// serves the logged-in principal as JSON:
//
//	GET|POST /securityRealm/commenceLogin[?from=]  redirect to the login server
//	GET      /securityRealm/finishLogin             OAuth callback (rate limited per client IP)
//	GET      /logout                                clear the session, redirect to UAA logout
//	GET      /whoami                                current principal, 401 when anonymous
//	GET      /metrics                               Prometheus metrics
//	GET      /healthz                               liveness
package server
