// Package realm plugs Cloud Foundry UAA authentication into a host
// application.
//
// A Realm is built from a validated UAA configuration and the host's public
// URL. The host calls CommenceLogin when a browser needs to sign in and
// FinishLogin when the login server redirects back; the result is a Login
// holding the authenticated principal and where to send the browser next.
// Hosts without a browser session can look users up with
// LoadUserByUsername, which uses the client's own credentials.
package realm
