// Package logging provides the structured logger used across cfuaa.
//
// It wraps Go's log/slog with a small subsystem-oriented API so every message
// carries the component that produced it:
//
//	logging.Init(logging.LevelInfo, logging.FormatJSON, os.Stderr)
//
//	logging.Info("Realm", "User %s logged in", email)
//	logging.Debug("UAA", "GET %s", endpoint)
//	logging.Warn("UAA", "More than one page of organizations (%d), only the first is used", pages)
//	logging.Error("Server", err, "Failed to complete login")
//
// Subsystems in use: Bootstrap, Config, UAA, OAuth, Realm, Session, Server.
//
// Secrets never reach this package: client secrets and access tokens are
// wrapped in uaa.Secret, which formats as [REDACTED], and session identifiers
// are shortened with TruncateSessionID before logging.
package logging
