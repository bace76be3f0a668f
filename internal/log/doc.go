// Package log builds the slog loggers used by linetable.
//
// SecureHandler wraps any slog.Handler and masks attribute values whose key
// names a credential (cookie, authorization, token, ...) or whose value looks
// like one (bearer or basic credentials, JWTs). Request headers configured
// for the site are logged as a group, so a session cookie supplied in the
// config file never reaches the log output, even at debug level.
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
