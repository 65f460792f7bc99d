// Package logger wraps zap to offer:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and configuration.
//
// Actors carry their own logger; the HTTP host and CLI put one into the request or
// command context and extract it with FromContext.
package logger
