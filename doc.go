// Package securelogin implements password-plus-TOTP authentication: salted
// password hashing and verification, RFC 4226/6238 one-time codes, and the
// login decision flow that combines the two into a single [AuthOutcome].
//
// The package is designed for concurrent workloads: Engine methods are safe
// to call from multiple goroutines after initialization through
// [Builder.Build]. The engine is stateless between calls: every
// [Engine.Authenticate] invocation is a fresh evaluation of the full
// attempt, and session or identity tracking belongs to the caller.
//
// # Architecture boundaries
//
// securelogin is the public surface. It exposes [Engine], [Builder],
// [Config], and value types (AuthOutcome, UserRecord, TwoFactorSetup).
// User persistence is the caller's job through the [UserProvider]
// interface; ready-made providers live under store/. Rate limiting
// internals live under internal/ and are never exported.
//
// # What this package must NOT do
//
//   - Issue or validate sessions or tokens of any kind.
//   - Perform network I/O outside of the optional Redis login throttle.
//   - Keep mutable process-wide authentication state.
package securelogin
