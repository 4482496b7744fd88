// Package password implements salted password hashing and verification
// behind a pluggable [Hasher] strategy.
//
// Two strategies ship with the package: [SHA256], the single-round
// salted-digest baseline (lowercase hex of SHA-256(salt || password)),
// and [Argon2], a memory-hard Argon2id hasher that encodes its output in
// PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Both verify with constant-time comparison. [Argon2] additionally
// supports transparent parameter upgrades: if a stored credential was
// produced with weaker parameters, [Argon2.NeedsUpgrade] returns true so
// the caller can re-hash on the next successful login.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy
// (length, reuse history) is enforced by the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve credentials; callers supply plaintext and
//     receive [Credential] values.
//   - Import any other package of this module.
//   - Log plaintext passwords or hash parameters at runtime.
package password
