package password

// Credential is a stored password credential: the one-way digest plus the
// salt it was derived with. Strategies that embed the salt in the digest
// encoding (PHC strings) leave Salt empty. The pair is generated together
// at enrollment and replaced together on password change; it is never
// mutated piecewise.
type Credential struct {
	Digest string
	Salt   string
}

// Hasher is the strategy interface for password hashing. Implementations
// must be safe for concurrent use and must verify in constant time with
// respect to the stored digest.
//
// Hash never reuses salts: two calls with the same password produce
// distinct credentials. Verify recomputes the digest from the stored
// salt and reports a boolean match; it returns an error only for
// malformed stored credentials or infrastructure faults, never for a
// plain mismatch.
type Hasher interface {
	Hash(password string) (Credential, error)
	Verify(password string, cred Credential) (bool, error)
}

// Upgrader is implemented by hashers whose stored credentials carry
// their own work factors. NeedsUpgrade reports whether cred was produced
// with weaker parameters than the hasher is configured with, so the
// caller can re-hash after a successful verification.
type Upgrader interface {
	NeedsUpgrade(cred Credential) (bool, error)
}
