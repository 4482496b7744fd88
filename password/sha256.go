package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"io"
)

const minSHA256SaltBytes = 16

// SHA256 is the baseline strategy: digest = lowercase hex of
// SHA-256(salt || password), with the hex-encoded salt stored alongside.
// It imposes no length or charset policy on passwords. A single
// unsalted-iteration digest is cheap to brute-force offline; prefer
// [Argon2] unless compatibility with existing rows requires this scheme.
type SHA256 struct {
	saltBytes int
}

// SHA256Config tunes the baseline hasher. SaltLength is the raw salt
// size in bytes before hex encoding.
type SHA256Config struct {
	SaltLength uint32
}

// NewSHA256 creates a baseline hasher. Salts shorter than 16 bytes are
// rejected.
func NewSHA256(cfg SHA256Config) (*SHA256, error) {
	if cfg.SaltLength < minSHA256SaltBytes {
		return nil, errors.New("sha256 salt length must be >= 16 bytes")
	}
	return &SHA256{saltBytes: int(cfg.SaltLength)}, nil
}

// Hash derives a credential with a fresh random salt. It fails only when
// the system random source is unavailable.
func (h *SHA256) Hash(password string) (Credential, error) {
	raw := make([]byte, h.saltBytes)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return Credential{}, err
	}
	salt := hex.EncodeToString(raw)

	return Credential{
		Digest: sha256Digest(password, salt),
		Salt:   salt,
	}, nil
}

// HashWithSalt derives the digest for a known salt. Deterministic given
// the same (password, salt) pair; this is what verification relies on.
func (h *SHA256) HashWithSalt(password, salt string) string {
	return sha256Digest(password, salt)
}

// Verify recomputes the digest from the stored salt and compares it to
// the stored digest in constant time. A credential with an empty salt or
// digest is malformed and yields an error, not a mismatch.
func (h *SHA256) Verify(password string, cred Credential) (bool, error) {
	if cred.Salt == "" || cred.Digest == "" {
		return false, errors.New("malformed sha256 credential")
	}

	computed := sha256Digest(password, cred.Salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(cred.Digest)) == 1, nil
}

func sha256Digest(password, salt string) string {
	sum := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}
