package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Upper bounds accepted when parsing a stored hash, so a tampered row cannot
// make verification allocate or loop without limit.
const (
	maxHashMemory  = 1 << 20 // KiB (1 GiB)
	maxHashTime    = 16
	maxHashKeyLen  = 1024
	maxHashSaltLen = 1024
)

// HashParams are the Argon2id cost parameters used when creating a new hash.
type HashParams struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
	SaltLen int
	KeyLen  uint32
}

// DefaultHashParams returns the production parameters: 64 MiB, 3 passes, 1 lane.
func DefaultHashParams() HashParams {
	return HashParams{
		Memory:  64 * 1024,
		Time:    3,
		Threads: 1,
		SaltLen: 16,
		KeyLen:  32,
	}
}

// PasswordHasher produces self-describing Argon2id hashes.
type PasswordHasher struct {
	params HashParams
}

// NewPasswordHasher returns a hasher that creates hashes with p.
func NewPasswordHasher(p HashParams) *PasswordHasher {
	return &PasswordHasher{params: p}
}

// Hash returns password hashed in the PHC string format
//
//	$argon2id$v=19$m=65536,t=3,p=1$<salt>$<hash>
//
// with unpadded standard base64 for salt and hash.
func (h *PasswordHasher) Hash(password []byte) (string, error) {
	if len(password) == 0 {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, h.params.SaltLen)
	if _, err := randRead(salt); err != nil {
		return "", fmt.Errorf("generate hash salt: %w", err)
	}

	sum := argon2.IDKey(password, salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.Memory, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// HashPassword hashes password with DefaultHashParams.
func HashPassword(password []byte) (string, error) {
	return NewPasswordHasher(DefaultHashParams()).Hash(password)
}

// VerifyPassword reports whether password matches encoded. A mismatch is
// (false, nil); only an unparseable encoding is an error. The parameters
// embedded in encoded are used, not the current defaults.
func VerifyPassword(encoded string, password []byte) (bool, error) {
	p, salt, want, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	got := argon2.IDKey(password, salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func decodeHash(encoded string) (HashParams, []byte, []byte, error) {
	var p HashParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return p, nil, nil, fmt.Errorf("%w: unexpected field count", ErrMalformedHash)
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("%w: unsupported variant %q", ErrMalformedHash, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("%w: version", ErrMalformedHash)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedHash, version)
	}

	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &threads); err != nil {
		return p, nil, nil, fmt.Errorf("%w: parameters", ErrMalformedHash)
	}
	if p.Memory == 0 || p.Memory > maxHashMemory || p.Time == 0 || p.Time > maxHashTime ||
		threads == 0 || threads > 255 {
		return p, nil, nil, fmt.Errorf("%w: parameters out of range", ErrMalformedHash)
	}
	p.Threads = uint8(threads)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 || len(salt) > maxHashSaltLen {
		return p, nil, nil, fmt.Errorf("%w: salt", ErrMalformedHash)
	}
	sum, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(sum) == 0 || len(sum) > maxHashKeyLen {
		return p, nil, nil, fmt.Errorf("%w: hash", ErrMalformedHash)
	}

	p.SaltLen = len(salt)
	p.KeyLen = uint32(len(sum))
	return p, salt, sum, nil
}
