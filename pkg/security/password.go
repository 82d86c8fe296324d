// Package security holds password hashing for user credentials. Hashes are
// argon2id in the PHC string format so parameters can be tightened later
// without invalidating stored credentials.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"

	"github.com/elizabethadegbaju/crystalims/pkg/config"
	"golang.org/x/crypto/argon2"
)

// ErrInvalidHash signals a stored hash that is not a parseable argon2id string.
var ErrInvalidHash = fmt.Errorf("invalid argon2id hash")

const tempPasswordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type argonParams struct {
	memoryKB uint32
	passes   uint32
	threads  uint8
	saltLen  uint32
	keyLen   uint32
}

func resolveParams(cfg config.PasswordConfig) argonParams {
	p := argonParams{
		memoryKB: boundUint32(cfg.ArgonMemoryKB, 8, 512*1024),
		passes:   boundUint32(cfg.ArgonTime, 1, 10),
		saltLen:  boundUint32(cfg.ArgonSaltLen, 8, 64),
		keyLen:   boundUint32(cfg.ArgonKeyLen, 16, 64),
	}
	threads := cfg.ArgonParallelism
	if threads < 1 {
		threads = 1
	}
	if threads > 255 {
		threads = 255
	}
	p.threads = uint8(threads)
	return p
}

func boundUint32(v, lo, hi int) uint32 {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return uint32(v)
}

// HashPassword derives an argon2id hash and encodes it with its parameters.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	p := resolveParams(cfg)
	salt := make([]byte, p.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.passes, p.memoryKB, p.threads, p.keyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memoryKB, p.passes, p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// VerifyPassword recomputes the hash with the parameters embedded in the
// stored string and compares in constant time.
func VerifyPassword(password, encoded string) (bool, error) {
	segments := strings.Split(encoded, "$")
	if len(segments) != 6 || segments[1] != "argon2id" {
		return false, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(segments[2], "v=%d", &version); err != nil {
		return false, ErrInvalidHash
	}

	var memoryKB, passes uint32
	var threads uint8
	if _, err := fmt.Sscanf(segments[3], "m=%d,t=%d,p=%d", &memoryKB, &passes, &threads); err != nil {
		return false, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(segments[4])
	if err != nil {
		return false, ErrInvalidHash
	}
	want, err := base64.RawStdEncoding.DecodeString(segments[5])
	if err != nil {
		return false, ErrInvalidHash
	}

	got := argon2.IDKey([]byte(password), salt, passes, memoryKB, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// GenerateTempPassword returns a random alphanumeric credential. Used for
// manager-created accounts and social signups, where the user never sees
// the value and activates through email instead.
func GenerateTempPassword(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	alphabetSize := big.NewInt(int64(len(tempPasswordAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("generate temp password: %w", err)
		}
		out[i] = tempPasswordAlphabet[n.Int64()]
	}
	return string(out), nil
}
